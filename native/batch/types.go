package batch

import "github.com/ethereum/go-ethereum/common"

// Batch is the on-ledger record of one honey batch. All fields are fixed at
// creation; only the ledger balances of the batch's token class move
// afterwards. The token-class identifier equals ID.
type Batch struct {
	ID             uint64      `json:"id"`
	Producer       [20]byte    `json:"producer"`
	Label          string      `json:"label"`
	MetadataRef    string      `json:"metadataRef"`
	CommitmentRoot common.Hash `json:"commitmentRoot"`
	Supply         uint64      `json:"supply"`
}

// Clone returns a copy of the batch record.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}
