package state

import "github.com/ethereum/go-ethereum/common"

// ClaimGet reports whether the redemption key was already consumed for the
// batch. Absent keys are implicitly unclaimed.
func (m *Manager) ClaimGet(batchID uint64, codeHash common.Hash) (bool, error) {
	var claimed bool
	if _, err := m.readRLP(hashKey(claimPrefix, uint64Bytes(batchID), codeHash[:]), &claimed); err != nil {
		return false, err
	}
	return claimed, nil
}

// ClaimPut marks the redemption key as consumed. The record is permanent;
// nothing ever resets it.
func (m *Manager) ClaimPut(batchID uint64, codeHash common.Hash) error {
	return m.writeRLP(hashKey(claimPrefix, uint64Bytes(batchID), codeHash[:]), true)
}
