package state

import (
	"github.com/ethereum/go-ethereum/common"

	"honeytrace/native/batch"
)

type storedBatch struct {
	ID             uint64
	Producer       [20]byte
	Label          string
	MetadataRef    string
	CommitmentRoot common.Hash
	Supply         uint64
}

// BatchCounterGet returns the last assigned batch identifier.
func (m *Manager) BatchCounterGet() (uint64, error) {
	var counter uint64
	if _, err := m.readRLP(hashKey(batchCounterKeyBytes), &counter); err != nil {
		return 0, err
	}
	return counter, nil
}

// BatchCounterPut stores the last assigned batch identifier.
func (m *Manager) BatchCounterPut(counter uint64) error {
	return m.writeRLP(hashKey(batchCounterKeyBytes), counter)
}

// BatchGet loads the batch record for the identifier.
func (m *Manager) BatchGet(id uint64) (*batch.Batch, bool, error) {
	stored := new(storedBatch)
	ok, err := m.readRLP(hashKey(batchPrefix, uint64Bytes(id)), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &batch.Batch{
		ID:             stored.ID,
		Producer:       stored.Producer,
		Label:          stored.Label,
		MetadataRef:    stored.MetadataRef,
		CommitmentRoot: stored.CommitmentRoot,
		Supply:         stored.Supply,
	}, true, nil
}

// BatchPut stores the batch record.
func (m *Manager) BatchPut(record *batch.Batch) error {
	stored := &storedBatch{
		ID:             record.ID,
		Producer:       record.Producer,
		Label:          record.Label,
		MetadataRef:    record.MetadataRef,
		CommitmentRoot: record.CommitmentRoot,
		Supply:         record.Supply,
	}
	return m.writeRLP(hashKey(batchPrefix, uint64Bytes(record.ID)), stored)
}
