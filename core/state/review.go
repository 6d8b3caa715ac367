package state

import "honeytrace/native/review"

type storedReview struct {
	Reviewer    [20]byte
	BatchID     uint64
	Rating      uint8
	MetadataRef string
}

// ReviewCountGet returns the number of reviews stored for the batch.
func (m *Manager) ReviewCountGet(batchID uint64) (uint64, error) {
	var count uint64
	if _, err := m.readRLP(hashKey(reviewCountPrefix, uint64Bytes(batchID)), &count); err != nil {
		return 0, err
	}
	return count, nil
}

// ReviewCountPut stores the number of reviews for the batch.
func (m *Manager) ReviewCountPut(batchID uint64, count uint64) error {
	return m.writeRLP(hashKey(reviewCountPrefix, uint64Bytes(batchID)), count)
}

// ReviewGet loads the review at the insertion-order index.
func (m *Manager) ReviewGet(batchID uint64, index uint64) (*review.Review, bool, error) {
	stored := new(storedReview)
	ok, err := m.readRLP(hashKey(reviewEntryPrefix, uint64Bytes(batchID), uint64Bytes(index)), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &review.Review{
		Reviewer:    stored.Reviewer,
		BatchID:     stored.BatchID,
		Rating:      stored.Rating,
		MetadataRef: stored.MetadataRef,
	}, true, nil
}

// ReviewPut stores the review at the insertion-order index.
func (m *Manager) ReviewPut(batchID uint64, index uint64, entry *review.Review) error {
	stored := &storedReview{
		Reviewer:    entry.Reviewer,
		BatchID:     entry.BatchID,
		Rating:      entry.Rating,
		MetadataRef: entry.MetadataRef,
	}
	return m.writeRLP(hashKey(reviewEntryPrefix, uint64Bytes(batchID), uint64Bytes(index)), stored)
}

// ReviewerCountGet returns how many reviews the account wrote for the batch.
func (m *Manager) ReviewerCountGet(batchID uint64, addr [20]byte) (uint64, error) {
	var count uint64
	if _, err := m.readRLP(hashKey(reviewerCountPrefix, uint64Bytes(batchID), addr[:]), &count); err != nil {
		return 0, err
	}
	return count, nil
}

// ReviewerCountPut stores the per-account review counter for the batch.
func (m *Manager) ReviewerCountPut(batchID uint64, addr [20]byte, count uint64) error {
	return m.writeRLP(hashKey(reviewerCountPrefix, uint64Bytes(batchID), addr[:]), count)
}
