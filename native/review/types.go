package review

// Review is one append-only rating entry for a batch. Reviews are never
// edited or deleted.
type Review struct {
	Reviewer    [20]byte `json:"reviewer"`
	BatchID     uint64   `json:"batchId"`
	Rating      uint8    `json:"rating"`
	MetadataRef string   `json:"metadataRef"`
}

// Clone returns a copy of the review entry.
func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
