package producer

// Producer holds the on-ledger profile of a honey producer. Profile fields
// are self-service; Authorized is controlled exclusively through admin calls.
type Producer struct {
	Address            [20]byte `json:"address"`
	Authorized         bool     `json:"authorized"`
	Name               string   `json:"name"`
	Location           string   `json:"location"`
	RegistrationNumber string   `json:"registrationNumber"`
	MetadataRef        string   `json:"metadataRef"`
}

// Clone returns a copy of the producer record.
func (p *Producer) Clone() *Producer {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
