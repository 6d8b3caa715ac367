package state

import "honeytrace/native/producer"

type storedProducer struct {
	Address            [20]byte
	Authorized         bool
	Name               string
	Location           string
	RegistrationNumber string
	MetadataRef        string
}

// ProducerGet loads the producer record for the address.
func (m *Manager) ProducerGet(addr [20]byte) (*producer.Producer, bool, error) {
	stored := new(storedProducer)
	ok, err := m.readRLP(hashKey(producerPrefix, addr[:]), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &producer.Producer{
		Address:            stored.Address,
		Authorized:         stored.Authorized,
		Name:               stored.Name,
		Location:           stored.Location,
		RegistrationNumber: stored.RegistrationNumber,
		MetadataRef:        stored.MetadataRef,
	}, true, nil
}

// ProducerPut stores the producer record.
func (m *Manager) ProducerPut(record *producer.Producer) error {
	stored := &storedProducer{
		Address:            record.Address,
		Authorized:         record.Authorized,
		Name:               record.Name,
		Location:           record.Location,
		RegistrationNumber: record.RegistrationNumber,
		MetadataRef:        record.MetadataRef,
	}
	return m.writeRLP(hashKey(producerPrefix, record.Address[:]), stored)
}
