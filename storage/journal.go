package storage

// Journal is a write-buffering overlay on a Database. Reads fall through to
// the backing store when the key has not been written in the current
// operation. Nothing reaches the backing store until Flush, so a failed
// operation is discarded simply by dropping the journal.
//
// Journal is not safe for concurrent use; the node serializes mutators.
type Journal struct {
	store  Database
	writes map[string][]byte
	order  []string
}

// NewJournal creates an empty overlay on top of the provided store.
func NewJournal(store Database) *Journal {
	return &Journal{
		store:  store,
		writes: make(map[string][]byte),
	}
}

func (j *Journal) Put(key []byte, value []byte) error {
	k := string(key)
	if _, seen := j.writes[k]; !seen {
		j.order = append(j.order, k)
	}
	j.writes[k] = append([]byte(nil), value...)
	return nil
}

func (j *Journal) Get(key []byte) ([]byte, error) {
	if value, ok := j.writes[string(key)]; ok {
		return append([]byte(nil), value...), nil
	}
	return j.store.Get(key)
}

func (j *Journal) Has(key []byte) (bool, error) {
	if _, ok := j.writes[string(key)]; ok {
		return true, nil
	}
	return j.store.Has(key)
}

// Close satisfies the Database interface; the backing store stays open.
func (j *Journal) Close() {}

// Flush applies the buffered writes to the backing store in insertion order.
func (j *Journal) Flush() error {
	for _, k := range j.order {
		if err := j.store.Put([]byte(k), j.writes[k]); err != nil {
			return err
		}
	}
	j.writes = make(map[string][]byte)
	j.order = nil
	return nil
}

// Discard drops all buffered writes without touching the backing store.
func (j *Journal) Discard() {
	j.writes = make(map[string][]byte)
	j.order = nil
}
