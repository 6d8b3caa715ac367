package state

import (
	"encoding/binary"
	"errors"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"honeytrace/storage"
)

// Manager provides typed read/write access to the ledger state for every
// engine. Keys are keccak256 hashes of a readable prefix plus the record
// coordinates; values are RLP encoded. During a mutating operation the
// backing Database is a storage.Journal, so nothing the engines write becomes
// visible until the node flushes it.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager over the provided key-value store.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var (
	accessOwnerKeyBytes  = []byte("access/owner")
	accessAdminPrefix    = []byte("access/admin/")
	producerPrefix       = []byte("producer/record/")
	batchCounterKeyBytes = []byte("batch/counter")
	batchPrefix          = []byte("batch/record/")
	balancePrefix        = []byte("token/balance/")
	approvalPrefix       = []byte("token/approval/")
	classProducerPrefix  = []byte("token/producer/")
	claimPrefix          = []byte("claim/redeemed/")
	reviewCountPrefix    = []byte("review/count/")
	reviewEntryPrefix    = []byte("review/entry/")
	reviewerCountPrefix  = []byte("review/account/")
)

func hashKey(parts ...[]byte) []byte {
	size := 0
	for _, part := range parts {
		size += len(part)
	}
	buf := make([]byte, 0, size)
	for _, part := range parts {
		buf = append(buf, part...)
	}
	return ethcrypto.Keccak256(buf)
}

func uint64Bytes(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

// readRLP decodes the record stored under key into out. The boolean reports
// whether the key was present at all.
func (m *Manager) readRLP(key []byte, out interface{}) (bool, error) {
	data, err := m.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) writeRLP(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}
