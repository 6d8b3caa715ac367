package state

import (
	"math/big"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"honeytrace/native/batch"
	"honeytrace/native/producer"
	"honeytrace/native/review"
	"honeytrace/storage"
)

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func TestOwnerAndAdmins(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	_, ok, err := m.AccessOwnerGet()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.AccessOwnerPut(addr(0x01)))
	owner, ok, err := m.AccessOwnerGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, addr(0x01), owner)

	enabled, err := m.AccessAdminGet(addr(0x02))
	require.NoError(t, err)
	require.False(t, enabled)

	require.NoError(t, m.AccessAdminPut(addr(0x02), true))
	enabled, err = m.AccessAdminGet(addr(0x02))
	require.NoError(t, err)
	require.True(t, enabled)

	require.NoError(t, m.AccessAdminPut(addr(0x02), false))
	enabled, err = m.AccessAdminGet(addr(0x02))
	require.NoError(t, err)
	require.False(t, enabled)
}

func TestProducerRecordRoundTrip(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	_, ok, err := m.ProducerGet(addr(0x01))
	require.NoError(t, err)
	require.False(t, ok)

	record := &producer.Producer{
		Address:            addr(0x01),
		Authorized:         true,
		Name:               "Apiary Nord",
		Location:           "Jura",
		RegistrationNumber: "FR-0042",
		MetadataRef:        "ipfs://profile",
	}
	require.NoError(t, m.ProducerPut(record))

	got, ok, err := m.ProducerGet(addr(0x01))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record, got)
}

func TestBatchRecordAndCounter(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	counter, err := m.BatchCounterGet()
	require.NoError(t, err)
	require.Zero(t, counter)

	require.NoError(t, m.BatchCounterPut(3))
	counter, err = m.BatchCounterGet()
	require.NoError(t, err)
	require.EqualValues(t, 3, counter)

	record := &batch.Batch{
		ID:             3,
		Producer:       addr(0x01),
		Label:          "Spring Harvest",
		MetadataRef:    "ipfs://batch",
		CommitmentRoot: ethcrypto.Keccak256Hash([]byte("root")),
		Supply:         25,
	}
	require.NoError(t, m.BatchPut(record))

	got, ok, err := m.BatchGet(3)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record, got)

	_, ok, err = m.BatchGet(4)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTokenBalancesKeyedByClassAndHolder(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	balance, err := m.TokenBalanceGet(1, addr(0x01))
	require.NoError(t, err)
	require.Zero(t, balance.Sign())

	require.NoError(t, m.TokenBalancePut(1, addr(0x01), big.NewInt(25)))

	balance, err = m.TokenBalanceGet(1, addr(0x01))
	require.NoError(t, err)
	require.Equal(t, int64(25), balance.Int64())

	// A different class shares neither key nor balance.
	balance, err = m.TokenBalanceGet(2, addr(0x01))
	require.NoError(t, err)
	require.Zero(t, balance.Sign())
}

func TestApprovalsAreDirectional(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	require.NoError(t, m.TokenApprovalPut(addr(0x01), addr(0x02), true))

	approved, err := m.TokenApprovalGet(addr(0x01), addr(0x02))
	require.NoError(t, err)
	require.True(t, approved)

	approved, err = m.TokenApprovalGet(addr(0x02), addr(0x01))
	require.NoError(t, err)
	require.False(t, approved)
}

func TestClaimMarks(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	key := ethcrypto.Keccak256Hash([]byte("code"))

	claimed, err := m.ClaimGet(1, key)
	require.NoError(t, err)
	require.False(t, claimed)

	require.NoError(t, m.ClaimPut(1, key))

	claimed, err = m.ClaimGet(1, key)
	require.NoError(t, err)
	require.True(t, claimed)

	// The mark is scoped to the batch.
	claimed, err = m.ClaimGet(2, key)
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestReviewStorage(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	count, err := m.ReviewCountGet(1)
	require.NoError(t, err)
	require.Zero(t, count)

	entry := &review.Review{
		Reviewer:    addr(0x01),
		BatchID:     1,
		Rating:      4,
		MetadataRef: "ipfs://review",
	}
	require.NoError(t, m.ReviewPut(1, 0, entry))
	require.NoError(t, m.ReviewCountPut(1, 1))
	require.NoError(t, m.ReviewerCountPut(1, addr(0x01), 1))

	got, ok, err := m.ReviewGet(1, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry, got)

	count, err = m.ReviewCountGet(1)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	written, err := m.ReviewerCountGet(1, addr(0x01))
	require.NoError(t, err)
	require.EqualValues(t, 1, written)

	_, ok, err = m.ReviewGet(1, 1)
	require.NoError(t, err)
	require.False(t, ok)
}
