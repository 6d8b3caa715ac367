package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJournalBuffersWritesUntilFlush(t *testing.T) {
	store := NewMemDB()
	journal := NewJournal(store)

	require.NoError(t, journal.Put([]byte("a"), []byte("1")))

	// Reads through the journal see the pending write.
	got, err := journal.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)

	// The backing store does not.
	_, err = store.Get([]byte("a"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, journal.Flush())

	got, err = store.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)
}

func TestJournalDiscardDropsWrites(t *testing.T) {
	store := NewMemDB()
	require.NoError(t, store.Put([]byte("a"), []byte("old")))

	journal := NewJournal(store)
	require.NoError(t, journal.Put([]byte("a"), []byte("new")))
	require.NoError(t, journal.Put([]byte("b"), []byte("2")))
	journal.Discard()

	got, err := store.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("old"), got)

	_, err = store.Get([]byte("b"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestJournalReadsFallThrough(t *testing.T) {
	store := NewMemDB()
	require.NoError(t, store.Put([]byte("a"), []byte("base")))

	journal := NewJournal(store)

	got, err := journal.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("base"), got)

	ok, err := journal.Has([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = journal.Has([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJournalLastWriteWins(t *testing.T) {
	store := NewMemDB()
	journal := NewJournal(store)

	require.NoError(t, journal.Put([]byte("a"), []byte("1")))
	require.NoError(t, journal.Put([]byte("a"), []byte("2")))
	require.NoError(t, journal.Flush())

	got, err := store.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), got)
}

func TestJournalReusableAfterFlush(t *testing.T) {
	store := NewMemDB()
	journal := NewJournal(store)

	require.NoError(t, journal.Put([]byte("a"), []byte("1")))
	require.NoError(t, journal.Flush())

	require.NoError(t, journal.Put([]byte("b"), []byte("2")))
	require.NoError(t, journal.Flush())

	got, err := store.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), got)
}
