package version

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/brokerconf/conf"
)

func record(note string) *Record {
	return &Record{
		Document:  conf.NewDocument(),
		AppliedAt: time.Now(),
		Change:    Update,
		Note:      note,
	}
}

func TestStoreAssignsMonotonicVersions(t *testing.T) {
	store := NewStore()

	first := store.Save(record("a"))
	second := store.Save(record("b"))
	third := store.Save(record("c"))

	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 2, second.Version)
	assert.Equal(t, 3, third.Version)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, 4, store.NextVersion())
}

func TestStoreSaveDoesNotAliasInput(t *testing.T) {
	store := NewStore()
	rec := record("original")
	stored := store.Save(rec)

	rec.Note = "mutated"
	assert.Equal(t, "original", stored.Note)
	assert.Equal(t, 0, rec.Version, "caller's record is untouched")
}

func TestStoreExplicitVersionAdvancesCounter(t *testing.T) {
	store := NewStore()
	store.Save(&Record{Version: 10, Document: conf.NewDocument()})

	next := store.Save(record("after"))
	assert.Equal(t, 11, next.Version)
}

func TestStoreExplicitLowVersionKeepsCounter(t *testing.T) {
	store := NewStore()
	store.Save(record("one"))
	store.Save(record("two"))
	store.Save(&Record{Version: 1, Document: conf.NewDocument()})

	next := store.Save(record("three"))
	assert.Equal(t, 3, next.Version)
}

func TestStoreGetVersion(t *testing.T) {
	store := NewStore()
	store.Save(record("a"))
	store.Save(record("b"))

	rec, ok := store.GetVersion(2)
	require.True(t, ok)
	assert.Equal(t, "b", rec.Note)

	_, ok = store.GetVersion(99)
	assert.False(t, ok)
}

func TestStoreGetLatest(t *testing.T) {
	store := NewStore()
	_, ok := store.GetLatest()
	assert.False(t, ok)

	store.Save(record("a"))
	store.Save(record("b"))

	latest, ok := store.GetLatest()
	require.True(t, ok)
	assert.Equal(t, 2, latest.Version)
}

func TestStoreHistoryNewestFirst(t *testing.T) {
	store := NewStore()
	for i := 1; i <= 5; i++ {
		store.Save(record(fmt.Sprintf("v%d", i)))
	}

	history := store.GetHistory(3)
	require.Len(t, history, 3)
	assert.Equal(t, 5, history[0].Version)
	assert.Equal(t, 4, history[1].Version)
	assert.Equal(t, 3, history[2].Version)

	assert.Len(t, store.GetHistory(100), 5, "capped to what exists")
	assert.Nil(t, store.GetHistory(0))
	assert.Nil(t, store.GetHistory(-1))
}

func TestStoreClear(t *testing.T) {
	store := NewStore()
	store.Save(record("a"))
	store.Clear()

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 1, store.NextVersion())
	assert.Equal(t, 1, store.Save(record("fresh")).Version)
}

func TestStoreConcurrentSaves(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Save(record("concurrent"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
	seen := make(map[int]bool)
	for _, rec := range store.GetHistory(50) {
		assert.False(t, seen[rec.Version], "version %d assigned twice", rec.Version)
		seen[rec.Version] = true
	}
}

func TestChangeTypeString(t *testing.T) {
	assert.Equal(t, "initial", Initial.String())
	assert.Equal(t, "update", Update.String())
	assert.Equal(t, "rollback", Rollback.String())
	assert.Equal(t, "unknown", ChangeType(99).String())
}
