package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*badger.Stores, func()) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)

	cleanup := func() {
		stores.Close()
	}

	return stores, cleanup
}

// seedPeople adds n people to the graph and returns the stored records.
func seedPeople(t *testing.T, stores *badger.Stores, n int) []*core.Person {
	t.Helper()
	people := make([]*core.Person, n)
	for i := range n {
		conn := core.Connection{
			FullName:    fmt.Sprintf("Person %03d", i),
			Company:     fmt.Sprintf("Company %d", i%4),
			Position:    "Engineer",
			ProfileURL:  fmt.Sprintf("https://www.linkedin.com/in/person-%03d", i),
			ConnectedOn: time.Date(2020, 1, 1+i, 0, 0, 0, 0, time.UTC),
		}
		people[i] = conn.Person()
	}
	added, err := stores.Graph.AddPeople(context.Background(), people...)
	require.NoError(t, err)
	require.Len(t, added, n)
	return added
}

func TestPersonIterator_Basic(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedPeople(t, stores, 25)

	iterator := NewPersonIterator(stores.Graph, 10)

	var batchSizes []int
	seen := make(map[core.ID]bool)
	var last core.ID
	err := iterator.ForEach(ctx, func(people []*core.Person) error {
		batchSizes = append(batchSizes, len(people))
		for _, p := range people {
			assert.Greater(t, p.Id, last, "people should come in ascending ID order")
			last = p.Id
			seen[p.Id] = true
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{10, 10, 5}, batchSizes)
	assert.Len(t, seen, 25)
}

func TestPersonIterator_ExactMultiple(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	seedPeople(t, stores, 20)

	batches := 0
	total := 0
	err := NewPersonIterator(stores.Graph, 10).ForEach(context.Background(), func(people []*core.Person) error {
		batches++
		total += len(people)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 20, total)
	assert.LessOrEqual(t, batches, 3, "a trailing empty page is allowed but nothing more")
}

func TestPersonIterator_Empty(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	called := false
	err := NewPersonIterator(stores.Graph, 10).ForEach(context.Background(), func(people []*core.Person) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called, "callback should not run for an empty graph")
}

func TestPersonIterator_DefaultBatchSize(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	iterator := NewPersonIterator(stores.Graph, 0)
	assert.Equal(t, DefaultBatchSize, iterator.batchSize)
}

func TestPersonIterator_CallbackError(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	seedPeople(t, stores, 30)

	stop := errors.New("stop")
	calls := 0
	err := NewPersonIterator(stores.Graph, 10).ForEach(context.Background(), func(people []*core.Person) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

func TestPersonIterator_ContextCanceled(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	seedPeople(t, stores, 30)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := NewPersonIterator(stores.Graph, 10).ForEach(ctx, func(people []*core.Person) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
