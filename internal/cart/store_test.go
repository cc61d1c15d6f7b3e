package cart

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Operations(t *testing.T) {
	store := NewStore(nil)

	_, err := store.AddItem(product("1", 300), 1)
	require.NoError(t, err)
	_, err = store.AddItem(product("2", 400), 1)
	require.NoError(t, err)
	_, err = store.UpdateQuantity("1", 3)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(1300).Equal(store.TotalPrice()))
	assert.Equal(t, 4, store.TotalQuantity())
	assert.Len(t, store.Items(), 2)

	st := store.RemoveItem("2")
	assert.Equal(t, 1, st.Len())

	st = store.Clear()
	assert.True(t, st.IsEmpty())
	assert.Len(t, store.Items(), 0)
	assert.True(t, store.TotalPrice().IsZero())
}

func TestStore_RejectedCommandKeepsState(t *testing.T) {
	store := NewStore(nil)
	_, err := store.AddItem(product("1", 300), 2)
	require.NoError(t, err)
	before := store.Snapshot()

	st, err := store.AddItem(product("1", 300), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, before, st)
	assert.Equal(t, before, store.Snapshot())
}

func TestStore_SubscribersSeeEverySnapshot(t *testing.T) {
	store := NewStore(nil)
	var seen []int
	store.Subscribe(func(s State) { seen = append(seen, s.TotalQuantity()) })

	_, _ = store.AddItem(product("1", 300), 1)
	_, _ = store.AddItem(product("1", 300), 2)
	_, _ = store.AddItem(product("1", 300), -1)
	store.Clear()

	assert.Equal(t, []int{1, 3, 0}, seen)
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	store := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.AddItem(product("1", 100), 1)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, store.Snapshot().Len())
	assert.Equal(t, 50, store.TotalQuantity())
}
