package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreEmptyStore(t *testing.T) {
	engine, warnings, err := Restore(context.Background(), NewMemoryStore(), testKey)
	require.NoError(t, err)
	assert.Empty(t, engine.State().Active)
	assert.Empty(t, engine.State().Saved)
	assert.True(t, warnings.Has(SlotActive, WarningMissing))
	assert.True(t, warnings.Has(SlotSaved, WarningMissing))
	assert.False(t, warnings.Degraded())
}

func TestRestoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	engine, err := NewEngine(store, testKey)
	require.NoError(t, err)
	ctx := context.Background()
	_, err = engine.AddItem(ctx, product("1", "12.50"))
	require.NoError(t, err)
	_, err = engine.AddItem(ctx, product("2", "3"))
	require.NoError(t, err)
	_, err = engine.MoveToSaved(ctx, "2")
	require.NoError(t, err)

	restored, warnings, err := Restore(ctx, store, testKey)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"1"}, ids(restored.State().Active))
	assert.Equal(t, []string{"2"}, ids(restored.State().Saved))
	assert.True(t, restored.Total().Equal(engine.Total()))
}

func TestRestoreOneSlotMissing(t *testing.T) {
	store := NewMemoryStore()
	store.Put(testKey, SlotActive, []byte(`[{"product_id":"1","name":"Lamp","price":"40","quantity":2}]`))

	engine, warnings, err := Restore(context.Background(), store, testKey)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.True(t, warnings.Has(SlotSaved, WarningMissing))
	assert.Equal(t, 2, quantityOf(engine.State().Active, "1"))
	assert.Equal(t, "80", engine.Total().String())
}

func TestRestoreCorruptSlotKeepsTheOther(t *testing.T) {
	store := NewMemoryStore()
	store.Put(testKey, SlotActive, []byte(`{not json`))
	store.Put(testKey, SlotSaved, []byte(`[{"product_id":"9","name":"Rug","price":"15","quantity":1}]`))

	engine, warnings, err := Restore(context.Background(), store, testKey)
	require.NoError(t, err)
	assert.True(t, warnings.Has(SlotActive, WarningCorrupt))
	assert.False(t, warnings.Has(SlotSaved, WarningCorrupt))
	assert.True(t, warnings.Degraded())
	assert.Empty(t, engine.State().Active)
	assert.Equal(t, []string{"9"}, ids(engine.State().Saved))
}

func TestRestoreDropsInvalidLines(t *testing.T) {
	store := NewMemoryStore()
	store.Put(testKey, SlotActive, []byte(`[
		{"product_id":"1","name":"ok","price":"1","quantity":1},
		{"product_id":"","name":"no id","price":"1","quantity":1},
		{"product_id":"2","name":"zero","price":"1","quantity":0},
		{"product_id":"3","name":"negative","price":"-1","quantity":1},
		{"product_id":"1","name":"dup","price":"1","quantity":4}
	]`))
	store.Put(testKey, SlotSaved, []byte(`[
		{"product_id":"1","name":"also active","price":"1","quantity":1},
		{"product_id":"5","name":"fine","price":"2","quantity":1}
	]`))

	engine, warnings, err := Restore(context.Background(), store, testKey)
	require.NoError(t, err)

	state := engine.State()
	assert.Equal(t, []string{"1"}, ids(state.Active))
	assert.Equal(t, 1, state.Active[0].Quantity)
	assert.Equal(t, []string{"5"}, ids(state.Saved))

	require.True(t, warnings.Has(SlotActive, WarningInvalid))
	require.True(t, warnings.Has(SlotSaved, WarningInvalid))
	for _, w := range warnings {
		if w.Slot == SlotActive {
			assert.Equal(t, 4, w.Dropped)
		}
		if w.Slot == SlotSaved {
			assert.Equal(t, 1, w.Dropped)
		}
	}
}

type unavailableStore struct{ MemoryStore }

func (*unavailableStore) Load(context.Context, string, ...string) (map[string][]byte, error) {
	return nil, errors.New("connection refused")
}

func TestRestoreStoreUnavailable(t *testing.T) {
	engine, warnings, err := Restore(context.Background(), &unavailableStore{}, testKey)
	require.NoError(t, err)
	assert.True(t, warnings.Has(SlotActive, WarningUnavailable))
	assert.True(t, warnings.Has(SlotSaved, WarningUnavailable))
	assert.Empty(t, engine.State().Active)
}

func TestRestoreRequiresKey(t *testing.T) {
	_, _, err := Restore(context.Background(), NewMemoryStore(), "")
	require.Error(t, err)
}
