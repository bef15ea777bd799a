package item

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePool(r5, r7 int) []Item {
	var pool []Item
	// Interleave parts so selection order is not just file order.
	for i := 0; i < r5 || i < r7; i++ {
		if i < r7 {
			pool = append(pool, Item{ID: fmt.Sprintf("r7-%02d", i), Part: PartR7, Options: []string{"a", "b"}})
		}
		if i < r5 {
			pool = append(pool, Item{ID: fmt.Sprintf("r5-%02d", i), Part: PartR5, Options: []string{"a", "b"}})
		}
	}
	return pool
}

func TestBlueprintSelect(t *testing.T) {
	bp := DefaultBlueprint()
	assert.Equal(t, 20, bp.Size())

	got, err := bp.Select(makePool(15, 10))
	require.NoError(t, err)
	require.Len(t, got, 20)

	for i := 0; i < 12; i++ {
		assert.Equal(t, PartR5, got[i].Part)
		assert.Equal(t, fmt.Sprintf("r5-%02d", i), got[i].ID)
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, PartR7, got[12+i].Part)
		assert.Equal(t, fmt.Sprintf("r7-%02d", i), got[12+i].ID)
	}
}

func TestBlueprintSelect_Deterministic(t *testing.T) {
	pool := makePool(12, 8)
	a, err := DefaultBlueprint().Select(pool)
	require.NoError(t, err)
	b, err := DefaultBlueprint().Select(pool)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBlueprintSelect_InsufficientPool(t *testing.T) {
	tests := []struct {
		name   string
		r5, r7 int
	}{
		{"short on R5", 11, 8},
		{"short on R7", 12, 7},
		{"empty", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultBlueprint().Select(makePool(tt.r5, tt.r7))
			require.Error(t, err)
		})
	}
}

func TestItemHelpers(t *testing.T) {
	it := Item{Options: []string{"a", "b", "c"}, Answer: 2}
	assert.True(t, it.HasOption(0))
	assert.True(t, it.HasOption(2))
	assert.False(t, it.HasOption(3))
	assert.False(t, it.HasOption(-1))
	assert.True(t, it.IsCorrect(2))
	assert.False(t, it.IsCorrect(1))
}
