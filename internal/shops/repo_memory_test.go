package shops

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoTiresBySizeFollowsRegistryOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.Create(ctx, Shop{ID: "a", Name: "A"}))
	require.NoError(t, repo.Create(ctx, Shop{ID: "b", Name: "B"}))

	// Tires are added to B before A; lookups still follow shop order.
	require.NoError(t, repo.AddTire(ctx, "b", Tire{ID: "b1", Size: "205/55R16", Price: 100}))
	require.NoError(t, repo.AddTire(ctx, "a", Tire{ID: "a1", Size: "205/55R16", Price: 90}))
	require.NoError(t, repo.AddTire(ctx, "a", Tire{ID: "a2", Size: "225/45R17", Price: 80}))
	require.NoError(t, repo.AddTire(ctx, "a", Tire{ID: "a3", Size: "205/55R16", Price: 95}))

	got, err := repo.TiresBySize(ctx, "205/55R16")
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, st := range got {
		ids = append(ids, st.Tire.ID)
	}
	assert.Equal(t, []string{"a1", "a3", "b1"}, ids)
	assert.Equal(t, "A", got[0].ShopName)
	assert.Equal(t, "b", got[2].ShopID)
}

func TestMemoryRepoTiresBySizeIsExact(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.Create(ctx, Shop{ID: "a", Name: "A", Tires: []Tire{{ID: "t1", Size: "205/55R16"}}}))

	got, err := repo.TiresBySize(ctx, "205/55r16")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestMemoryRepoGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.Create(ctx, Shop{ID: "a", Name: "A", Tires: []Tire{{ID: "t1", Size: "205/55R16"}}}))

	shop, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	shop.Tires[0].Size = "mutated"

	again, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "205/55R16", again.Tires[0].Size)
}

func TestMemoryRepoMissingShop(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.AddTire(ctx, "missing", Tire{Size: "205/55R16"}), ErrNotFound)
}

func TestMemoryRepoConcurrentReadersAndWriters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.Create(ctx, Shop{ID: "a", Name: "A"}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = repo.AddTire(ctx, "a", Tire{Size: "205/55R16", Quantity: 1})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = repo.TiresBySize(ctx, "205/55R16")
				_, _ = repo.List(ctx)
			}
		}()
	}
	wg.Wait()

	got, err := repo.TiresBySize(ctx, "205/55R16")
	require.NoError(t, err)
	assert.Len(t, got, 400)
}
