package shops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceSeedIfEmptyLoadsDemoRegistry(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())
	seed, err := LoadSeed("")
	require.NoError(t, err)

	n, err := svc.SeedIfEmpty(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Demo Tire Center", list[0].Name)
	assert.Equal(t, "Highway Grip Pros", list[2].Name)

	matches, err := svc.TiresBySize(ctx, "205/55R16")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Urban Wheel & Tire", matches[0].ShopName)
	assert.Equal(t, 149.5, matches[0].Tire.Price)

	// A second seed is a no-op once shops exist.
	n, err = svc.SeedIfEmpty(ctx, seed)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServiceCreateValidatesName(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.Create(context.Background(), CreateShopInput{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceAddTireValidates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())
	shop, err := svc.Create(ctx, CreateShopInput{Name: "A"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   AddTireInput
	}{
		{name: "missing size", in: AddTireInput{Price: 10}},
		{name: "negative price", in: AddTireInput{Size: "205/55R16", Price: -1}},
		{name: "negative quantity", in: AddTireInput{Size: "205/55R16", Quantity: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTire(ctx, shop.ID, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	tire, err := svc.AddTire(ctx, shop.ID, AddTireInput{Size: " 205/55R16 ", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, "205/55R16", tire.Size)
	assert.NotEmpty(t, tire.ID)
}

func TestParseSeedRejectsNamelessShop(t *testing.T) {
	_, err := ParseSeed([]byte("shops:\n  - address: nowhere\n"))
	assert.Error(t, err)
}
