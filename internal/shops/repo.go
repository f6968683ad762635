package shops

import "context"

// Repo is the shop registry. List order is shop insertion order and each
// shop's tires keep their insertion order.
type Repo interface {
	List(ctx context.Context) ([]Shop, error)
	Get(ctx context.Context, id string) (Shop, error)
	Create(ctx context.Context, shop Shop) error
	AddTire(ctx context.Context, shopID string, tire Tire) error
	// TiresBySize returns exact size matches in shop order, then tire order.
	TiresBySize(ctx context.Context, size string) ([]SizedTire, error)
}
