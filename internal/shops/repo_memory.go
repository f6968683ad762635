package shops

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo with an incrementally maintained size index.
type MemoryRepo struct {
	mu      sync.RWMutex
	order   []string
	shops   map[string]*shopRecord
	bySize  map[string][]sizeEntry
	nextSeq int64
}

type shopRecord struct {
	seq  int64
	shop Shop
}

type sizeEntry struct {
	shopSeq int64
	tireSeq int64
	shopID  string
	tireIdx int
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		shops:  make(map[string]*shopRecord),
		bySize: make(map[string][]sizeEntry),
	}
}

func (r *MemoryRepo) List(ctx context.Context) ([]Shop, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Shop, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneShop(r.shops[id].shop))
	}
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Shop, error) {
	if err := ctx.Err(); err != nil {
		return Shop{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.shops[id]
	if !ok {
		return Shop{}, ErrNotFound
	}
	return cloneShop(rec.shop), nil
}

func (r *MemoryRepo) Create(ctx context.Context, shop Shop) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.shops[shop.ID]; exists {
		return ErrInvalidInput
	}
	r.nextSeq++
	rec := &shopRecord{seq: r.nextSeq, shop: cloneShop(shop)}
	rec.shop.Tires = nil
	r.shops[shop.ID] = rec
	r.order = append(r.order, shop.ID)
	for _, t := range shop.Tires {
		r.addTireLocked(rec, t)
	}
	return nil
}

func (r *MemoryRepo) AddTire(ctx context.Context, shopID string, tire Tire) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.shops[shopID]
	if !ok {
		return ErrNotFound
	}
	r.addTireLocked(rec, tire)
	return nil
}

func (r *MemoryRepo) addTireLocked(rec *shopRecord, tire Tire) {
	r.nextSeq++
	rec.shop.Tires = append(rec.shop.Tires, tire)
	r.bySize[tire.Size] = append(r.bySize[tire.Size], sizeEntry{
		shopSeq: rec.seq,
		tireSeq: r.nextSeq,
		shopID:  rec.shop.ID,
		tireIdx: len(rec.shop.Tires) - 1,
	})
}

func (r *MemoryRepo) TiresBySize(ctx context.Context, size string) ([]SizedTire, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	entries := append([]sizeEntry(nil), r.bySize[size]...)
	out := make([]SizedTire, 0, len(entries))
	// Entries are appended in add order; registry order is shop first.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].shopSeq != entries[j].shopSeq {
			return entries[i].shopSeq < entries[j].shopSeq
		}
		return entries[i].tireSeq < entries[j].tireSeq
	})
	for _, e := range entries {
		rec := r.shops[e.shopID]
		out = append(out, SizedTire{
			ShopID:   rec.shop.ID,
			ShopName: rec.shop.Name,
			Tire:     rec.shop.Tires[e.tireIdx],
		})
	}
	r.mu.RUnlock()
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
