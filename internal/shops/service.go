package shops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tirescan-backend/internal/shared/telemetry"
)

// Service contains business logic for the shop registry.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// CreateShopInput is the payload for registering a shop.
type CreateShopInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// AddTireInput is the payload for adding an inventory line.
type AddTireInput struct {
	Code     string  `json:"code"`
	Brand    string  `json:"brand"`
	Model    string  `json:"model"`
	Size     string  `json:"size"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (s *Service) List(ctx context.Context) ([]Shop, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Shop, error) {
	return s.Repo.Get(ctx, strings.TrimSpace(id))
}

// Create registers a shop with an empty inventory.
func (s *Service) Create(ctx context.Context, in CreateShopInput) (Shop, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Shop{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	shop := Shop{
		ID:        uuid.NewString(),
		Name:      name,
		Address:   strings.TrimSpace(in.Address),
		Phone:     strings.TrimSpace(in.Phone),
		Tires:     []Tire{},
		CreatedAt: s.now(),
	}
	if err := s.Repo.Create(ctx, shop); err != nil {
		return Shop{}, err
	}
	return shop, nil
}

// AddTire appends an inventory line to a shop.
func (s *Service) AddTire(ctx context.Context, shopID string, in AddTireInput) (Tire, error) {
	tire, err := newTire(in)
	if err != nil {
		return Tire{}, err
	}
	if err := s.Repo.AddTire(ctx, strings.TrimSpace(shopID), tire); err != nil {
		return Tire{}, err
	}
	return tire, nil
}

// TiresBySize returns every inventory line whose size equals size exactly.
func (s *Service) TiresBySize(ctx context.Context, size string) ([]SizedTire, error) {
	return s.Repo.TiresBySize(ctx, size)
}

// SeedIfEmpty loads seed into the registry when it holds no shops.
func (s *Service) SeedIfEmpty(ctx context.Context, seed SeedFile) (int, error) {
	existing, err := s.Repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, ss := range seed.Shops {
		shop := Shop{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(ss.Name),
			Address:   strings.TrimSpace(ss.Address),
			Phone:     strings.TrimSpace(ss.Phone),
			CreatedAt: s.now(),
		}
		for _, st := range ss.Tires {
			tire, err := newTire(AddTireInput(st))
			if err != nil {
				return 0, fmt.Errorf("seed shop %q: %w", shop.Name, err)
			}
			shop.Tires = append(shop.Tires, tire)
		}
		if err := s.Repo.Create(ctx, shop); err != nil {
			return 0, err
		}
	}
	telemetry.Info("shops.seeded", map[string]any{"shops": len(seed.Shops)})
	return len(seed.Shops), nil
}

func newTire(in AddTireInput) (Tire, error) {
	size := strings.TrimSpace(in.Size)
	if size == "" {
		return Tire{}, fmt.Errorf("%w: size is required", ErrInvalidInput)
	}
	if in.Price < 0 {
		return Tire{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return Tire{}, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	return Tire{
		ID:       uuid.NewString(),
		Code:     strings.TrimSpace(in.Code),
		Brand:    strings.TrimSpace(in.Brand),
		Model:    strings.TrimSpace(in.Model),
		Size:     size,
		Price:    in.Price,
		Quantity: in.Quantity,
	}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
