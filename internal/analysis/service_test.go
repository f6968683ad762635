package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tirescan-backend/internal/shared/storage/object"
	"tirescan-backend/internal/shops"
	"tirescan-backend/internal/vision"
)

const wellFormedOutput = `{
  "core": {
    "size": "205/55R16",
    "loadIndex": "91",
    "speedRating": "V",
    "brand": "Michelin",
    "model": "Primacy",
    "dot": {"week": "22", "year": "2019", "description": "DOT 2219"}
  },
  "condition": {
    "status": "green",
    "label": "Tread looks healthy",
    "reasons": ["Even wear", "No visible cracks"],
    "confidence": 0.82,
    "disclaimer": "Visual estimate only. Have a qualified technician inspect the tire before making safety decisions."
  },
  "context": {"ageYears": null, "ageAdvisory": null, "commonFitment": ["compact sedans"]},
  "rawText": "MICHELIN PRIMACY 205/55R16 91V"
}`

type fakeVision struct {
	out string
	err error
}

func (f fakeVision) Extract(ctx context.Context, req vision.Request) (string, error) {
	return f.out, f.err
}

type blockingVision struct{}

func (blockingVision) Extract(ctx context.Context, req vision.Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
	return nil
}

func (m *memoryCache) Ping(ctx context.Context) error { return nil }

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (m *memoryStore) Save(ctx context.Context, p object.Photo) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[p.Key()] = p.Data
	return p.Key(), nil
}

type failingInventory struct{}

func (failingInventory) TiresBySize(ctx context.Context, size string) ([]shops.SizedTire, error) {
	return nil, errors.New("registry unavailable")
}

func newTestInventory(t *testing.T) *shops.MemoryRepo {
	t.Helper()
	ctx := context.Background()
	repo := shops.NewMemoryRepo()
	for _, s := range testRegistry() {
		require.NoError(t, repo.Create(ctx, s))
	}
	return repo
}

func newTestService(t *testing.T, client vision.Client) *Service {
	t.Helper()
	return &Service{
		Vision:      client,
		Inventory:   newTestInventory(t),
		MaxAttempts: 1,
		Now:         func() time.Time { return referenceNow },
	}
}

func TestAnalyzeWellFormedRoundTrip(t *testing.T) {
	svc := newTestService(t, fakeVision{out: wellFormedOutput})

	out, err := svc.Analyze(context.Background(), Input{Image: []byte("jpeg"), MimeType: "image/jpeg"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)

	var expected struct {
		Core      CoreSpec    `json:"core"`
		Condition Condition   `json:"condition"`
		Context   ContextInfo `json:"context"`
	}
	require.NoError(t, json.Unmarshal([]byte(wellFormedOutput), &expected))

	got := out.Result
	assert.Equal(t, expected.Core, got.Core)
	assert.Equal(t, expected.Condition, got.Condition)
	assert.Equal(t, expected.Context.CommonFitment, got.Context.CommonFitment)
	require.NotNil(t, got.Context.AgeYears)
	assert.Equal(t, 5.01, *got.Context.AgeYears)
	assert.Equal(t, AdvisoryApproaching, *got.Context.AgeAdvisory)

	assert.Equal(t, 2, got.Availability.ShopsWithSize)
	assert.Equal(t, 9, got.Availability.InventoryCount)
	assert.Equal(t, &PriceRange{Currency: "USD", Min: 100, Max: 120}, got.Availability.PriceRange)
}

func TestAnalyzeMalformedOutputDegrades(t *testing.T) {
	svc := newTestService(t, fakeVision{out: "Sorry, I can't help with that."})

	out, err := svc.Analyze(context.Background(), Input{Image: []byte("jpeg"), MimeType: "image/jpeg"})
	require.NoError(t, err)

	got := out.Result
	assert.Equal(t, CoreSpec{}, got.Core)
	assert.Equal(t, DefaultCondition(), got.Condition)
	assert.Nil(t, got.Context.AgeYears)
	assert.Equal(t, []string{}, got.Context.CommonFitment)
	assert.Equal(t, Availability{SamplePrices: []float64{}}, got.Availability)
}

func TestAnalyzeRepairsSizeBeforeMatching(t *testing.T) {
	raw := `{"core":{"size":"205/55 R16"},"rawText":"205/55R16 91V"}`
	svc := newTestService(t, fakeVision{out: raw})

	out, err := svc.Analyze(context.Background(), Input{Image: []byte("jpeg")})
	require.NoError(t, err)
	assert.Equal(t, "205/55R16", *out.Result.Core.Size)
	assert.Equal(t, "91", *out.Result.Core.LoadIndex)
	assert.Equal(t, 2, out.Result.Availability.ShopsWithSize)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		svc     *Service
		in      Input
		wantErr error
	}{
		{
			name:    "missing credential before missing image",
			svc:     &Service{Vision: vision.UnconfiguredClient{}},
			in:      Input{},
			wantErr: vision.ErrMissingCredential,
		},
		{
			name:    "no image",
			svc:     &Service{Vision: fakeVision{out: "{}"}},
			in:      Input{},
			wantErr: ErrNoImage,
		},
		{
			name:    "upstream failure",
			svc:     &Service{Vision: fakeVision{err: &vision.StatusError{StatusCode: 401}}, MaxAttempts: 3},
			in:      Input{Image: []byte("x")},
			wantErr: ErrUpstream,
		},
		{
			name:    "upstream timeout",
			svc:     &Service{Vision: blockingVision{}, Timeout: 20 * time.Millisecond, MaxAttempts: 1},
			in:      Input{Image: []byte("x")},
			wantErr: ErrUpstreamTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Analyze(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAnalyzeRegistryFailureIsAnError(t *testing.T) {
	svc := &Service{Vision: fakeVision{out: wellFormedOutput}, Inventory: failingInventory{}}
	_, err := svc.Analyze(context.Background(), Input{Image: []byte("x")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUpstream)
}

type countingVision struct {
	mu    sync.Mutex
	calls int
	out   string
}

func (c *countingVision) Extract(ctx context.Context, req vision.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.out, nil
}

func TestAnalyzeUsesCache(t *testing.T) {
	client := &countingVision{out: wellFormedOutput}
	svc := newTestService(t, client)
	svc.Cache = &memoryCache{}

	in := Input{Image: []byte("jpeg"), MimeType: "image/jpeg"}
	first, err := svc.Analyze(context.Background(), in)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Result, second.Result)

	_, err = svc.Analyze(context.Background(), Input{Image: []byte("other"), MimeType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
}

func TestAnalyzeArchivesPhoto(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(t, fakeVision{out: "{}"})
	svc.Store = store
	svc.ArchiveImages = true

	out, err := svc.Analyze(context.Background(), Input{Image: []byte("jpeg"), MimeType: "image/jpeg", FileName: "my tire.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), store.objects["analyses/"+out.ID+"/my_tire.jpg"])
}

func TestAnalyzeArchiveFailureIsNotFatal(t *testing.T) {
	svc := newTestService(t, fakeVision{out: "{}"})
	svc.Store = &memoryStore{err: errors.New("disk full")}
	svc.ArchiveImages = true

	_, err := svc.Analyze(context.Background(), Input{Image: []byte("jpeg")})
	assert.NoError(t, err)
}
