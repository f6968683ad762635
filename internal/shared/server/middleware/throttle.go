package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"tirescan-backend/internal/shared/server/respond"
	"tirescan-backend/internal/shared/telemetry"
)

const throttleIdleTTL = 10 * time.Minute

// Throttle keeps a token bucket per client IP for the routes it guards.
// Buckets untouched for throttleIdleTTL are dropped on the next sweep.
// A Throttle with a non-positive rate or burst admits everything.
type Throttle struct {
	name    string
	limit   rate.Limit
	burst   int
	now     func() time.Time
	mu      sync.Mutex
	clients map[string]*throttleClient
	swept   time.Time
}

type throttleClient struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewThrottle(name string, perSecond float64, burst int, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{
		name:    name,
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     now,
		clients: make(map[string]*throttleClient),
		swept:   now(),
	}
}

func (t *Throttle) enabled() bool {
	return t != nil && t.limit > 0 && t.burst > 0
}

// Allow takes one token for key. When none is left it reports how long
// until the next one.
func (t *Throttle) Allow(key string) (bool, time.Duration) {
	if !t.enabled() {
		return true, 0
	}
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep(now)

	cl, ok := t.clients[key]
	if !ok {
		cl = &throttleClient{lim: rate.NewLimiter(t.limit, t.burst)}
		t.clients[key] = cl
	}
	cl.seen = now
	if cl.lim.AllowN(now, 1) {
		return true, 0
	}
	res := cl.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	wait := res.DelayFrom(now)
	res.CancelAt(now)
	return false, wait
}

func (t *Throttle) sweep(now time.Time) {
	if now.Sub(t.swept) < throttleIdleTTL {
		return
	}
	for key, cl := range t.clients {
		if now.Sub(cl.seen) >= throttleIdleTTL {
			delete(t.clients, key)
		}
	}
	t.swept = now
}

// Clients reports how many buckets are tracked.
func (t *Throttle) Clients() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

// Handler rejects over-limit clients with 429 and a Retry-After header.
func (t *Throttle) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := t.Allow(c.ClientIP())
		if ok {
			c.Next()
			return
		}
		if wait <= 0 {
			wait = time.Second
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		telemetry.Warn("http.throttled", map[string]any{
			"throttle":   t.name,
			"request_id": RequestIDFromContext(c),
			"client_ip":  c.ClientIP(),
			"wait_ms":    wait.Milliseconds(),
		})
		respond.RateLimited(c, int(wait.Milliseconds()))
	}
}
