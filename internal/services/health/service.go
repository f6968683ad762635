package health

import (
	"context"
	"sort"
	"time"
)

const defaultTimeout = 2 * time.Second

// Check probes one dependency.
type Check func(ctx context.Context) error

// Service runs dependency checks for the health endpoint.
type Service struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewService constructs a health service over named checks.
func NewService(checks map[string]Check) *Service {
	cp := make(map[string]Check, len(checks))
	for name, check := range checks {
		if check != nil {
			cp[name] = check
		}
	}
	return &Service{checks: cp, timeout: defaultTimeout}
}

// Names lists the configured checks in order.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status runs every check and reports "ok" or the error text per check.
func (s *Service) Status(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok := true
	results := make(map[string]string, len(s.checks))
	for _, name := range s.Names() {
		if err := s.checks[name](ctx); err != nil {
			results[name] = err.Error()
			ok = false
			continue
		}
		results[name] = "ok"
	}
	return results, ok
}
