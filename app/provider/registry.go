package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SwayEquilibrium/pos-payments/app/types"
)

var (
	ErrDuplicateProvider     = errors.New("provider already registered")
	ErrInvalidProviderConfig = errors.New("invalid provider configuration")
	ErrProviderNotFound      = errors.New("provider not found")
	ErrProviderDisabled      = errors.New("provider disabled")
	ErrTenantNotAllowed      = errors.New("tenant not allowed for provider")
	ErrLocationNotAllowed    = errors.New("location not allowed for provider")
	ErrNoProviderForMethod   = errors.New("no provider supports payment method")
	ErrNoDefaultProvider     = errors.New("no default provider configured")
)

const defaultHealthCheckTimeout = 5 * time.Second

// Registry is the process-wide catalog of payment providers and their
// per-tenant configuration. It only selects and returns providers; it never
// performs a payment itself. Construct one explicitly and inject it —
// registration happens centrally at application start-up, never from
// provider packages themselves.
//
// A single mutex guards both maps so a reader can never observe a provider
// present in one but not the other.
type Registry struct {
	mu                 sync.RWMutex
	providers          map[string]Provider
	configs            map[string]*types.ProviderConfig
	defaultName        string
	healthCheckTimeout time.Duration
	logger             logrus.FieldLogger
}

func NewRegistry(logger logrus.FieldLogger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		providers:          map[string]Provider{},
		configs:            map[string]*types.ProviderConfig{},
		healthCheckTimeout: defaultHealthCheckTimeout,
		logger:             logger,
	}
}

// SetHealthCheckTimeout overrides the per-provider probe bound.
func (r *Registry) SetHealthCheckTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	r.healthCheckTimeout = d
	r.mu.Unlock()
}

// Register adds a provider under its own name. The config is validated by
// the provider itself and rejected (not stored) when invalid; validation
// warnings are logged but do not block.
func (r *Registry) Register(p Provider, config *types.ProviderConfig) error {
	name := strings.TrimSpace(p.Name())
	if name == "" {
		return fmt.Errorf("%w: provider name is empty", ErrInvalidProviderConfig)
	}
	if config == nil {
		config = &types.ProviderConfig{Enabled: true}
	}

	validation := p.ValidateConfiguration(config)
	if validation == nil || !validation.Valid {
		details := "no validation result"
		if validation != nil {
			details = strings.Join(validation.Errors, "; ")
		}
		return fmt.Errorf("%w: %s: %s", ErrInvalidProviderConfig, name, details)
	}
	for _, warning := range validation.Warnings {
		r.logger.WithField("provider", name).Warn(warning)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, name)
	}
	r.providers[name] = p
	r.configs[name] = config.Clone()
	return nil
}

// Unregister removes the provider and its config, reporting whether
// anything was removed. A removed default is cleared.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return false
	}
	delete(r.providers, name)
	delete(r.configs, name)
	if r.defaultName == name {
		r.defaultName = ""
	}
	return true
}

// Get looks up a provider by name. With a context, the provider's config is
// enforced; each failure mode is a distinguishable sentinel so callers can
// branch on cause.
func (r *Registry) Get(name string, pctx *types.PaymentContext) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	if pctx != nil {
		if err := checkScope(name, r.configs[name], pctx); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// GetAvailable returns every enabled, in-scope provider sorted ascending by
// priority (lower tried first, names break ties). Providers whose scope
// evaluation fails are skipped rather than aborting the listing.
func (r *Registry) GetAvailable(pctx *types.PaymentContext) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type candidate struct {
		name     string
		priority int
		provider Provider
	}

	candidates := make([]candidate, 0, len(r.providers))
	for name, p := range r.providers {
		config := r.configs[name]
		if pctx != nil {
			if err := checkScope(name, config, pctx); err != nil {
				continue
			}
		} else if config == nil || !config.Enabled {
			continue
		}
		priority := 0
		if config != nil {
			priority = config.Priority
		}
		candidates = append(candidates, candidate{name: name, priority: priority, provider: p})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].name < candidates[j].name
	})

	result := make([]Provider, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.provider)
	}
	return result
}

// GetBestProvider walks the available providers in priority order and
// returns the first one supporting the requested method code.
func (r *Registry) GetBestProvider(methodCode string, pctx *types.PaymentContext) (Provider, error) {
	for _, p := range r.GetAvailable(pctx) {
		if _, ok := methodByCode(p.SupportedMethods(), methodCode); ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoProviderForMethod, methodCode)
}

func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	r.defaultName = name
	return nil
}

func (r *Registry) GetDefault(pctx *types.PaymentContext) (Provider, error) {
	r.mu.RLock()
	name := r.defaultName
	r.mu.RUnlock()

	if name == "" {
		return nil, ErrNoDefaultProvider
	}
	return r.Get(name, pctx)
}

// HealthCheck probes providers concurrently: the available set when a
// context is given, the full registry otherwise. Each probe is bounded by a
// timeout and isolated from the others — a slow, failing, or panicking
// provider becomes an unhealthy entry and never aborts the aggregate.
func (r *Registry) HealthCheck(ctx context.Context, pctx *types.PaymentContext) map[string]*types.HealthStatus {
	targets := map[string]Provider{}
	if pctx != nil {
		for _, p := range r.GetAvailable(pctx) {
			targets[p.Name()] = p
		}
	} else {
		r.mu.RLock()
		for name, p := range r.providers {
			targets[name] = p
		}
		r.mu.RUnlock()
	}

	results := make(map[string]*types.HealthStatus, len(targets))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for name, p := range targets {
		wg.Add(1)
		go func(name string, p Provider) {
			defer wg.Done()
			status := r.probeProvider(ctx, p)
			resultsMu.Lock()
			results[name] = status
			resultsMu.Unlock()
		}(name, p)
	}
	wg.Wait()

	return results
}

func (r *Registry) probeProvider(ctx context.Context, p Provider) *types.HealthStatus {
	probeCtx, cancel := context.WithTimeout(ctx, r.healthCheckTimeout)
	defer cancel()

	done := make(chan *types.HealthStatus, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- &types.HealthStatus{
					Healthy: false,
					Details: fmt.Sprintf("health check panicked: %v", rec),
				}
			}
		}()
		done <- p.HealthCheck(probeCtx)
	}()

	select {
	case status := <-done:
		if status == nil {
			return &types.HealthStatus{Healthy: false, Details: "health check returned no status"}
		}
		return status
	case <-probeCtx.Done():
		return &types.HealthStatus{Healthy: false, Details: "health check timed out"}
	}
}

func checkScope(name string, config *types.ProviderConfig, pctx *types.PaymentContext) error {
	if config == nil || !config.Enabled {
		return fmt.Errorf("%w: %s", ErrProviderDisabled, name)
	}
	if len(config.TenantIDs) > 0 && !containsString(config.TenantIDs, pctx.TenantID) {
		return fmt.Errorf("%w: %s for tenant %s", ErrTenantNotAllowed, name, pctx.TenantID)
	}
	if len(config.LocationIDs) > 0 && !containsString(config.LocationIDs, pctx.LocationID) {
		return fmt.Errorf("%w: %s for location %s", ErrLocationNotAllowed, name, pctx.LocationID)
	}
	return nil
}
