package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Registry holds the features the crawl daemon mounts. Today that is the
// crawler alone; the daemon still goes through the registry so health,
// routes and shutdown do not depend on which features exist.
//
// Features are initialized in registration order and shut down in reverse.
type Registry struct {
	mu          sync.RWMutex
	features    []Feature
	byName      map[string]int
	initialized map[string]bool
	logger      *Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *Logger) *Registry {
	return &Registry{
		byName:      make(map[string]int),
		initialized: make(map[string]bool),
		logger:      logger,
	}
}

// Register mounts a feature. Names must be unique.
func (r *Registry) Register(feature Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := feature.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("feature %s already registered", name)
	}

	r.byName[name] = len(r.features)
	r.features = append(r.features, feature)
	r.logger.Info("Registered feature", "name", name, "enabled", feature.Enabled())
	return nil
}

// enabled returns the enabled features in registration order
func (r *Registry) enabled() []Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Feature
	for _, feature := range r.features {
		if feature.Enabled() {
			out = append(out, feature)
		}
	}
	return out
}

// InitAll initializes the enabled features. When one fails, the features
// already initialized are shut down again before the error is returned.
func (r *Registry) InitAll(ctx context.Context) error {
	features := r.enabled()
	r.logger.Info("Initializing features", "count", len(features))

	for i, feature := range features {
		if err := feature.Init(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				r.shutdown(ctx, features[j])
			}
			return fmt.Errorf("failed to initialize feature %s: %w", feature.Name(), err)
		}
		r.setInitialized(feature.Name(), true)
		r.logger.Info("Initialized feature", "name", feature.Name())
	}

	return nil
}

// ShutdownAll shuts down the initialized features in reverse registration
// order and returns the joined errors
func (r *Registry) ShutdownAll(ctx context.Context) error {
	features := r.enabled()
	r.logger.Info("Shutting down features", "count", len(features))

	var errs []error
	for i := len(features) - 1; i >= 0; i-- {
		if err := r.shutdown(ctx, features[i]); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", features[i].Name(), err))
		}
	}

	return errors.Join(errs...)
}

func (r *Registry) shutdown(ctx context.Context, feature Feature) error {
	name := feature.Name()
	if !r.isInitialized(name) {
		return nil
	}

	err := feature.Shutdown(ctx)
	r.setInitialized(name, false)
	if err != nil {
		r.logger.Error("Failed to shutdown feature", "name", name, "error", err)
		return err
	}
	r.logger.Info("Shutdown feature", "name", name)
	return nil
}

func (r *Registry) isInitialized(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized[name]
}

func (r *Registry) setInitialized(name string, value bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initialized[name] = value
}

// GetAllRoutes returns the routes of every enabled feature
func (r *Registry) GetAllRoutes() []Route {
	var routes []Route
	for _, feature := range r.enabled() {
		routes = append(routes, feature.Routes()...)
	}
	return routes
}

// GetFeatureStatus reports every registered feature for /healthz
func (r *Registry) GetFeatureStatus() map[string]FeatureStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := make(map[string]FeatureStatus, len(r.features))
	for _, feature := range r.features {
		status[feature.Name()] = FeatureStatus{
			Name:        feature.Name(),
			Description: feature.Description(),
			Enabled:     feature.Enabled(),
			Initialized: r.initialized[feature.Name()],
		}
	}
	return status
}

// FeatureStatus is one entry of the /healthz feature map
type FeatureStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	Initialized bool   `json:"initialized"`
}
