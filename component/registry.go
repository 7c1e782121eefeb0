package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/feedback/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

type componentEntry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	entries []*componentEntry
	lookup  map[string]*componentEntry
	log     *logger.Logger
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		lookup: make(map[string]*componentEntry),
		log:    log.WithComponent("registry"),
	}
}

// Register adds a component. Register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	entry := &componentEntry{component: c}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry

	r.log.Debug("component registered", map[string]any{logger.FieldComponent: name})
	return nil
}

// StartAll starts all components in registration order. On the first
// failure the components already started are stopped again.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.started {
			continue
		}
		name := entry.component.Name()
		if err := entry.component.Start(ctx); err != nil {
			r.log.Error("component start failed", map[string]any{
				logger.FieldComponent: name,
				logger.FieldError:     err.Error(),
			})
			if stopErr := r.stopStarted(ctx); stopErr != nil {
				err = errors.Join(err, stopErr)
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		entry.started = true
		r.log.Debug("component started", map[string]any{logger.FieldComponent: name})
	}
	return nil
}

// StopAll stops every started component in reverse registration order.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopStarted(ctx)
}

func (r *Registry) stopStarted(ctx context.Context) error {
	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if !entry.started {
			continue
		}
		name := entry.component.Name()

		stopCtx, cancel := context.WithTimeout(ctx, DefaultStopTimeout)
		if err := entry.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("component stop failed", map[string]any{
				logger.FieldComponent: name,
				logger.FieldError:     err.Error(),
			})
		} else {
			r.log.Debug("component stopped", map[string]any{logger.FieldComponent: name})
		}
		cancel()
		entry.started = false
	}
	return errors.Join(errs...)
}

// HealthAll returns health status for all registered components.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, entry := range r.entries {
		results = append(results, entry.component.Health(ctx))
	}
	return results
}

// Describe returns the descriptions of the components that provide one.
func (r *Registry) Describe() []Description {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Description
	for _, entry := range r.entries {
		d, ok := entry.component.(Describable)
		if !ok {
			continue
		}
		desc := d.Describe()
		if desc.Name == "" {
			desc.Name = entry.component.Name()
		}
		out = append(out, desc)
	}
	return out
}

// Get returns a registered component by name, or nil if not found.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, exists := r.lookup[name]; exists {
		return entry.component
	}
	return nil
}
