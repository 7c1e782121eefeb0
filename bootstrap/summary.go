package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/feedback/component"
	"github.com/kbukum/feedback/logger"
)

// RouteInfo describes a registered HTTP route.
type RouteInfo struct {
	Method string
	Path   string
	Public bool
}

// Summary collects what the application brought up so it can be logged
// once startup completes.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	routes          []RouteInfo
}

// NewSummary creates a summary for the named service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path string, public bool) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path, Public: public})
}

// Routes returns the tracked routes.
func (s *Summary) Routes() []RouteInfo {
	return s.routes
}

// Log writes one entry per described component, one per route and a final
// entry with the live health counts.
func (s *Summary) Log(ctx context.Context, registry *component.Registry, log *logger.Logger) {
	healthy, total := 0, 0
	if registry != nil {
		for _, d := range registry.Describe() {
			log.Info("infrastructure", map[string]any{
				logger.FieldComponent: d.Name,
				"type":                d.Type,
				"details":             d.Details,
			})
		}
		for _, h := range registry.HealthAll(ctx) {
			total++
			if h.Status == component.StatusHealthy {
				healthy++
				continue
			}
			log.Warn("component not healthy", map[string]any{
				logger.FieldComponent: h.Name,
				logger.FieldStatus:    string(h.Status),
				logger.FieldReason:    h.Message,
			})
		}
	}

	for _, r := range s.routes {
		log.Debug("route", map[string]any{
			logger.FieldMethod: r.Method,
			logger.FieldPath:   r.Path,
			"public":           r.Public,
		})
	}

	log.Info("application started", map[string]any{
		logger.FieldService:  s.serviceName,
		"version":            s.version,
		"routes":             len(s.routes),
		"healthy":            healthy,
		"components":         total,
		logger.FieldDuration: s.startupDuration.Milliseconds(),
	})
}
