// Package component defines lifecycle-managed infrastructure pieces (the
// database pool, the HTTP server) and a registry that starts them in order
// and stops them in reverse.
package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a piece of infrastructure with a start/stop lifecycle.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description is the one-line startup summary of a component.
type Description struct {
	// Name is the display name. Empty means the component's Name().
	Name string
	// Type categorizes the component: "database", "server".
	Type string
	// Details is shown verbatim, e.g. "sqlite feedback.db" or ":8080".
	// It must not contain credentials.
	Details string
}

// Describable is optionally implemented by components that report
// themselves in the startup summary.
type Describable interface {
	Describe() Description
}
