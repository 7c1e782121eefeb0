package server

import (
	"context"

	"github.com/kbukum/feedback/component"
)

// ComponentName is the registry name of the HTTP server.
const ComponentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component adapts Server to the component lifecycle.
type Component struct {
	server *Server
}

// NewComponent returns a component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

func (c *Component) Name() string { return ComponentName }

func (c *Component) Start(ctx context.Context) error { return c.server.Start(ctx) }

func (c *Component) Stop(ctx context.Context) error { return c.server.Stop(ctx) }

func (c *Component) Health(ctx context.Context) component.Health { return c.server.Health(ctx) }

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: c.server.Addr(),
	}
}
