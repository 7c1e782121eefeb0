package component

import (
	"context"
	"errors"
	"testing"
)

type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	desc     *Description
	events   *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "start "+f.name)
	}
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "stop "+f.name)
	}
	return f.stopErr
}

func (f *fakeComponent) Health(context.Context) Health { return f.health }

type describedComponent struct {
	fakeComponent
}

func (d *describedComponent) Describe() Description { return *d.desc }

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(&fakeComponent{name: "database"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&fakeComponent{name: "database"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
	if r.Get("database") == nil {
		t.Error("expected registered component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestRegistry_Ordering(t *testing.T) {
	var events []string
	r := NewRegistry(nil)
	_ = r.Register(&fakeComponent{name: "database", events: &events})
	_ = r.Register(&fakeComponent{name: "http-server", events: &events})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{"start database", "start http-server", "stop http-server", "stop database"}
	if !equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}

	// A second stop is a no-op.
	events = events[:0]
	if err := r.StopAll(context.Background()); err != nil || len(events) != 0 {
		t.Errorf("second StopAll: %v %v", err, events)
	}
}

func TestRegistry_StartFailureRollsBack(t *testing.T) {
	var events []string
	boom := errors.New("connection refused")
	r := NewRegistry(nil)
	_ = r.Register(&fakeComponent{name: "database", events: &events})
	_ = r.Register(&fakeComponent{name: "http-server", events: &events, startErr: boom})

	err := r.StartAll(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped start error, got %v", err)
	}

	want := []string{"start database", "start http-server", "stop database"}
	if !equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestRegistry_StopErrorsJoined(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	r := NewRegistry(nil)
	_ = r.Register(&fakeComponent{name: "a", stopErr: first})
	_ = r.Register(&fakeComponent{name: "b", stopErr: second})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestRegistry_HealthAll(t *testing.T) {
	r := NewRegistry(nil)
	_ = r.Register(&fakeComponent{name: "database", health: Health{Name: "database", Status: StatusHealthy}})
	_ = r.Register(&fakeComponent{name: "cache", health: Health{Name: "cache", Status: StatusUnhealthy, Message: "timeout"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("unexpected health %+v", results)
	}
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry(nil)
	_ = r.Register(&fakeComponent{name: "plain"})
	_ = r.Register(&describedComponent{fakeComponent{
		name: "database",
		desc: &Description{Type: "database", Details: "sqlite :memory:"},
	}})

	got := r.Describe()
	if len(got) != 1 {
		t.Fatalf("expected 1 description, got %d", len(got))
	}
	if got[0].Name != "database" || got[0].Details != "sqlite :memory:" {
		t.Errorf("unexpected description %+v", got[0])
	}
}
