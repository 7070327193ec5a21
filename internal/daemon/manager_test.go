package daemon

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/config"

	"github.com/gofrs/flock"
)

type mockComponent struct {
	name         string
	dependencies []string
	initCalled   bool
	startCalled  bool
	stopCalled   bool
	initError    error
	healthResult *ComponentHealth
}

func newMockComponent(name string, dependencies []string) *mockComponent {
	return &mockComponent{
		name:         name,
		dependencies: dependencies,
		healthResult: &ComponentHealth{
			Name:    name,
			Healthy: true,
		},
	}
}

func (m *mockComponent) Name() string {
	return m.name
}

func (m *mockComponent) Dependencies() []string {
	return m.dependencies
}

func (m *mockComponent) Init(ctx context.Context) error {
	m.initCalled = true
	return m.initError
}

func (m *mockComponent) Start(ctx context.Context) error {
	m.startCalled = true
	return nil
}

func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopCalled = true
	return nil
}

func (m *mockComponent) Health(ctx context.Context) (*ComponentHealth, error) {
	return m.healthResult, nil
}

func TestNewDaemon(t *testing.T) {
	d, err := NewDaemon(&config.Config{})
	if err != nil {
		t.Fatalf("NewDaemon() failed: %v", err)
	}
	if len(d.components) != 0 {
		t.Errorf("components = %v, want 0", len(d.components))
	}
	if d.Health() != StatusStarting {
		t.Errorf("health = %v, want %v", d.Health(), StatusStarting)
	}

	if _, err := NewDaemon(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestAddComponentBuildsReverseShutdownOrder(t *testing.T) {
	d, _ := NewDaemon(&config.Config{})
	d.AddComponent(newMockComponent("Session", nil))
	d.AddComponent(newMockComponent("Forwarders", nil))
	d.AddComponent(newMockComponent("Poller", []string{"Session", "Forwarders"}))

	want := []string{"Poller", "Forwarders", "Session"}
	if len(d.shutdownOrder) != len(want) {
		t.Fatalf("shutdownOrder = %v, want %v", d.shutdownOrder, want)
	}
	for i, name := range want {
		if d.shutdownOrder[i] != name {
			t.Errorf("shutdownOrder[%d] = %s, want %s", i, d.shutdownOrder[i], name)
		}
	}
}

func TestResolveInitOrderHonorsDependencies(t *testing.T) {
	d, _ := NewDaemon(&config.Config{})
	poller := newMockComponent("Poller", []string{"Session", "Forwarders"})
	session := newMockComponent("Session", nil)
	forwarders := newMockComponent("Forwarders", nil)
	// Registered dependents-first on purpose.
	d.AddComponent(poller)
	d.AddComponent(session)
	d.AddComponent(forwarders)

	order, err := d.resolveInitOrder()
	if err != nil {
		t.Fatalf("resolveInitOrder() failed: %v", err)
	}

	pos := make(map[string]int)
	for i, name := range order {
		pos[name] = i
	}
	if pos["Session"] > pos["Poller"] || pos["Forwarders"] > pos["Poller"] {
		t.Errorf("Poller initialized before its dependencies: %v", order)
	}
}

func TestResolveInitOrderDetectsCycle(t *testing.T) {
	d, _ := NewDaemon(&config.Config{})
	d.AddComponent(newMockComponent("A", []string{"B"}))
	d.AddComponent(newMockComponent("B", []string{"A"}))

	if _, err := d.resolveInitOrder(); err == nil {
		t.Error("Expected circular dependency error")
	}
}

func TestValidateDependenciesMissingComponent(t *testing.T) {
	d, _ := NewDaemon(&config.Config{})
	d.AddComponent(newMockComponent("Poller", []string{"Session"}))

	if err := d.validateDependencies(); err == nil {
		t.Error("Expected error for unregistered dependency")
	}
}

func TestInitializeComponentsStopsOnFailure(t *testing.T) {
	d, _ := NewDaemon(&config.Config{})
	session := newMockComponent("Session", nil)
	session.initError = errors.New("landing page unreachable")
	poller := newMockComponent("Poller", []string{"Session"})
	d.AddComponent(session)
	d.AddComponent(poller)

	if err := d.initializeComponents(context.Background()); err == nil {
		t.Fatal("Expected init failure to propagate")
	}
	if !session.initCalled {
		t.Error("Expected Session init to be attempted")
	}
	if poller.initCalled {
		t.Error("Expected Poller init to be skipped after dependency failure")
	}
}

func TestValidateConfigRejectsBadPort(t *testing.T) {
	d, _ := NewDaemon(&config.Config{Server: config.ServerConfig{Port: 0}})
	if err := d.validateConfig(); err == nil {
		t.Error("Expected error for port 0")
	}

	d, _ = NewDaemon(&config.Config{Server: config.ServerConfig{Port: 9090}})
	if err := d.validateConfig(); err != nil {
		t.Errorf("Expected port 9090 to validate, got %v", err)
	}
}

func TestAcquireLockRejectsSecondInstance(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "disclosure-bot.lock")

	other := flock.New(lockPath)
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("Failed to take lock for test: locked=%v err=%v", locked, err)
	}
	defer other.Unlock()

	d, _ := NewDaemon(&config.Config{Daemon: config.DaemonConfig{LockPath: lockPath}})
	if err := d.acquireLock(); err == nil {
		t.Error("Expected lock acquisition to fail while another instance holds it")
	}
}

func TestAcquireLockSkippedWhenUnconfigured(t *testing.T) {
	d, _ := NewDaemon(&config.Config{})
	if err := d.acquireLock(); err != nil {
		t.Errorf("Expected no lock path to be a no-op, got %v", err)
	}
}

func TestShutdownComponentsStopsEverything(t *testing.T) {
	d, _ := NewDaemon(&config.Config{})
	a := newMockComponent("A", nil)
	b := newMockComponent("B", []string{"A"})
	d.AddComponent(a)
	d.AddComponent(b)

	if err := d.shutdownComponents(context.Background()); err != nil {
		t.Fatalf("shutdownComponents() failed: %v", err)
	}
	if !a.stopCalled || !b.stopCalled {
		t.Error("Expected every component to be stopped")
	}
	if d.Health() != StatusStopped {
		t.Errorf("health = %v, want %v", d.Health(), StatusStopped)
	}
}

func TestComponentHealthAggregates(t *testing.T) {
	d, _ := NewDaemon(&config.Config{})
	a := newMockComponent("A", nil)
	b := newMockComponent("B", nil)
	b.healthResult.Healthy = false
	d.AddComponent(a)
	d.AddComponent(b)

	healths := d.ComponentHealth()
	if len(healths) != 2 {
		t.Fatalf("Expected 2 health entries, got %d", len(healths))
	}
	if !healths["A"].Healthy {
		t.Error("Expected A healthy")
	}
	if healths["B"].Healthy {
		t.Error("Expected B unhealthy")
	}
}
