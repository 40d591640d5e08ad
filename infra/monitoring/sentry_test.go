package monitoring

import (
	"testing"

	coremon "github.com/kilianp07/crewplan/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(coremon.NopMonitor); !ok {
		t.Fatalf("expected NopMonitor, got %T", m)
	}
}

func TestNewSentryMonitorBadDSN(t *testing.T) {
	if _, err := NewSentryMonitor(Config{DSN: "not a dsn"}); err == nil {
		t.Fatal("expected dsn parse error")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{TracesSampleRate: 0.2}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Config{TracesSampleRate: 2}).Validate(); err == nil {
		t.Fatal("expected range error")
	}
}
