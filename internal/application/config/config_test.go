package config

import (
	"strings"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.Port != "3000" || cfg.MetricPort != "9090" {
		t.Fatalf("ports = %s/%s", cfg.Port, cfg.MetricPort)
	}
	if cfg.Store.Driver != StoreMemory {
		t.Fatalf("store driver = %q", cfg.Store.Driver)
	}
	if cfg.Signaling.SignalTTL != 10*time.Minute || cfg.Signaling.MessageTTL != time.Hour {
		t.Fatalf("ttls = %s/%s", cfg.Signaling.SignalTTL, cfg.Signaling.MessageTTL)
	}
	if cfg.Signaling.MessageLogLimit != 100 {
		t.Fatalf("message log limit = %d", cfg.Signaling.MessageLogLimit)
	}
	if cfg.Stream.Interval != time.Second {
		t.Fatalf("stream interval = %s", cfg.Stream.Interval)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", StoreSQLite)
	t.Setenv("SIGNAL_TTL", "30s")
	t.Setenv("STREAM_INTERVAL", "250ms")
	t.Setenv("STUN_URLS", "stun:a:3478,stun:b:3478")
	t.Setenv("COTURN_HOST", "turn.example.com:3478")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.Store.Driver != StoreSQLite {
		t.Fatalf("store driver = %q", cfg.Store.Driver)
	}
	if cfg.Signaling.SignalTTL != 30*time.Second {
		t.Fatalf("signal ttl = %s", cfg.Signaling.SignalTTL)
	}
	if cfg.Stream.Interval != 250*time.Millisecond {
		t.Fatalf("stream interval = %s", cfg.Stream.Interval)
	}

	servers := cfg.ICEServers()
	if len(servers) != 2 {
		t.Fatalf("ice servers = %+v", servers)
	}
	if len(servers[0].URLs) != 2 || servers[0].URLs[1] != "stun:b:3478" {
		t.Fatalf("stun urls = %v", servers[0].URLs)
	}
	if !strings.HasPrefix(servers[1].URLs[0], "turn:turn.example.com:3478") {
		t.Fatalf("turn urls = %v", servers[1].URLs)
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "STORE_DRIVER", "redis"},
		{"zero log limit", "MESSAGE_LOG_LIMIT", "0"},
		{"zero interval", "STREAM_INTERVAL", "0s"},
		{"bad duration", "SIGNAL_TTL", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			if _, err := New(); err == nil {
				t.Fatalf("New with %s=%s: expected error", tt.key, tt.val)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSL: "disable"}
	if got := p.DSN(); got != "postgresql://u:p@db:5432/n?sslmode=disable" {
		t.Fatalf("DSN = %q", got)
	}

	p.URL = "postgres://override"
	if got := p.DSN(); got != "postgres://override" {
		t.Fatalf("DSN = %q", got)
	}
}
