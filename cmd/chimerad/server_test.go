package main

import (
	"testing"
)

func TestServerConfiguration(t *testing.T) {
	t.Run("Default timeouts are reasonable", func(t *testing.T) {
		if defaultIdleTimeout <= 0 {
			t.Error("defaultIdleTimeout must be positive")
		}
		if defaultReadTimeout <= 0 {
			t.Error("defaultReadTimeout must be positive")
		}
		if defaultWriteTimeout <= defaultReadTimeout {
			t.Error("defaultWriteTimeout must exceed defaultReadTimeout")
		}
		if defaultShutdownPeriod <= defaultWriteTimeout {
			t.Errorf("default shutdown period %s must be greater than default write timeout %s", defaultShutdownPeriod, defaultWriteTimeout)
		}
	})
}

func TestServeHTTP(t *testing.T) {
	t.Run("Invalid port configuration causes an error", func(t *testing.T) {
		app := newTestApplication(t)
		app.cfg.Port = -1

		if err := app.serveHTTP(); err == nil {
			t.Fatal("serveHTTP() error = nil, want non-nil for an invalid port")
		}
	})
}
