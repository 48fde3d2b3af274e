package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := Load()

		assert.Equal(t, "0.0.0.0", cfg.ServerHost)
		assert.Equal(t, 8080, cfg.ServerPort)
		assert.Equal(t, "postgres", cfg.DBDriver)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 10*time.Minute, cfg.AccessTicketTimeout)
		assert.Equal(t, 2*time.Minute, cfg.GroupCacheRefreshDelay)
		assert.False(t, cfg.GroupAuthorizationEnabled)
		assert.Equal(t, 100, cfg.PurgeSweepBatchSize)
		assert.Equal(t, 4*1024*1024, cfg.ChunkMaxSizeBytes)
		assert.Equal(t, "safeexchange", cfg.MetricsNamespace)
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("DB_DRIVER", "mysql")
		t.Setenv("ACCESS_TICKET_TIMEOUT_SECONDS", "30")
		t.Setenv("GROUP_AUTHORIZATION_ENABLED", "true")

		cfg := Load()

		assert.Equal(t, 9090, cfg.ServerPort)
		assert.Equal(t, "mysql", cfg.DBDriver)
		assert.Equal(t, 30*time.Second, cfg.AccessTicketTimeout)
		assert.True(t, cfg.GroupAuthorizationEnabled)
	})
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		want     string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.logLevel}
		assert.Equal(t, tt.want, cfg.GetGinMode())
	}
}
