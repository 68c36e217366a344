package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, EventsNone, cfg.Events)
	assert.Equal(t, "metamask.local", cfg.WalletDomain)
	assert.Equal(t, SessionModePassword, cfg.SessionMode)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 120*time.Hour, cfg.RefreshTTL)
	assert.False(t, cfg.NeedsRedis())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ARCADE_HTTP_ADDR", ":8080")
	t.Setenv("ARCADE_SESSION_MODE", "Direct")
	t.Setenv("ARCADE_ACCESS_TTL", "15m")
	t.Setenv("ARCADE_EVENTS", "redis")
	t.Setenv("ARCADE_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, SessionModeDirect, cfg.SessionMode)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, EventsRedis, cfg.Events)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.NeedsRedis())
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"ARCADE_BACKEND": "firebase"}},
		{"supabase without credentials", map[string]string{"ARCADE_BACKEND": "supabase"}},
		{"supabase direct mode", map[string]string{
			"ARCADE_BACKEND":            "supabase",
			"SUPABASE_URL":              "https://x.supabase.co",
			"SUPABASE_SERVICE_ROLE_KEY": "key",
			"ARCADE_SESSION_MODE":       "direct",
		}},
		{"unknown events", map[string]string{"ARCADE_EVENTS": "kafka"}},
		{"unknown revocation store", map[string]string{"ARCADE_REVOCATION": "disk"}},
		{"unknown session mode", map[string]string{"ARCADE_SESSION_MODE": "magic"}},
		{"bad duration", map[string]string{"ARCADE_ACCESS_TTL": "soon"}},
		{"negative ttl", map[string]string{"ARCADE_REFRESH_TTL": "-1h"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSupabaseConfig(t *testing.T) {
	t.Setenv("ARCADE_BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "https://x.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSupabase, cfg.Backend)
}
