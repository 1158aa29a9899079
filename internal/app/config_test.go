package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("UPSTREAM_URL", "http://inventory.test/api/v1/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderHTTP, cfg.Provider)
	assert.Equal(t, "http://inventory.test/api/v1", cfg.UpstreamURL)
	assert.Equal(t, 4, cfg.FetchConcurrency)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.UsesPostgres())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidateProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "unknown provider",
			cfg:     Config{SessionSecret: "s", CSRFSecret: "c", Provider: "grpc"},
			wantErr: `unknown provider "grpc"`,
		},
		{
			name:    "postgres needs jwt secret",
			cfg:     Config{SessionSecret: "s", CSRFSecret: "c", Provider: "postgres", PGDSN: "postgres://x"},
			wantErr: "jwt secret",
		},
		{
			name: "postgres",
			cfg:  Config{SessionSecret: "s", CSRFSecret: "c", Provider: " Postgres ", PGDSN: "postgres://x", JWTSecret: "j"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.cfg.UsesPostgres())
		})
	}
}
