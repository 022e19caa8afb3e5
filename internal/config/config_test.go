package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ServiceDefaults(t *testing.T) {
	tests := []struct {
		service string
		port    string
	}{
		{ServiceTask, "3003"},
		{ServiceUser, "3001"},
		{ServiceRewards, "3005"},
	}
	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			t.Setenv("SERVER_PORT", "")
			t.Setenv("BOLTDB_PATH", "")

			cfg, err := Load(tt.service)
			require.NoError(t, err)
			assert.Equal(t, tt.service, cfg.AppName)
			assert.Equal(t, "0.0.0.0:"+tt.port, cfg.Address())
			assert.Contains(t, cfg.Outbox.Path, tt.service)
			assert.Contains(t, cfg.Migrations.Path, tt.service)
			assert.False(t, cfg.IsProduction())
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SYNC_INTERVAL_SECONDS", "45")
	t.Setenv("DOWNSTREAM_TIMEOUT_SECONDS", "2s")
	t.Setenv("MAX_RETRY_ATTEMPTS", "not-a-number")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load(ServiceUser)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, 45*time.Second, cfg.Outbox.SyncInterval)
	assert.Equal(t, 2*time.Second, cfg.Services.Timeout)
	assert.Equal(t, 3, cfg.Outbox.MaxRetry)
	assert.Equal(t, "postgres://edvance:secret@db:5432/edvance?sslmode=disable", cfg.Database.URL)
}

func TestLoad_Production(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(ServiceTask)
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("POINTS_SERVICE_URL", "http://points:3004")
	t.Setenv("PRODUCTION_POINTS_SERVICE_URL", "https://points.internal")
	t.Setenv("NOTIFICATION_SERVICE_URL", "http://notify:3006")
	t.Setenv("PRODUCTION_NOTIFICATION_SERVICE_URL", "")

	cfg, err := Load(ServiceTask)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://points.internal", cfg.Services.PointsURL)
	assert.Equal(t, "http://notify:3006", cfg.Services.NotificationURL)
}
