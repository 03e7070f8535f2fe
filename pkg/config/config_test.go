package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Billing-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.App.Timezone)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0 8 * * *", cfg.Cron.Schedule)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("APP_URL", "https://billing.example.com/")
	t.Setenv("CRON_SECRET", "s3cr3t")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("APP_TIMEZONE", "America/Bogota")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, "https://billing.example.com", cfg.App.URL)
	assert.Equal(t, "s3cr3t", cfg.Cron.Secret)
	assert.True(t, cfg.Redis.Enabled())

	loc := cfg.App.Location()
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -5*3600, offset)
}

func TestLoad_ZonaHorariaInvalida(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Marte/Olympus")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "billing", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/billing?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
