package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_NAME", "bookings_test")
	t.Setenv("SESSION_IDLE_TTL", "10m")

	cfg := Load()

	assert.Equal(t, "8082", cfg.ServerPort)
	assert.Equal(t, "bookings_test", cfg.DBName)
	assert.Equal(t, 10*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 5*time.Minute, cfg.RedisCacheTTL)
	assert.Equal(t, 1, cfg.DefaultGuestCount)
	assert.Equal(t, "50", cfg.HourlyRate)
	assert.False(t, cfg.IsProduction())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, (&Config{Timezone: "UTC"}).Location())
	assert.Equal(t, time.Local, (&Config{Timezone: "Mars/Olympus"}).Location())
}
