package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, int64(5000), cfg.BaseFee)
	assert.Equal(t, int64(2), cfg.ConsultantRate)
	assert.Equal(t, 30*time.Minute, cfg.LeadTime)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 24*time.Hour, cfg.ResetCodeTTL)
	assert.Equal(t, "JHC", cfg.PatientIDPrefix)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("FEE", "7500")
	t.Setenv("CONSULTANT_RATE", "3")
	t.Setenv("RESERVATION_LEAD_TIME", "45m")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(7500), cfg.BaseFee)
	assert.Equal(t, int64(3), cfg.ConsultantRate)
	assert.Equal(t, 45*time.Minute, cfg.LeadTime)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	base := Config{JWTSecret: "s", StoreDriver: DriverMemory, BaseFee: 1, ConsultantRate: 1}
	require.NoError(t, base.Validate())

	bad := base
	bad.StoreDriver = "postgres"
	assert.Error(t, bad.Validate())

	bad = base
	bad.BaseFee = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Timezone = "Mars/Olympus"
	assert.Error(t, bad.Validate())
}
