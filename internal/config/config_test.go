package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("HMS_JWT_SECRET", "test-secret")
	t.Setenv("HMS_STORAGE_DRIVER", "memory")
	t.Setenv("HMS_PORT", "9000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("HMS_JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		JWT:     JWTConfig{Secret: "s"},
		Storage: StorageConfig{Driver: "sqlite"},
		Session: SessionConfig{Backend: "memory"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = "postgres"
	assert.NoError(t, cfg.Validate())

	cfg.Session.Backend = "memcached"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "hms", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=hms sslmode=disable", db.DSN())
}
