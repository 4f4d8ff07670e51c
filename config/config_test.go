package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "testsecret")
	t.Setenv("API_PREFIX", "api/v2/")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "/api/v2", cfg.Server.APIPrefix)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	require.Equal(t, "eshop-database", cfg.MongoDB.Database)
	require.Equal(t, 24*time.Hour, cfg.JWT.TokenTTL)
	require.Equal(t, "local", cfg.Storage.Driver)
	require.Equal(t, 10, cfg.Storage.MaxGalleryImages)
	require.Equal(t, "0.0.0.0:3000", cfg.Server.Addr())
	require.False(t, cfg.IsProduction())
	require.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "testsecret")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 192.168.0.0/16")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.Server.TrustedProxies)
}

func TestLoad_RequiresMongoURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("JWT_SECRET", "testsecret")

	_, err := Load()
	require.ErrorContains(t, err, "MONGODB_URI")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_RejectsUnknownStorageDriver(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "testsecret")
	t.Setenv("STORAGE_DRIVER", "ftp")

	_, err := Load()
	require.ErrorContains(t, err, "STORAGE_DRIVER")
}
