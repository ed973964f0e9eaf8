package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("SEED_ADMIN_PASSWORD", "")

	cfg := Load()
	assert.Empty(t, cfg.AuthSecret)
	assert.Empty(t, cfg.SeedAdminPassword)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("PORT", "")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("REDIS_DB", "")

	cfg := Load()
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, 480, cfg.AccessTokenTTLMinutes)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "retaildesk", cfg.RedisKeyPrefix)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/shop.db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "-5")

	cfg := Load()
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, "/tmp/shop.db", cfg.SQLitePath)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 480, cfg.AccessTokenTTLMinutes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "memory", cfg: Config{StorageBackend: BackendMemory}},
		{name: "redis without addr", cfg: Config{StorageBackend: BackendRedis}, wantErr: true},
		{name: "redis", cfg: Config{StorageBackend: BackendRedis, RedisAddr: "127.0.0.1:6379"}},
		{name: "postgres without url", cfg: Config{StorageBackend: BackendPostgres}, wantErr: true},
		{name: "sqlite", cfg: Config{StorageBackend: BackendSQLite, SQLitePath: "shop.db"}},
		{name: "unknown", cfg: Config{StorageBackend: "etcd"}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
