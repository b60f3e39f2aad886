package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokerList())
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=fromfile\nUPLOAD_DIR=/tmp/up\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("UPLOAD_DIR")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.JWTSecret)
	assert.Equal(t, "/tmp/up", cfg.UploadDir)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	assert.ErrorContains(t, err, "JWT_SECRET is required")
}

func TestValidate_GCSNeedsBucket(t *testing.T) {
	cfg := &Config{JWTSecret: "x", DBDriver: "postgres", StorageDriver: "gcs"}
	assert.ErrorContains(t, cfg.Validate(), "GCS_BUCKET")

	cfg.GCSBucket = "media"
	assert.NoError(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "shop"}
	assert.Equal(t, "host=db user=u password=p dbname=shop port=5432 sslmode=disable", cfg.PostgresDSN())

	cfg.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.PostgresDSN())
}

func TestLoad_BackupSettings(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("BACKUP_DIR", "/var/backups/storefront")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/var/backups/storefront", cfg.BackupDir)
	assert.Equal(t, 4, cfg.BackupRetentionDays)
	assert.Equal(t, 2, cfg.BackupHour)

	t.Setenv("BACKUP_HOUR", "24")
	_, err = Load("")
	assert.ErrorContains(t, err, "BACKUP_HOUR")
}
