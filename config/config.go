package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"PORT"`

	// Database
	DBDriver    string `mapstructure:"DB_DRIVER"` // "postgres" or "sqlite"
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Object storage
	StorageDriver      string `mapstructure:"STORAGE_DRIVER"` // "gcs" or "local"
	GCSBucket          string `mapstructure:"GCS_BUCKET"`
	GCSCredentialsFile string `mapstructure:"GCS_CREDENTIALS_FILE"`
	PublicBaseURL      string `mapstructure:"PUBLIC_BASE_URL"`
	UploadDir          string `mapstructure:"UPLOAD_DIR"`

	// Local upload backups; empty BACKUP_DIR disables them.
	BackupDir           string `mapstructure:"BACKUP_DIR"`
	BackupRetentionDays int    `mapstructure:"BACKUP_RETENTION_DAYS"`
	BackupHour          int    `mapstructure:"BACKUP_HOUR"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`

	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
}

var defaults = map[string]any{
	"PORT":                  "8080",
	"DB_DRIVER":             "postgres",
	"DATABASE_URL":          "",
	"DB_HOST":               "localhost",
	"DB_PORT":               "5432",
	"DB_USER":               "",
	"DB_PASSWORD":           "",
	"DB_NAME":               "storefront",
	"SQLITE_PATH":           "storefront.db",
	"JWT_SECRET":            "",
	"STORAGE_DRIVER":        "local",
	"GCS_BUCKET":            "",
	"GCS_CREDENTIALS_FILE":  "",
	"PUBLIC_BASE_URL":       "http://localhost:8080",
	"UPLOAD_DIR":            "uploads",
	"BACKUP_DIR":            "",
	"BACKUP_RETENTION_DAYS": 4,
	"BACKUP_HOUR":           2,
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"KAFKA_BROKERS":         "",
	"KAFKA_ORDER_TOPIC":     "storefront.orders",
	"LOG_LEVEL":             "info",
	"LOG_PRETTY":            false,
	"CORS_ORIGINS":          "*",
}

// Load reads an optional .env file and the process environment. Environment
// variables win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	switch c.StorageDriver {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET is required when STORAGE_DRIVER=gcs"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.BackupHour < 0 || c.BackupHour > 23 {
		errs = append(errs, fmt.Errorf("BACKUP_HOUR %d out of range 0-23", c.BackupHour))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// PostgresDSN prefers DATABASE_URL and falls back to the discrete DB_* keys.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func (c *Config) KafkaBrokerList() []string {
	return splitList(c.KafkaBrokers)
}

func (c *Config) CORSOriginList() []string {
	return splitList(c.CORSOrigins)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
