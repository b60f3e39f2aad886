package database

import (
	"fmt"

	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects using the configured driver.
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	default:
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return db, nil
	}
}

// OpenSQLite opens a file-backed SQLite database with foreign keys on. The pool
// is pinned to one connection so writers never contend for the file lock.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// singleActiveTables are the promotion collections guarded by the
// single-active index.
var singleActiveTables = []string{"promo_banners", "trending_promos"}

// Migrate creates or updates every table and the partial unique indexes that
// back the promotion exclusivity rule.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.WishlistItem{},
		&models.Review{},
		&models.HeroBanner{},
		&models.PromoBanner{},
		&models.TrendingPromo{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	for _, table := range singleActiveTables {
		stmt := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_single_active ON %s (is_active) WHERE is_active",
			table, table,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("single-active index on %s: %w", table, err)
		}
	}

	log.Info().Msg("✅ database schema ready")
	return nil
}
