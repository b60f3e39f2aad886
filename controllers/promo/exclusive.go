package promoControllers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFound     = errors.New("promotion not found")
	ErrTransactionFailure = errors.New("promotion transaction failed")
)

// Activatable is a promotion row living in a single-active collection.
type Activatable interface {
	MarkActive()
}

// CreateAndActivate inserts record as the only active row of its collection.
func CreateAndActivate[T any, PT interface {
	*T
	Activatable
}](ctx context.Context, db *gorm.DB, record PT) error {
	return setExclusive[T](ctx, db, func(tx *gorm.DB) error {
		record.MarkActive()
		return tx.Create(record).Error
	})
}

// Activate makes row id the only active row of T's collection.
func Activate[T any](ctx context.Context, db *gorm.DB, id uint) error {
	return setExclusive[T](ctx, db, func(tx *gorm.DB) error {
		res := tx.Model(new(T)).Where("id = ?", id).Update("is_active", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

// Deactivate switches a single row off, leaving the collection with no active
// row if it was the active one.
func Deactivate[T any](ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailure, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// setExclusive runs "deactivate all, then set one" as a single transaction.
// Nothing is committed unless both steps succeed.
func setExclusive[T any](ctx context.Context, db *gorm.DB, setOne func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCollection[T](tx); err != nil {
			return err
		}
		if err := tx.Model(new(T)).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return setOne(tx)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrRecordNotFound):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrTransactionFailure, err)
	}
}

// lockCollection serializes writers of one collection on PostgreSQL with a
// transaction-scoped advisory lock. SQLite already has a single writer.
func lockCollection[T any](tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(new(T)); err != nil {
		return err
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", stmt.Schema.Table).Error
}
