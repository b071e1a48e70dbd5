package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TxManager runs units of work inside a single database transaction. Any
// error returned by the callback rolls the whole unit back.
type TxManager struct {
	db            *gorm.DB
	lockTimeoutMs int
}

func NewTxManager(db *gorm.DB, lockTimeoutMs int) *TxManager {
	return &TxManager{db: db, lockTimeoutMs: lockTimeoutMs}
}

func (m *TxManager) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.lockTimeoutMs > 0 && tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeoutMs)).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		return fn(tx)
	})
}
