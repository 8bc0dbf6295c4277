package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrVersionConflict is returned by compare-and-swap writes when the row's
// version no longer matches the one the caller read.
var ErrVersionConflict = errors.New("repository: version conflict")

// conn picks the transaction handle when one is given, otherwise the pool,
// bound to ctx either way.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
