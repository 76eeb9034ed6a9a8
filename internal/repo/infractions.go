// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the infraction ledger: a per-user
// violation counter with atomic increment-or-initialize semantics.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/r9klabs/r9kbot/internal/domain"
)

// ErrNotFound is returned when a queried row does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// IncrementInfraction bumps the violation counter for userID and returns the
// new count. A user's first violation creates the row with count 1.
//
// The read-modify-write runs in a transaction so concurrent violations by the
// same user (e.g. rapid edits) serialize without lost increments. If two
// first-violation inserts race, the loser's unique violation is resolved by
// falling back to the update path inside the same transaction.
func IncrementInfraction(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Infraction{}).
			Where("user_id = ?", userID).
			Update("count", gorm.Expr("count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			rec := &domain.Infraction{UserID: userID, Count: 1}
			if err := tx.Create(rec).Error; err != nil {
				if !isUniqueViolation(err) {
					return err
				}
				// lost the insert race: the row exists now, increment it
				res = tx.Model(&domain.Infraction{}).
					Where("user_id = ?", userID).
					Update("count", gorm.Expr("count + 1"))
				if res.Error != nil {
					return res.Error
				}
			}
		}

		var rec domain.Infraction
		if err := tx.Where("user_id = ?", userID).First(&rec).Error; err != nil {
			return err
		}
		count = rec.Count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetInfraction returns the recorded count for userID, or ErrNotFound if the
// user has never violated. Read-only.
func GetInfraction(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var rec domain.Infraction
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error; err != nil {
		return 0, err
	}
	return rec.Count, nil
}

// TopInfractions returns up to n ledger rows ordered by count descending,
// user_id ascending as a stable tiebreak.
func TopInfractions(ctx context.Context, db *gorm.DB, n int) ([]domain.Infraction, error) {
	var out []domain.Infraction
	err := db.WithContext(ctx).
		Order("count DESC, user_id ASC").
		Limit(n).
		Find(&out).Error
	return out, err
}
