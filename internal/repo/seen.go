// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the uniqueness store: an append-only
// set of guild-scoped content fingerprints with atomic insert-if-absent.
//
// Error semantics:
//   - ErrDuplicate means the fingerprint was already recorded; the caller
//     is looking at duplicate content.
//   - Any other error is a storage failure and must abort the event that
//     triggered the probe (never treat it as "unique" or "duplicate").
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/r9klabs/r9kbot/internal/domain"
	"github.com/r9klabs/r9kbot/internal/fingerprint"
)

// ErrDuplicate indicates that a seen-post record already exists for the
// given guild-scoped fingerprint.
var ErrDuplicate = errors.New("duplicate")

// RecordSeen inserts the fingerprint for guildID and returns nil, or
// ErrDuplicate if it was already present. The UNIQUE primary key makes the
// insert atomic: under concurrent identical posts exactly one caller wins.
func RecordSeen(ctx context.Context, db *gorm.DB, guildID string, fp fingerprint.Fingerprint) error {
	rec := &domain.SeenPost{
		Key:       fingerprint.Key(guildID, fp),
		GuildID:   guildID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// HasSeen reports whether the fingerprint is recorded for guildID, without
// inserting. Read-only; used for audits and tests, not by the pipeline.
func HasSeen(ctx context.Context, db *gorm.DB, guildID string, fp fingerprint.Fingerprint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.SeenPost{}).
		Where("key = ?", fingerprint.Key(guildID, fp)).
		Count(&n).Error
	return n > 0, err
}

// isUniqueViolation detects unique-constraint violations across drivers.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
