// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the punishment audit trail.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/r9klabs/r9kbot/internal/domain"
)

// CreatePunishment inserts an audit row for one applied restriction.
func CreatePunishment(ctx context.Context, db *gorm.DB, userID, guildID, messageID string, count int64, duration time.Duration, reason string) (*domain.Punishment, error) {
	p := &domain.Punishment{
		ID:           uuid.NewString(),
		UserID:       userID,
		GuildID:      guildID,
		MessageID:    messageID,
		Count:        count,
		DurationSecs: int64(duration / time.Second),
		Reason:       reason,
		CreatedAt:    time.Now().UTC(),
	}
	return p, db.WithContext(ctx).Create(p).Error
}

// ListPunishments returns a user's audit rows, newest first.
func ListPunishments(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Punishment, error) {
	var out []domain.Punishment
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
