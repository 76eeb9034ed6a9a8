// Package services – StatsService
//
// Read-only queries against the infraction ledger, backing both the chat
// commands (-stats, -lb) and the admin API. These never mutate the ledger.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/r9klabs/r9kbot/internal/policy"
	"github.com/r9klabs/r9kbot/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LeaderboardSize is the fixed number of entries -lb and the admin
// leaderboard return.
const LeaderboardSize = 10

// UserStats is one user's infraction standing. NextDuration is the
// punishment a hypothetical next violation would incur.
type UserStats struct {
	UserID       string        `json:"user_id"`
	Count        int64         `json:"count"`
	NextDuration time.Duration `json:"next_duration"`
}

// StatsService answers infraction queries from the ledger.
type StatsService struct {
	DB *gorm.DB
}

// Stats returns the standing for userID, or ErrNoInfractions for users with
// a clean record. Never mutates the ledger.
func (s *StatsService) Stats(ctx context.Context, userID string) (*UserStats, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "Stats",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	count, err := repo.GetInfraction(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoInfractions
		}
		return nil, err
	}
	return &UserStats{
		UserID:       userID,
		Count:        count,
		NextDuration: policy.Decide(count + 1).Duration,
	}, nil
}

// Leaderboard returns up to LeaderboardSize entries ordered worst-first.
func (s *StatsService) Leaderboard(ctx context.Context) ([]UserStats, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "Leaderboard")
	defer span.End()

	rows, err := repo.TopInfractions(ctx, s.DB, LeaderboardSize)
	if err != nil {
		return nil, err
	}
	out := make([]UserStats, 0, len(rows))
	for _, r := range rows {
		out = append(out, UserStats{
			UserID:       r.UserID,
			Count:        r.Count,
			NextDuration: policy.Decide(r.Count + 1).Duration,
		})
	}
	return out, nil
}
