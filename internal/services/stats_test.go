package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/r9klabs/r9kbot/internal/repo"
)

func TestStats_NoInfractions(t *testing.T) {
	svc := &StatsService{DB: newTestDB(t)}

	_, err := svc.Stats(context.Background(), "clean-user")
	if !errors.Is(err, ErrNoInfractions) {
		t.Fatalf("err = %v, want ErrNoInfractions", err)
	}

	// The query must not create a ledger row.
	if _, err := repo.GetInfraction(context.Background(), svc.DB, "clean-user"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("stats query mutated the ledger: %v", err)
	}
}

func TestStats_ReportsNextPunishment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := repo.IncrementInfraction(ctx, db, "u1"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := &StatsService{DB: db}
	st, err := svc.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Count != 3 {
		t.Errorf("Count = %d, want 3", st.Count)
	}
	// Next violation would be the 4th: 2^4 = 16s.
	if st.NextDuration != 16*time.Second {
		t.Errorf("NextDuration = %v, want 16s", st.NextDuration)
	}
}

func TestLeaderboard_TopTenWorstFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		user := fmt.Sprintf("user-%02d", i)
		for j := 0; j < i; j++ {
			if _, err := repo.IncrementInfraction(ctx, db, user); err != nil {
				t.Fatalf("seed %s: %v", user, err)
			}
		}
	}

	svc := &StatsService{DB: db}
	lb, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(lb) != LeaderboardSize {
		t.Fatalf("len = %d, want %d", len(lb), LeaderboardSize)
	}
	if lb[0].UserID != "user-12" || lb[0].Count != 12 {
		t.Errorf("top = %s/%d, want user-12/12", lb[0].UserID, lb[0].Count)
	}
	for i := 1; i < len(lb); i++ {
		if lb[i].Count > lb[i-1].Count {
			t.Fatalf("not descending at %d", i)
		}
	}
	// Each entry carries the next-violation duration.
	if lb[0].NextDuration != time.Duration(1<<13)*time.Second {
		t.Errorf("NextDuration = %v, want 2^13s", lb[0].NextDuration)
	}
}

func TestLeaderboard_Empty(t *testing.T) {
	svc := &StatsService{DB: newTestDB(t)}
	lb, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(lb) != 0 {
		t.Fatalf("len = %d, want 0", len(lb))
	}
}
