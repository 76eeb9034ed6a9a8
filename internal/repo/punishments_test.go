package repo

import (
	"context"
	"testing"
	"time"

	"github.com/r9klabs/r9kbot/internal/domain"
)

func TestCreatePunishment(t *testing.T) {
	db := newTestDB(t, &domain.Punishment{})
	ctx := context.Background()

	p, err := CreatePunishment(ctx, db, "u1", "g1", "m1", 3, 8*time.Second, "duplicate content (infraction #3)")
	if err != nil {
		t.Fatalf("CreatePunishment: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated id")
	}
	if p.DurationSecs != 8 {
		t.Errorf("DurationSecs = %d, want 8", p.DurationSecs)
	}

	var got domain.Punishment
	if err := db.Where("id = ?", p.ID).First(&got).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.UserID != "u1" || got.GuildID != "g1" || got.MessageID != "m1" || got.Count != 3 {
		t.Errorf("stored row mismatch: %+v", got)
	}
}

func TestListPunishments_NewestFirstAndLimited(t *testing.T) {
	db := newTestDB(t, &domain.Punishment{})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if _, err := CreatePunishment(ctx, db, "u1", "g1", "m", int64(i), 2*time.Second, "r"); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond) // distinct created_at
	}
	if _, err := CreatePunishment(ctx, db, "u2", "g1", "m", 1, 2*time.Second, "r"); err != nil {
		t.Fatalf("seed u2: %v", err)
	}

	rows, err := ListPunishments(ctx, db, "u1", 2)
	if err != nil {
		t.Fatalf("ListPunishments: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Count != 3 || rows[1].Count != 2 {
		t.Errorf("order = %d,%d, want 3,2", rows[0].Count, rows[1].Count)
	}
}
