package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/r9klabs/r9kbot/internal/domain"
)

func TestIncrementInfraction_InitializesAtOne(t *testing.T) {
	db := newTestDB(t, &domain.Infraction{})
	ctx := context.Background()

	n, err := IncrementInfraction(ctx, db, "u1")
	if err != nil {
		t.Fatalf("IncrementInfraction: %v", err)
	}
	if n != 1 {
		t.Fatalf("first violation count = %d, want 1", n)
	}
}

func TestIncrementInfraction_IncrementsByExactlyOne(t *testing.T) {
	db := newTestDB(t, &domain.Infraction{})
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		n, err := IncrementInfraction(ctx, db, "u1")
		if err != nil {
			t.Fatalf("increment %d: %v", want, err)
		}
		if n != want {
			t.Fatalf("count = %d, want %d", n, want)
		}
	}

	// A second user's ledger is independent.
	n, err := IncrementInfraction(ctx, db, "u2")
	if err != nil || n != 1 {
		t.Fatalf("u2 first violation = (%d, %v), want (1, nil)", n, err)
	}
}

func TestIncrementInfraction_ConcurrentNoLostUpdates(t *testing.T) {
	db, _ := newFileDB(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = IncrementInfraction(ctx, db, "u1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}

	n, err := GetInfraction(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetInfraction: %v", err)
	}
	if n != workers {
		t.Fatalf("count = %d after %d concurrent violations, want %d", n, workers, workers)
	}
}

func TestGetInfraction_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.Infraction{})

	_, err := GetInfraction(context.Background(), db, "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetInfraction = %v, want ErrNotFound", err)
	}
}

func TestGetInfraction_DoesNotMutate(t *testing.T) {
	db := newTestDB(t, &domain.Infraction{})
	ctx := context.Background()

	if _, err := IncrementInfraction(ctx, db, "u1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for i := 0; i < 3; i++ {
		n, err := GetInfraction(ctx, db, "u1")
		if err != nil || n != 1 {
			t.Fatalf("read %d = (%d, %v), want (1, nil)", i, n, err)
		}
	}
}

func TestTopInfractions_OrderAndLimit(t *testing.T) {
	db := newTestDB(t, &domain.Infraction{})
	ctx := context.Background()

	// Seed 12 users with counts 1..12.
	for i := 1; i <= 12; i++ {
		user := fmt.Sprintf("user-%02d", i)
		for j := 0; j < i; j++ {
			if _, err := IncrementInfraction(ctx, db, user); err != nil {
				t.Fatalf("seed %s: %v", user, err)
			}
		}
	}

	top, err := TopInfractions(ctx, db, 10)
	if err != nil {
		t.Fatalf("TopInfractions: %v", err)
	}
	if len(top) != 10 {
		t.Fatalf("len = %d, want 10", len(top))
	}
	if top[0].UserID != "user-12" || top[0].Count != 12 {
		t.Errorf("top entry = %s/%d, want user-12/12", top[0].UserID, top[0].Count)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Count > top[i-1].Count {
			t.Fatalf("not sorted descending at %d: %d > %d", i, top[i].Count, top[i-1].Count)
		}
	}
}

func TestTopInfractions_StableTiebreak(t *testing.T) {
	db := newTestDB(t, &domain.Infraction{})
	ctx := context.Background()

	for _, u := range []string{"bbb", "aaa", "ccc"} {
		if _, err := IncrementInfraction(ctx, db, u); err != nil {
			t.Fatalf("seed %s: %v", u, err)
		}
	}

	top, err := TopInfractions(ctx, db, 10)
	if err != nil {
		t.Fatalf("TopInfractions: %v", err)
	}
	want := []string{"aaa", "bbb", "ccc"}
	for i, w := range want {
		if top[i].UserID != w {
			t.Fatalf("tie order[%d] = %s, want %s", i, top[i].UserID, w)
		}
	}
}

func TestIncrementInfraction_StorageFailure(t *testing.T) {
	db := newTestDB(t) // infractions table missing
	if _, err := IncrementInfraction(context.Background(), db, "u1"); err == nil {
		t.Fatal("expected storage error for missing table")
	}
}
