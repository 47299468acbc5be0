package profile

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(
		Profile{UserID: "u2", Name: "Ben Reyes"},
		Profile{UserID: "u1", Name: "Ana Cruz"},
	)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	listed, err := store.List(ctx, []string{"u2", "u1", "u9"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].UserID != "u1" {
		t.Fatalf("expected known profiles sorted by name, got %+v", listed)
	}

	if err := store.Upsert(ctx, Profile{UserID: "u1", Name: "Ana Cruz", SoloParent: true}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	p, err := store.Get(ctx, "u1")
	if err != nil || !p.SoloParent {
		t.Fatalf("expected updated profile, got %+v (%v)", p, err)
	}
}

func TestDisplayName(t *testing.T) {
	if got := (Profile{EmployeeID: "E-7"}).DisplayName(); got != "E-7" {
		t.Fatalf("expected employee id fallback, got %q", got)
	}
	if got := (Profile{EmployeeID: "E-7", Name: "Ana"}).DisplayName(); got != "Ana" {
		t.Fatalf("expected name, got %q", got)
	}
}

func TestPGStoreUpsert(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	store := NewStore(pool)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM employee_profiles WHERE user_id = 'profile-it'")
	})

	p := Profile{UserID: "profile-it", EmployeeID: "E-IT", Name: "Integration", Gender: GenderMale, Role: "user"}
	if err := store.Upsert(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	p.Department = "Finance"
	if err := store.Upsert(ctx, p); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err := store.Get(ctx, "profile-it")
	if err != nil || got.Department != "Finance" {
		t.Fatalf("unexpected profile %+v (%v)", got, err)
	}
	listed, err := store.List(ctx, []string{"profile-it"})
	if err != nil || len(listed) != 1 {
		t.Fatalf("list: %+v %v", listed, err)
	}
}
