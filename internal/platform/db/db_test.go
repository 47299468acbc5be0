package db

import (
	"context"
	"testing"

	"hrforms/internal/domain/auth"
	"hrforms/internal/domain/profile"
)

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/hr?sslmode=disable": "pgx5://u:p@localhost:5432/hr?sslmode=disable",
		"postgresql://localhost/hr":                        "pgx5://localhost/hr",
		"pgx5://localhost/hr":                              "pgx5://localhost/hr",
	}
	for in, want := range cases {
		if got := migrateURL(in); got != want {
			t.Fatalf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 || len(entries)%2 != 0 {
		t.Fatalf("expected paired up/down migrations, got %d files", len(entries))
	}
}

func TestSeedCreatesAdminAndProfile(t *testing.T) {
	ctx := context.Background()
	users := auth.NewService(auth.NewMemoryStore())
	profiles := profile.NewMemoryStore()

	if err := Seed(ctx, users, profiles, "admin", "secret"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	admin, err := users.Authenticate(ctx, "admin", "secret")
	if err != nil {
		t.Fatalf("expected seeded admin to authenticate: %v", err)
	}
	if admin.Role != auth.RoleAdmin {
		t.Fatalf("expected admin role, got %s", admin.Role)
	}
	p, err := profiles.Get(ctx, admin.ID)
	if err != nil {
		t.Fatalf("expected admin profile: %v", err)
	}
	if p.Role != auth.RoleAdmin {
		t.Fatalf("expected admin profile role, got %s", p.Role)
	}

	if err := Seed(ctx, users, profiles, "admin", "secret"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
}

func TestSeedSkipsWithoutCredentials(t *testing.T) {
	ctx := context.Background()
	users := auth.NewService(auth.NewMemoryStore())
	if err := Seed(ctx, users, profile.NewMemoryStore(), "", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := users.Authenticate(ctx, "", ""); err == nil {
		t.Fatal("expected no users")
	}
}
