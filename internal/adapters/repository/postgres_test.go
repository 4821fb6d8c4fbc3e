package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poyrazK/cfddns/internal/core/domain"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("cfddns_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432").
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		t.Fatalf("failed to open db: %s", err)
	}

	schemaPath := filepath.Join(".", "schema.sql")
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("failed to read schema: %s", err)
	}

	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %s", err)
	}

	return db, func() {
		db.Close()
		pgContainer.Terminate(ctx)
	}
}

func TestPostgresRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPostgresRepository(db)
	ctx := context.Background()

	// 1. Create an account carrying a zone and a subdomain.
	sub, _ := domain.NewSubdomain("", "www", true, 300)
	zone, _ := domain.NewZone("", zoneIDA, "example.com", []domain.Subdomain{sub})
	account, _ := domain.NewAccount("", domain.Authentication{APIToken: "tok-1"}, []domain.Zone{zone})

	if err := repo.CreateAccount(ctx, &account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	got, err := repo.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if len(got.Zones) != 1 || len(got.Zones[0].Subdomains) != 1 {
		t.Fatalf("unexpected account shape: %+v", got)
	}
	if got.Zones[0].Subdomains[0].Name != "www" || got.Zones[0].Subdomains[0].TTL != 300 {
		t.Errorf("subdomain round-trip mismatch: %+v", got.Zones[0].Subdomains[0])
	}

	// 2. Duplicate zone_id is rejected by the unique index, also across
	// accounts.
	second, _ := domain.NewAccount("", domain.Authentication{APIToken: "tok-2"}, nil)
	if err := repo.CreateAccount(ctx, &second); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	dup, _ := domain.NewZone("", zoneIDA, "example.net", nil)
	if err := repo.AddZone(ctx, second.ID, &dup); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate zone_id, got %v", err)
	}

	// 3. Full-replace account update swaps the zone tree.
	fresh, _ := domain.NewZone("", zoneIDB, "example.org", nil)
	replacement, _ := domain.NewAccount(account.ID, domain.Authentication{APIToken: "tok-1b"}, []domain.Zone{fresh})
	if err := repo.UpdateAccount(ctx, &replacement); err != nil {
		t.Fatalf("UpdateAccount failed: %v", err)
	}
	got, _ = repo.GetAccount(ctx, account.ID)
	if got.Authentication.APIToken != "tok-1b" || len(got.Zones) != 1 || got.Zones[0].ZoneID != zoneIDB {
		t.Errorf("full replace did not apply: %+v", got)
	}

	// 4. Snapshot carries a monotonic version.
	snap, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Version == 0 || len(snap.Accounts) != 2 {
		t.Errorf("unexpected snapshot: version=%d accounts=%d", snap.Version, len(snap.Accounts))
	}

	// 5. Deleting the account cascades to its zones.
	if err := repo.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if _, err := repo.GetZone(ctx, account.ID, zoneIDB); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after cascade, got %v", err)
	}

	// 6. Settings round-trip.
	settings := domain.Settings{ARecords: true, AAAARecords: false, PurgeUnknownRecords: true, DefaultTTL: 120}
	if err := repo.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	gotSettings, _ := repo.GetSettings(ctx)
	if gotSettings != settings {
		t.Errorf("settings round-trip mismatch: %+v", gotSettings)
	}
}
