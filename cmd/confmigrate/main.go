// Command confmigrate imports a legacy flat config.json into the
// configuration store, assigning ids to every entity on the way in.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poyrazK/cfddns/internal/adapters/repository"
	"github.com/poyrazK/cfddns/internal/core/domain"
)

// legacyFile is the flat layout used before the store existed: one entry per
// zone, credentials repeated per entry, update switches at the top level.
type legacyFile struct {
	Cloudflare []legacyEntry `json:"cloudflare"`
	ARecords   *bool         `json:"a"`
	AAAA       *bool         `json:"aaaa"`
	Purge      bool          `json:"purgeUnknownRecords"`
	TTL        int           `json:"ttl"`
}

type legacyEntry struct {
	Authentication legacyAuth        `json:"authentication"`
	ZoneID         string            `json:"zone_id"`
	Domain         string            `json:"domain"`
	Subdomains     []legacySubdomain `json:"subdomains"`
}

type legacyAuth struct {
	APIToken string `json:"api_token"`
	APIKey   *struct {
		APIKey       string `json:"api_key"`
		AccountEmail string `json:"account_email"`
	} `json:"api_key"`
}

type legacySubdomain struct {
	Name    string `json:"name"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

func main() {
	path := flag.String("file", "config.json", "Path to the legacy config.json")
	dryRun := flag.Bool("dry-run", false, "Print the normalized configuration instead of writing it")
	flag.Parse()

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *path, err)
	}

	accounts, settings, err := importConfig(data)
	if err != nil {
		log.Fatalf("failed to import configuration: %v", err)
	}

	if *dryRun {
		out, _ := json.MarshalIndent(struct {
			Accounts []domain.Account `json:"accounts"`
			Settings domain.Settings  `json:"settings"`
		}{accounts, settings}, "", "  ")
		fmt.Println(string(out))
		return
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required unless -dry-run is set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	repo := repository.NewPostgresRepository(db)
	ctx := context.Background()

	for _, account := range accounts {
		acc := account
		if err := repo.CreateAccount(ctx, &acc); err != nil {
			log.Fatalf("failed to import account %s: %v", acc.ID, err)
		}
		fmt.Printf("imported account %s (%d zones)\n", acc.ID, len(acc.Zones))
	}
	if err := repo.UpdateSettings(ctx, settings); err != nil {
		log.Fatalf("failed to import settings: %v", err)
	}
	fmt.Printf("imported %d accounts\n", len(accounts))
}

// importConfig normalizes a legacy flat config into accounts and settings.
// Entries sharing the same credentials collapse into one account; every
// entity receives a fresh id.
func importConfig(data []byte) ([]domain.Account, domain.Settings, error) {
	var legacy legacyFile
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, domain.Settings{}, fmt.Errorf("malformed legacy config: %w", err)
	}

	settings := domain.DefaultSettings()
	if legacy.ARecords != nil {
		settings.ARecords = *legacy.ARecords
	}
	if legacy.AAAA != nil {
		settings.AAAARecords = *legacy.AAAA
	}
	settings.PurgeUnknownRecords = legacy.Purge
	if legacy.TTL != 0 {
		settings.DefaultTTL = clampTTL(legacy.TTL)
	}

	// Group entries by credential identity so one account ends up owning all
	// zones managed with the same token or key.
	var order []string
	grouped := make(map[string][]legacyEntry)
	for _, entry := range legacy.Cloudflare {
		key := credentialKey(entry.Authentication)
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], entry)
	}

	accounts := make([]domain.Account, 0, len(order))
	for _, key := range order {
		entries := grouped[key]
		auth := buildAuth(entries[0].Authentication)

		zones := make([]domain.Zone, 0, len(entries))
		for _, entry := range entries {
			if entry.Domain == "" {
				return nil, domain.Settings{}, fmt.Errorf("entry for zone %s has no domain; annotate the legacy file before importing", entry.ZoneID)
			}
			subdomains := make([]domain.Subdomain, 0, len(entry.Subdomains))
			for _, legacySub := range entry.Subdomains {
				ttl := legacySub.TTL
				if ttl == 0 {
					ttl = settings.DefaultTTL
				}
				sub, err := domain.NewSubdomain("", legacySub.Name, legacySub.Proxied, clampTTL(ttl))
				if err != nil {
					return nil, domain.Settings{}, fmt.Errorf("zone %s: %w", entry.ZoneID, err)
				}
				subdomains = append(subdomains, sub)
			}
			zone, err := domain.NewZone("", entry.ZoneID, entry.Domain, subdomains)
			if err != nil {
				return nil, domain.Settings{}, fmt.Errorf("zone %s: %w", entry.ZoneID, err)
			}
			zones = append(zones, zone)
		}

		account, err := domain.NewAccount("", auth, zones)
		if err != nil {
			return nil, domain.Settings{}, err
		}
		accounts = append(accounts, account)
	}

	return accounts, settings, nil
}

func buildAuth(legacy legacyAuth) domain.Authentication {
	auth := domain.Authentication{APIToken: legacy.APIToken}
	if legacy.APIKey != nil {
		auth.APIKey = &domain.APIKeyAuth{
			APIKey:       legacy.APIKey.APIKey,
			AccountEmail: legacy.APIKey.AccountEmail,
		}
	}
	return auth
}

func credentialKey(legacy legacyAuth) string {
	if legacy.APIToken != "" {
		return "token:" + legacy.APIToken
	}
	if legacy.APIKey != nil {
		return "key:" + legacy.APIKey.APIKey + "/" + legacy.APIKey.AccountEmail
	}
	return "none"
}

// clampTTL pulls legacy TTL values into the accepted range. Old files used
// values as low as 30, and 1 meant "automatic".
func clampTTL(ttl int) int {
	if ttl < domain.TTLMin {
		return domain.TTLMin
	}
	if ttl > domain.TTLMax {
		return domain.TTLMax
	}
	return ttl
}
