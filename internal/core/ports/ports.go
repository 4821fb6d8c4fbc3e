package ports

import (
	"context"

	"github.com/poyrazK/cfddns/internal/core/domain"
)

// ConfigRepository is the configuration store. Implementations must apply
// each operation atomically: readers never observe a partially applied
// mutation, and uniqueness checks run against live state before anything is
// written.
type ConfigRepository interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	CreateAccount(ctx context.Context, account *domain.Account) error
	// UpdateAccount replaces the stored account (authentication and zones)
	// with the supplied, fully validated value.
	UpdateAccount(ctx context.Context, account *domain.Account) error
	DeleteAccount(ctx context.Context, id string) error

	// GetZone resolves zoneRef as either the zone's local id or its
	// Cloudflare zone_id.
	GetZone(ctx context.Context, accountID, zoneRef string) (*domain.Zone, error)
	AddZone(ctx context.Context, accountID string, zone *domain.Zone) error
	UpdateZone(ctx context.Context, accountID string, zone *domain.Zone) error
	DeleteZone(ctx context.Context, accountID, zoneID string) error

	GetSettings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, settings domain.Settings) error

	// Snapshot returns a deep copy of the whole configuration along with a
	// version that increases with every committed mutation.
	Snapshot(ctx context.Context) (*domain.Config, error)
	Ping(ctx context.Context) error
}

// SubdomainInput is the caller-supplied shape of a subdomain in create and
// full-replace operations. A non-empty ID preserves the existing identifier.
type SubdomainInput struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

// ZoneInput is the caller-supplied shape of a zone.
type ZoneInput struct {
	ID         string           `json:"id,omitempty"`
	ZoneID     string           `json:"zone_id"`
	Domain     string           `json:"domain"`
	Subdomains []SubdomainInput `json:"subdomains"`
}

// ConfigService orchestrates validation, id assignment and persistence for
// the configuration API.
type ConfigService interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	CreateAccount(ctx context.Context, auth domain.Authentication, zones []ZoneInput) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id string, auth domain.Authentication, zones []ZoneInput) (*domain.Account, error)
	UpdateAuthentication(ctx context.Context, id string, auth domain.Authentication) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	ListZones(ctx context.Context, accountID string) ([]domain.Zone, error)
	GetZone(ctx context.Context, accountID, zoneRef string) (*domain.Zone, error)
	AddZone(ctx context.Context, accountID string, zone ZoneInput) (*domain.Zone, error)
	UpdateZone(ctx context.Context, accountID, zoneID string, zone ZoneInput) (*domain.Zone, error)
	DeleteZone(ctx context.Context, accountID, zoneID string) error

	GetSettings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error)

	Snapshot(ctx context.Context) (*domain.Config, error)
	HealthCheck(ctx context.Context) error
}

// SnapshotPublisher pushes committed configuration snapshots to interested
// consumers, e.g. the DNS reconciler. Publishing is best-effort.
type SnapshotPublisher interface {
	Publish(ctx context.Context, cfg *domain.Config) error
}
