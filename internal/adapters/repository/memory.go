package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/poyrazK/cfddns/internal/core/domain"
)

// MemoryRepository implements ports.ConfigRepository with process-local
// state. A single mutex serializes writers; every read hands out deep copies
// so callers can never mutate live state. Accounts keep insertion order.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts []domain.Account
	settings domain.Settings
	version  uint64
}

// NewMemoryRepository returns an empty store with default settings.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{settings: domain.DefaultSettings()}
}

func (r *MemoryRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, len(r.accounts))
	for i, account := range r.accounts {
		out[i] = account.Clone()
	}
	return out, nil
}

func (r *MemoryRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.findAccount(id)
	if idx < 0 {
		return nil, domain.NotFoundf("account '%s'", id)
	}
	account := r.accounts[idx].Clone()
	return &account, nil
}

func (r *MemoryRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findAccount(account.ID) >= 0 {
		return fmt.Errorf("account id '%s' already exists: %w", account.ID, domain.ErrInternal)
	}
	if err := r.checkCredentialsUnique(account.Authentication, account.ID); err != nil {
		return err
	}
	if err := r.checkZoneIDsUnique(account.Zones, account.ID); err != nil {
		return err
	}

	r.accounts = append(r.accounts, account.Clone())
	r.version++
	return nil
}

func (r *MemoryRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findAccount(account.ID)
	if idx < 0 {
		return domain.NotFoundf("account '%s'", account.ID)
	}
	if err := r.checkCredentialsUnique(account.Authentication, account.ID); err != nil {
		return err
	}
	if err := r.checkZoneIDsUnique(account.Zones, account.ID); err != nil {
		return err
	}

	r.accounts[idx] = account.Clone()
	r.version++
	return nil
}

func (r *MemoryRepository) DeleteAccount(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findAccount(id)
	if idx < 0 {
		return domain.NotFoundf("account '%s'", id)
	}

	// Zones and subdomains are owned values, so removing the account is the
	// whole cascade.
	r.accounts = append(r.accounts[:idx], r.accounts[idx+1:]...)
	r.version++
	return nil
}

func (r *MemoryRepository) GetZone(ctx context.Context, accountID, zoneRef string) (*domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.findAccount(accountID)
	if idx < 0 {
		return nil, domain.NotFoundf("account '%s'", accountID)
	}
	for _, zone := range r.accounts[idx].Zones {
		if zone.ID == zoneRef || zone.ZoneID == zoneRef {
			out := zone.Clone()
			return &out, nil
		}
	}
	return nil, domain.NotFoundf("zone '%s'", zoneRef)
}

func (r *MemoryRepository) AddZone(ctx context.Context, accountID string, zone *domain.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findAccount(accountID)
	if idx < 0 {
		return domain.NotFoundf("account '%s'", accountID)
	}
	if err := r.checkZoneIDsUnique([]domain.Zone{*zone}, ""); err != nil {
		return err
	}

	updated := r.accounts[idx].Clone()
	updated.Zones = append(updated.Zones, zone.Clone())
	r.accounts[idx] = updated
	r.version++
	return nil
}

func (r *MemoryRepository) UpdateZone(ctx context.Context, accountID string, zone *domain.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findAccount(accountID)
	if idx < 0 {
		return domain.NotFoundf("account '%s'", accountID)
	}

	updated := r.accounts[idx].Clone()
	pos := -1
	for i, existing := range updated.Zones {
		if existing.ID == zone.ID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return domain.NotFoundf("zone '%s'", zone.ID)
	}
	if err := r.checkZoneIDUnique(zone.ZoneID, zone.ID); err != nil {
		return err
	}

	updated.Zones[pos] = zone.Clone()
	r.accounts[idx] = updated
	r.version++
	return nil
}

func (r *MemoryRepository) DeleteZone(ctx context.Context, accountID, zoneID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findAccount(accountID)
	if idx < 0 {
		return domain.NotFoundf("account '%s'", accountID)
	}

	updated := r.accounts[idx].Clone()
	for i, zone := range updated.Zones {
		if zone.ID == zoneID || zone.ZoneID == zoneID {
			updated.Zones = append(updated.Zones[:i], updated.Zones[i+1:]...)
			r.accounts[idx] = updated
			r.version++
			return nil
		}
	}
	return domain.NotFoundf("zone '%s'", zoneID)
}

func (r *MemoryRepository) GetSettings(ctx context.Context) (domain.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings, nil
}

func (r *MemoryRepository) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = settings
	r.version++
	return nil
}

func (r *MemoryRepository) Snapshot(ctx context.Context) (*domain.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := domain.Config{
		Version:  r.version,
		Accounts: make([]domain.Account, len(r.accounts)),
		Settings: r.settings,
	}
	for i, account := range r.accounts {
		cfg.Accounts[i] = account.Clone()
	}
	return &cfg, nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// findAccount returns the index of the account with the given id, or -1.
// Callers must hold the lock.
func (r *MemoryRepository) findAccount(id string) int {
	for i, account := range r.accounts {
		if account.ID == id {
			return i
		}
	}
	return -1
}

// checkZoneIDsUnique rejects zones whose Cloudflare zone_id is already in use
// anywhere in the store, skipping the account being replaced. A zone cannot
// belong to two Cloudflare accounts, so uniqueness is global.
func (r *MemoryRepository) checkZoneIDsUnique(zones []domain.Zone, excludeAccountID string) error {
	for _, account := range r.accounts {
		if account.ID == excludeAccountID {
			continue
		}
		for _, existing := range account.Zones {
			for _, zone := range zones {
				if existing.ZoneID == zone.ZoneID {
					return domain.Conflictf("zone id '%s' already in use", zone.ZoneID)
				}
			}
		}
	}
	return nil
}

// checkZoneIDUnique is the single-zone variant used on zone update, skipping
// the zone being replaced.
func (r *MemoryRepository) checkZoneIDUnique(zoneID, excludeZoneLocalID string) error {
	for _, account := range r.accounts {
		for _, existing := range account.Zones {
			if existing.ID == excludeZoneLocalID {
				continue
			}
			if existing.ZoneID == zoneID {
				return domain.Conflictf("zone id '%s' already in use", zoneID)
			}
		}
	}
	return nil
}

// checkCredentialsUnique rejects credentials already registered on another
// account: a token, key or email can only authenticate one account.
func (r *MemoryRepository) checkCredentialsUnique(auth domain.Authentication, excludeAccountID string) error {
	for _, account := range r.accounts {
		if account.ID == excludeAccountID {
			continue
		}
		existing := account.Authentication
		if auth.APIToken != "" && auth.APIToken == existing.APIToken {
			return domain.Conflictf("api token already registered")
		}
		if auth.APIKey != nil && existing.APIKey != nil {
			if auth.APIKey.APIKey == existing.APIKey.APIKey {
				return domain.Conflictf("api key already registered")
			}
			if auth.APIKey.AccountEmail == existing.APIKey.AccountEmail {
				return domain.Conflictf("account email '%s' already registered", auth.APIKey.AccountEmail)
			}
		}
	}
	return nil
}
