// Package domain contains the core configuration model and validation rules
// for cfddns.
package domain

import (
	"github.com/google/uuid"
)

// APIKeyAuth is the legacy Cloudflare global API key credential pair.
type APIKeyAuth struct {
	APIKey       string `json:"api_key"`
	AccountEmail string `json:"account_email"`
}

// Authentication holds the credentials used against the Cloudflare API.
// At least one of APIToken or APIKey must be set.
type Authentication struct {
	APIToken string      `json:"api_token,omitempty"`
	APIKey   *APIKeyAuth `json:"api_key,omitempty"`
}

// Subdomain is a DNS label within a zone that the updater keeps pointed at
// the current public IP.
type Subdomain struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"` // advisory when Proxied, Cloudflare forces "automatic"
}

// Zone is a Cloudflare DNS zone owned by exactly one account.
type Zone struct {
	ID         string      `json:"id"`
	ZoneID     string      `json:"zone_id"` // 32-char lowercase hex, assigned by Cloudflare
	Domain     string      `json:"domain"`
	Subdomains []Subdomain `json:"subdomains"`
}

// Account is the aggregate root: one set of Cloudflare credentials and the
// zones managed with them.
type Account struct {
	ID             string         `json:"id"`
	Authentication Authentication `json:"authentication"`
	Zones          []Zone         `json:"zones"`
}

// Config is a consistent snapshot of the whole store, consumed by the
// reconciliation process.
type Config struct {
	Version  uint64    `json:"version"`
	Accounts []Account `json:"accounts"`
	Settings Settings  `json:"settings"`
}

// NewSubdomain validates and constructs a Subdomain. An empty id gets a fresh
// UUID; a supplied id is preserved.
func NewSubdomain(id, name string, proxied bool, ttl int) (Subdomain, error) {
	if err := ValidateSubdomainName(name); err != nil {
		return Subdomain{}, err
	}
	if err := ValidateTTL(ttl); err != nil {
		return Subdomain{}, err
	}
	if id == "" {
		id = uuid.New().String()
	}
	return Subdomain{ID: id, Name: name, Proxied: proxied, TTL: ttl}, nil
}

// NewZone validates and constructs a Zone from already-constructed
// subdomains. Subdomain names and ids must be unique within the zone.
func NewZone(id, zoneID, domainName string, subdomains []Subdomain) (Zone, error) {
	if err := ValidateZoneID(zoneID); err != nil {
		return Zone{}, err
	}
	if domainName == "" {
		return Zone{}, newValidationError("domain", ReasonEmpty, "domain must not be empty")
	}
	seenNames := make(map[string]struct{}, len(subdomains))
	seenIDs := make(map[string]struct{}, len(subdomains))
	for _, sub := range subdomains {
		if _, dup := seenNames[sub.Name]; dup {
			return Zone{}, Conflictf("duplicate subdomain name '%s'", sub.Name)
		}
		seenNames[sub.Name] = struct{}{}
		if _, dup := seenIDs[sub.ID]; dup {
			return Zone{}, Conflictf("duplicate subdomain id '%s'", sub.ID)
		}
		seenIDs[sub.ID] = struct{}{}
	}
	if id == "" {
		id = uuid.New().String()
	}
	zone := Zone{ID: id, ZoneID: zoneID, Domain: domainName}
	zone.Subdomains = append(zone.Subdomains, subdomains...)
	return zone, nil
}

// NewAccount validates and constructs an Account from already-constructed
// zones. Zone ids (both local and Cloudflare) must be unique within the
// account.
func NewAccount(id string, auth Authentication, zones []Zone) (Account, error) {
	if err := ValidateAuthentication(auth); err != nil {
		return Account{}, err
	}
	seenZoneIDs := make(map[string]struct{}, len(zones))
	seenIDs := make(map[string]struct{}, len(zones))
	for _, zone := range zones {
		if _, dup := seenZoneIDs[zone.ZoneID]; dup {
			return Account{}, Conflictf("duplicate zone id '%s'", zone.ZoneID)
		}
		seenZoneIDs[zone.ZoneID] = struct{}{}
		if _, dup := seenIDs[zone.ID]; dup {
			return Account{}, Conflictf("duplicate zone local id '%s'", zone.ID)
		}
		seenIDs[zone.ID] = struct{}{}
	}
	if id == "" {
		id = uuid.New().String()
	}
	account := Account{ID: id, Authentication: auth}
	account.Zones = append(account.Zones, zones...)
	return account, nil
}

// Clone returns a deep copy of the authentication value.
func (a Authentication) Clone() Authentication {
	out := a
	if a.APIKey != nil {
		key := *a.APIKey
		out.APIKey = &key
	}
	return out
}

// Clone returns a deep copy of the zone.
func (z Zone) Clone() Zone {
	out := z
	out.Subdomains = append([]Subdomain(nil), z.Subdomains...)
	return out
}

// Clone returns a deep copy of the account.
func (a Account) Clone() Account {
	out := a
	out.Authentication = a.Authentication.Clone()
	out.Zones = make([]Zone, len(a.Zones))
	for i, zone := range a.Zones {
		out.Zones[i] = zone.Clone()
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (c Config) Clone() Config {
	out := c
	out.Accounts = make([]Account, len(c.Accounts))
	for i, account := range c.Accounts {
		out.Accounts[i] = account.Clone()
	}
	return out
}
