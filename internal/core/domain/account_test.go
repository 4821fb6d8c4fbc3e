package domain

import (
	"errors"
	"testing"
)

const testZoneID = "0123456789abcdef0123456789abcdef"

func TestNewSubdomain(t *testing.T) {
	sub, err := NewSubdomain("", "www", true, 300)
	if err != nil {
		t.Fatalf("NewSubdomain failed: %v", err)
	}
	if sub.ID == "" {
		t.Errorf("expected generated id")
	}
	if !sub.Proxied || sub.TTL != 300 {
		t.Errorf("unexpected subdomain: %+v", sub)
	}

	// Supplied ids are preserved.
	sub, err = NewSubdomain("keep-me", "www", false, 60)
	if err != nil {
		t.Fatalf("NewSubdomain failed: %v", err)
	}
	if sub.ID != "keep-me" {
		t.Errorf("expected supplied id to be kept, got %s", sub.ID)
	}

	if _, err := NewSubdomain("", "-bad", false, 300); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := NewSubdomain("", "www", false, 59); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewZone(t *testing.T) {
	www, _ := NewSubdomain("", "www", false, 300)
	blog, _ := NewSubdomain("", "blog", true, 120)

	zone, err := NewZone("", testZoneID, "example.com", []Subdomain{www, blog})
	if err != nil {
		t.Fatalf("NewZone failed: %v", err)
	}
	if zone.ID == "" {
		t.Errorf("expected generated id")
	}
	if len(zone.Subdomains) != 2 {
		t.Errorf("expected 2 subdomains, got %d", len(zone.Subdomains))
	}

	if _, err := NewZone("", "short", "example.com", nil); !IsValidation(err) {
		t.Errorf("expected validation error for bad zone id, got %v", err)
	}
	if _, err := NewZone("", testZoneID, "", nil); !IsValidation(err) {
		t.Errorf("expected validation error for empty domain, got %v", err)
	}

	dup, _ := NewSubdomain("", "www", true, 600)
	if _, err := NewZone("", testZoneID, "example.com", []Subdomain{www, dup}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate subdomain name, got %v", err)
	}

	// Caller-supplied ids collide too, not just names.
	first, _ := NewSubdomain("sdup", "www", false, 300)
	second, _ := NewSubdomain("sdup", "blog", false, 300)
	if _, err := NewZone("", testZoneID, "example.com", []Subdomain{first, second}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate subdomain id, got %v", err)
	}
}

func TestNewAccount(t *testing.T) {
	auth := Authentication{APIToken: "tok"}
	zone, _ := NewZone("", testZoneID, "example.com", nil)

	account, err := NewAccount("", auth, []Zone{zone})
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}
	if account.ID == "" {
		t.Errorf("expected generated id")
	}

	if _, err := NewAccount("", Authentication{}, nil); !IsValidation(err) {
		t.Errorf("expected validation error for missing auth, got %v", err)
	}

	other, _ := NewZone("", testZoneID, "other.com", nil)
	if _, err := NewAccount("", auth, []Zone{zone, other}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate zone_id, got %v", err)
	}

	// Two zones carrying the same supplied local id are rejected even when
	// their cloudflare zone_ids differ.
	left, _ := NewZone("dup", testZoneID, "example.com", nil)
	right, _ := NewZone("dup", "fedcba9876543210fedcba9876543210", "example.org", nil)
	if _, err := NewAccount("", auth, []Zone{left, right}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate zone local id, got %v", err)
	}
}

func TestAccountClone(t *testing.T) {
	sub, _ := NewSubdomain("", "www", false, 300)
	zone, _ := NewZone("", testZoneID, "example.com", []Subdomain{sub})
	auth := Authentication{APIKey: &APIKeyAuth{APIKey: "key", AccountEmail: "user@example.com"}}
	account, _ := NewAccount("", auth, []Zone{zone})

	clone := account.Clone()
	clone.Zones[0].Subdomains[0].Name = "mutated"
	clone.Authentication.APIKey.APIKey = "mutated"

	if account.Zones[0].Subdomains[0].Name != "www" {
		t.Errorf("clone mutation leaked into original subdomain")
	}
	if account.Authentication.APIKey.APIKey != "key" {
		t.Errorf("clone mutation leaked into original authentication")
	}
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings should validate: %v", err)
	}
	if !s.ARecords || !s.AAAARecords || s.PurgeUnknownRecords {
		t.Errorf("unexpected defaults: %+v", s)
	}

	s.DefaultTTL = 10
	if err := s.Validate(); !IsValidation(err) {
		t.Errorf("expected validation error for low ttl, got %v", err)
	}
}
