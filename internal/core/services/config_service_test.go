package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/poyrazK/cfddns/internal/core/domain"
	"github.com/poyrazK/cfddns/internal/core/ports"
	"github.com/poyrazK/cfddns/internal/testutil"
	"github.com/stretchr/testify/mock"
)

const testZoneID = "0123456789abcdef0123456789abcdef"

func newService(repo ports.ConfigRepository, pub ports.SnapshotPublisher) ports.ConfigService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConfigService(repo, pub, logger)
}

func emptySnapshot() *domain.Config {
	return &domain.Config{Version: 1, Settings: domain.DefaultSettings()}
}

func TestCreateAccount_AssignsIDs(t *testing.T) {
	repo := new(testutil.MockStore)
	repo.On("CreateAccount", mock.AnythingOfType("*domain.Account")).Return(nil)
	repo.On("Snapshot").Return(emptySnapshot(), nil)

	svc := newService(repo, nil)
	account, err := svc.CreateAccount(context.Background(), domain.Authentication{APIToken: "tok"}, []ports.ZoneInput{
		{ZoneID: testZoneID, Domain: "example.com", Subdomains: []ports.SubdomainInput{
			{Name: "www", Proxied: true, TTL: 300},
		}},
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if account.ID == "" {
		t.Error("account id not assigned")
	}
	if account.Zones[0].ID == "" || account.Zones[0].Subdomains[0].ID == "" {
		t.Error("nested ids not assigned")
	}
	repo.AssertExpectations(t)
}

func TestCreateAccount_PreservesSuppliedIDs(t *testing.T) {
	repo := new(testutil.MockStore)
	repo.On("CreateAccount", mock.AnythingOfType("*domain.Account")).Return(nil)
	repo.On("Snapshot").Return(emptySnapshot(), nil)

	svc := newService(repo, nil)
	account, err := svc.CreateAccount(context.Background(), domain.Authentication{APIToken: "tok"}, []ports.ZoneInput{
		{ID: "zone-keep", ZoneID: testZoneID, Domain: "example.com", Subdomains: []ports.SubdomainInput{
			{ID: "sub-keep", Name: "www", TTL: 300},
		}},
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if account.Zones[0].ID != "zone-keep" || account.Zones[0].Subdomains[0].ID != "sub-keep" {
		t.Errorf("supplied ids not preserved: %+v", account.Zones[0])
	}
}

func TestCreateAccount_ValidationAbortsBeforeStore(t *testing.T) {
	repo := new(testutil.MockStore)

	svc := newService(repo, nil)
	_, err := svc.CreateAccount(context.Background(), domain.Authentication{}, nil)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Reason != domain.ReasonNoMethodProvided {
		t.Errorf("reason = %q", ve.Reason)
	}
	repo.AssertNotCalled(t, "CreateAccount", mock.Anything)
}

func TestCreateAccount_RejectsCollidingSuppliedIDs(t *testing.T) {
	repo := new(testutil.MockStore)
	svc := newService(repo, nil)

	// Two zones reusing one supplied local id never reach the store.
	_, err := svc.CreateAccount(context.Background(), domain.Authentication{APIToken: "tok"}, []ports.ZoneInput{
		{ID: "dup", ZoneID: testZoneID, Domain: "example.com"},
		{ID: "dup", ZoneID: "fedcba9876543210fedcba9876543210", Domain: "example.org"},
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate zone local id, got %v", err)
	}

	// Same for two subdomains sharing an id within one zone.
	_, err = svc.CreateAccount(context.Background(), domain.Authentication{APIToken: "tok"}, []ports.ZoneInput{
		{ZoneID: testZoneID, Domain: "example.com", Subdomains: []ports.SubdomainInput{
			{ID: "sdup", Name: "www", TTL: 300},
			{ID: "sdup", Name: "blog", TTL: 300},
		}},
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate subdomain id, got %v", err)
	}
	repo.AssertNotCalled(t, "CreateAccount", mock.Anything)
}

func TestUpdateZone_PathParamWins(t *testing.T) {
	repo := new(testutil.MockStore)
	var stored *domain.Zone
	repo.On("UpdateZone", "acc-1", mock.AnythingOfType("*domain.Zone")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Zone) }).
		Return(nil)
	repo.On("Snapshot").Return(emptySnapshot(), nil)

	svc := newService(repo, nil)
	_, err := svc.UpdateZone(context.Background(), "acc-1", "zone-1", ports.ZoneInput{
		ID:     "smuggled",
		ZoneID: testZoneID,
		Domain: "example.com",
	})
	if err != nil {
		t.Fatalf("UpdateZone failed: %v", err)
	}
	if stored.ID != "zone-1" {
		t.Errorf("zone id = %q, want path value to win", stored.ID)
	}
}

func TestUpdateAuthentication_KeepsZones(t *testing.T) {
	existingZone, _ := domain.NewZone("z1", testZoneID, "example.com", nil)
	existing, _ := domain.NewAccount("acc-1", domain.Authentication{APIToken: "old"}, []domain.Zone{existingZone})

	repo := new(testutil.MockStore)
	repo.On("GetAccount", "acc-1").Return(&existing, nil)
	var stored *domain.Account
	repo.On("UpdateAccount", mock.AnythingOfType("*domain.Account")).
		Run(func(args mock.Arguments) { stored = args.Get(0).(*domain.Account) }).
		Return(nil)
	repo.On("Snapshot").Return(emptySnapshot(), nil)

	svc := newService(repo, nil)
	_, err := svc.UpdateAuthentication(context.Background(), "acc-1", domain.Authentication{APIToken: "new"})
	if err != nil {
		t.Fatalf("UpdateAuthentication failed: %v", err)
	}
	if stored.Authentication.APIToken != "new" {
		t.Errorf("token not rotated: %+v", stored.Authentication)
	}
	if len(stored.Zones) != 1 || stored.Zones[0].ID != "z1" {
		t.Errorf("zones not preserved: %+v", stored.Zones)
	}
}

func TestCommit_PublishesSnapshot(t *testing.T) {
	repo := new(testutil.MockStore)
	repo.On("DeleteAccount", "acc-1").Return(nil)
	repo.On("Snapshot").Return(emptySnapshot(), nil)

	pub := new(testutil.MockPublisher)
	pub.On("Publish", mock.AnythingOfType("*domain.Config")).Return(nil)

	svc := newService(repo, pub)
	if err := svc.DeleteAccount(context.Background(), "acc-1"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	pub.AssertExpectations(t)
}

func TestCommit_PublishFailureIsBestEffort(t *testing.T) {
	repo := new(testutil.MockStore)
	repo.On("DeleteAccount", "acc-1").Return(nil)
	repo.On("Snapshot").Return(emptySnapshot(), nil)

	pub := new(testutil.MockPublisher)
	pub.On("Publish", mock.Anything).Return(errors.New("redis down"))

	svc := newService(repo, pub)
	if err := svc.DeleteAccount(context.Background(), "acc-1"); err != nil {
		t.Errorf("publish failure must not fail the operation: %v", err)
	}
}

func TestFailedOperations_DoNotPublish(t *testing.T) {
	repo := new(testutil.MockStore)
	repo.On("DeleteAccount", "missing").Return(domain.NotFoundf("account 'missing' not found"))

	pub := new(testutil.MockPublisher)

	svc := newService(repo, pub)
	if err := svc.DeleteAccount(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	pub.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestUpdateSettings_Validates(t *testing.T) {
	repo := new(testutil.MockStore)

	svc := newService(repo, nil)
	_, err := svc.UpdateSettings(context.Background(), domain.Settings{DefaultTTL: 10})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	repo.AssertNotCalled(t, "UpdateSettings", mock.Anything)
}
