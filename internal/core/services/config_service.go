package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poyrazK/cfddns/internal/core/domain"
	"github.com/poyrazK/cfddns/internal/core/ports"
	"github.com/poyrazK/cfddns/internal/infrastructure/metrics"
)

type configService struct {
	repo      ports.ConfigRepository
	publisher ports.SnapshotPublisher // may be nil
	logger    *slog.Logger
}

// NewConfigService wires a ConfigService around the given repository.
// publisher may be nil; snapshots are then only served on demand.
func NewConfigService(repo ports.ConfigRepository, publisher ports.SnapshotPublisher, logger *slog.Logger) ports.ConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &configService{repo: repo, publisher: publisher, logger: logger}
}

func (s *configService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.repo.ListAccounts(ctx)
}

func (s *configService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *configService) CreateAccount(ctx context.Context, auth domain.Authentication, zones []ports.ZoneInput) (*domain.Account, error) {
	built, err := buildZones(zones)
	if err != nil {
		return nil, s.fail("create_account", err)
	}

	// Ids are assigned here, before anything touches the store, so a failed
	// persist leaves no trace.
	account, err := domain.NewAccount("", auth, built)
	if err != nil {
		return nil, s.fail("create_account", err)
	}

	if err := s.repo.CreateAccount(ctx, &account); err != nil {
		return nil, s.fail("create_account", err)
	}
	s.committed(ctx, "create_account")
	return &account, nil
}

func (s *configService) UpdateAccount(ctx context.Context, id string, auth domain.Authentication, zones []ports.ZoneInput) (*domain.Account, error) {
	built, err := buildZones(zones)
	if err != nil {
		return nil, s.fail("update_account", err)
	}

	account, err := domain.NewAccount(id, auth, built)
	if err != nil {
		return nil, s.fail("update_account", err)
	}

	if err := s.repo.UpdateAccount(ctx, &account); err != nil {
		return nil, s.fail("update_account", err)
	}
	s.committed(ctx, "update_account")
	return &account, nil
}

func (s *configService) UpdateAuthentication(ctx context.Context, id string, auth domain.Authentication) (*domain.Account, error) {
	existing, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, s.fail("update_authentication", err)
	}

	account, err := domain.NewAccount(existing.ID, auth, existing.Zones)
	if err != nil {
		return nil, s.fail("update_authentication", err)
	}

	if err := s.repo.UpdateAccount(ctx, &account); err != nil {
		return nil, s.fail("update_authentication", err)
	}
	s.committed(ctx, "update_authentication")
	return &account, nil
}

func (s *configService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		return s.fail("delete_account", err)
	}
	s.committed(ctx, "delete_account")
	return nil
}

func (s *configService) ListZones(ctx context.Context, accountID string) ([]domain.Zone, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Zones, nil
}

func (s *configService) GetZone(ctx context.Context, accountID, zoneRef string) (*domain.Zone, error) {
	return s.repo.GetZone(ctx, accountID, zoneRef)
}

func (s *configService) AddZone(ctx context.Context, accountID string, input ports.ZoneInput) (*domain.Zone, error) {
	zone, err := buildZone(input)
	if err != nil {
		return nil, s.fail("add_zone", err)
	}

	if err := s.repo.AddZone(ctx, accountID, &zone); err != nil {
		return nil, s.fail("add_zone", err)
	}
	s.committed(ctx, "add_zone")
	return &zone, nil
}

func (s *configService) UpdateZone(ctx context.Context, accountID, zoneID string, input ports.ZoneInput) (*domain.Zone, error) {
	// The path parameter wins over any id in the payload; the zone keeps its
	// identity across the full replace.
	input.ID = zoneID
	zone, err := buildZone(input)
	if err != nil {
		return nil, s.fail("update_zone", err)
	}

	if err := s.repo.UpdateZone(ctx, accountID, &zone); err != nil {
		return nil, s.fail("update_zone", err)
	}
	s.committed(ctx, "update_zone")
	return &zone, nil
}

func (s *configService) DeleteZone(ctx context.Context, accountID, zoneID string) error {
	if err := s.repo.DeleteZone(ctx, accountID, zoneID); err != nil {
		return s.fail("delete_zone", err)
	}
	s.committed(ctx, "delete_zone")
	return nil
}

func (s *configService) GetSettings(ctx context.Context) (domain.Settings, error) {
	return s.repo.GetSettings(ctx)
}

func (s *configService) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, s.fail("update_settings", err)
	}
	if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return domain.Settings{}, s.fail("update_settings", err)
	}
	s.committed(ctx, "update_settings")
	return settings, nil
}

func (s *configService) Snapshot(ctx context.Context) (*domain.Config, error) {
	return s.repo.Snapshot(ctx)
}

func (s *configService) HealthCheck(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// committed records a successful mutation, refreshes the entity gauges and
// pushes a fresh snapshot to subscribers.
func (s *configService) committed(ctx context.Context, op string) {
	metrics.OperationsTotal.WithLabelValues(op, "ok").Inc()

	cfg, err := s.repo.Snapshot(ctx)
	if err != nil {
		s.logger.Error("snapshot after commit failed", "op", op, "error", err)
		return
	}

	zones, subdomains := 0, 0
	for _, account := range cfg.Accounts {
		zones += len(account.Zones)
		for _, zone := range account.Zones {
			subdomains += len(zone.Subdomains)
		}
	}
	metrics.AccountsConfigured.Set(float64(len(cfg.Accounts)))
	metrics.ZonesConfigured.Set(float64(zones))
	metrics.SubdomainsConfigured.Set(float64(subdomains))

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, cfg); err != nil {
		// Best-effort: the reconciler can always fall back to GET /config.
		metrics.SnapshotPublishes.WithLabelValues("error").Inc()
		s.logger.Error("snapshot publish failed", "op", op, "version", cfg.Version, "error", err)
		return
	}
	metrics.SnapshotPublishes.WithLabelValues("ok").Inc()
}

func (s *configService) fail(op string, err error) error {
	metrics.OperationsTotal.WithLabelValues(op, "error").Inc()
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		metrics.ValidationFailures.WithLabelValues(ve.Field, ve.Reason).Inc()
	}
	return err
}

func buildZone(input ports.ZoneInput) (domain.Zone, error) {
	subdomains := make([]domain.Subdomain, 0, len(input.Subdomains))
	for _, sub := range input.Subdomains {
		built, err := domain.NewSubdomain(sub.ID, sub.Name, sub.Proxied, sub.TTL)
		if err != nil {
			return domain.Zone{}, err
		}
		subdomains = append(subdomains, built)
	}
	return domain.NewZone(input.ID, input.ZoneID, input.Domain, subdomains)
}

func buildZones(inputs []ports.ZoneInput) ([]domain.Zone, error) {
	zones := make([]domain.Zone, 0, len(inputs))
	for _, input := range inputs {
		zone, err := buildZone(input)
		if err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, nil
}
