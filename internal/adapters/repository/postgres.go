package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/poyrazK/cfddns/internal/core/domain"
)

const uniqueViolation = "23505"

// PostgresRepository implements ports.ConfigRepository on PostgreSQL.
// Every mutation runs in a transaction; cascades and zone_id uniqueness are
// enforced by the schema (ON DELETE CASCADE, unique index).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates and returns a new PostgresRepository instance.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	return r.loadAccounts(ctx, tx)
}

func (r *PostgresRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	return r.loadAccount(ctx, tx, id)
}

func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		token, key, email := credentialColumns(account.Authentication)

		var clashes int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM cf_accounts
			 WHERE ($1 <> '' AND api_token = $1)
			    OR ($2 <> '' AND api_key = $2)
			    OR ($3 <> '' AND account_email = $3)`,
			token, key, email).Scan(&clashes)
		if err != nil {
			return err
		}
		if clashes > 0 {
			return domain.Conflictf("credentials already registered")
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cf_accounts (id, api_token, api_key, account_email) VALUES ($1, $2, $3, $4)`,
			account.ID, token, key, email); err != nil {
			return mapPgError(err)
		}
		return r.insertZones(ctx, tx, account.ID, account.Zones)
	})
}

func (r *PostgresRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		token, key, email := credentialColumns(account.Authentication)

		var clashes int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM cf_accounts
			 WHERE id::text <> $4
			   AND (($1 <> '' AND api_token = $1)
			     OR ($2 <> '' AND api_key = $2)
			     OR ($3 <> '' AND account_email = $3))`,
			token, key, email, account.ID).Scan(&clashes)
		if err != nil {
			return err
		}
		if clashes > 0 {
			return domain.Conflictf("credentials already registered")
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE cf_accounts SET api_token = $2, api_key = $3, account_email = $4 WHERE id = $1`,
			account.ID, token, key, email)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFoundf("account '%s'", account.ID)
		}

		// Full replace: drop the old zone tree (subdomains cascade) and
		// re-insert the validated one.
		if _, err := tx.ExecContext(ctx, `DELETE FROM cf_zones WHERE account_id = $1`, account.ID); err != nil {
			return err
		}
		return r.insertZones(ctx, tx, account.ID, account.Zones)
	})
}

func (r *PostgresRepository) DeleteAccount(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM cf_accounts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFoundf("account '%s'", id)
		}
		return nil
	})
}

func (r *PostgresRepository) GetZone(ctx context.Context, accountID, zoneRef string) (*domain.Zone, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cf_accounts WHERE id::text = $1)`, accountID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundf("account '%s'", accountID)
	}

	var zone domain.Zone
	err := r.db.QueryRowContext(ctx,
		`SELECT id, zone_id, domain FROM cf_zones WHERE account_id::text = $1 AND (id::text = $2 OR zone_id = $2)`,
		accountID, zoneRef).Scan(&zone.ID, &zone.ZoneID, &zone.Domain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("zone '%s'", zoneRef)
	}
	if err != nil {
		return nil, err
	}

	zone.Subdomains, err = r.loadSubdomains(ctx, r.db, zone.ID)
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *PostgresRepository) AddZone(ctx context.Context, accountID string, zone *domain.Zone) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM cf_accounts WHERE id::text = $1)`, accountID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.NotFoundf("account '%s'", accountID)
		}
		return r.insertZones(ctx, tx, accountID, []domain.Zone{*zone})
	})
}

func (r *PostgresRepository) UpdateZone(ctx context.Context, accountID string, zone *domain.Zone) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE cf_zones SET zone_id = $3, domain = $4 WHERE account_id::text = $1 AND id::text = $2`,
			accountID, zone.ID, zone.ZoneID, zone.Domain)
		if err != nil {
			return mapPgError(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFoundf("zone '%s'", zone.ID)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cf_subdomains WHERE zone_ref::text = $1`, zone.ID); err != nil {
			return err
		}
		return r.insertSubdomains(ctx, tx, zone.ID, zone.Subdomains)
	})
}

func (r *PostgresRepository) DeleteZone(ctx context.Context, accountID, zoneID string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM cf_zones WHERE account_id::text = $1 AND (id::text = $2 OR zone_id = $2)`,
			accountID, zoneID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFoundf("zone '%s'", zoneID)
		}
		return nil
	})
}

func (r *PostgresRepository) GetSettings(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT a_records, aaaa_records, purge_unknown, default_ttl FROM cf_settings WHERE id = 1`).
		Scan(&s.ARecords, &s.AAAARecords, &s.PurgeUnknownRecords, &s.DefaultTTL)
	return s, err
}

func (r *PostgresRepository) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE cf_settings SET a_records = $1, aaaa_records = $2, purge_unknown = $3, default_ttl = $4 WHERE id = 1`,
			settings.ARecords, settings.AAAARecords, settings.PurgeUnknownRecords, settings.DefaultTTL)
		return err
	})
}

func (r *PostgresRepository) Snapshot(ctx context.Context) (*domain.Config, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	var cfg domain.Config
	if err := tx.QueryRowContext(ctx, `SELECT version FROM cf_config_version WHERE id = 1`).Scan(&cfg.Version); err != nil {
		return nil, err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT a_records, aaaa_records, purge_unknown, default_ttl FROM cf_settings WHERE id = 1`).
		Scan(&cfg.Settings.ARecords, &cfg.Settings.AAAARecords, &cfg.Settings.PurgeUnknownRecords, &cfg.Settings.DefaultTTL); err != nil {
		return nil, err
	}
	cfg.Accounts, err = r.loadAccounts(ctx, tx)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// querier is the common subset of *sql.DB and *sql.Tx used by the loaders.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *PostgresRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		rollback(tx)
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE cf_config_version SET version = version + 1 WHERE id = 1`); err != nil {
		rollback(tx)
		return err
	}
	return tx.Commit()
}

func (r *PostgresRepository) insertZones(ctx context.Context, tx *sql.Tx, accountID string, zones []domain.Zone) error {
	for _, zone := range zones {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cf_zones (id, account_id, zone_id, domain) VALUES ($1, $2, $3, $4)`,
			zone.ID, accountID, zone.ZoneID, zone.Domain); err != nil {
			return mapPgError(err)
		}
		if err := r.insertSubdomains(ctx, tx, zone.ID, zone.Subdomains); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) insertSubdomains(ctx context.Context, tx *sql.Tx, zoneRef string, subdomains []domain.Subdomain) error {
	for _, sub := range subdomains {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cf_subdomains (id, zone_ref, name, proxied, ttl) VALUES ($1, $2, $3, $4, $5)`,
			sub.ID, zoneRef, sub.Name, sub.Proxied, sub.TTL); err != nil {
			return mapPgError(err)
		}
	}
	return nil
}

func (r *PostgresRepository) loadAccounts(ctx context.Context, q querier) ([]domain.Account, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, api_token, api_key, account_email FROM cf_accounts ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		accounts[i].Zones, err = r.loadZones(ctx, q, accounts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (r *PostgresRepository) loadAccount(ctx context.Context, q querier, id string) (*domain.Account, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, api_token, api_key, account_email FROM cf_accounts WHERE id::text = $1`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("account '%s'", id)
	}
	if err != nil {
		return nil, err
	}

	account.Zones, err = r.loadZones(ctx, q, account.ID)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *PostgresRepository) loadZones(ctx context.Context, q querier, accountID string) ([]domain.Zone, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, zone_id, domain FROM cf_zones WHERE account_id::text = $1 ORDER BY position`, accountID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var zones []domain.Zone
	for rows.Next() {
		var zone domain.Zone
		if err := rows.Scan(&zone.ID, &zone.ZoneID, &zone.Domain); err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range zones {
		zones[i].Subdomains, err = r.loadSubdomains(ctx, q, zones[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return zones, nil
}

func (r *PostgresRepository) loadSubdomains(ctx context.Context, q querier, zoneRef string) ([]domain.Subdomain, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, proxied, ttl FROM cf_subdomains WHERE zone_ref::text = $1 ORDER BY position`, zoneRef)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var subdomains []domain.Subdomain
	for rows.Next() {
		var sub domain.Subdomain
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Proxied, &sub.TTL); err != nil {
			return nil, err
		}
		subdomains = append(subdomains, sub)
	}
	return subdomains, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var account domain.Account
	var token, key, email string
	if err := row.Scan(&account.ID, &token, &key, &email); err != nil {
		return domain.Account{}, err
	}
	account.Authentication.APIToken = token
	if key != "" || email != "" {
		account.Authentication.APIKey = &domain.APIKeyAuth{APIKey: key, AccountEmail: email}
	}
	return account, nil
}

func credentialColumns(auth domain.Authentication) (token, key, email string) {
	token = auth.APIToken
	if auth.APIKey != nil {
		key = auth.APIKey.APIKey
		email = auth.APIKey.AccountEmail
	}
	return token, key, email
}

// mapPgError translates a unique-index violation into the domain conflict
// error so callers see the same taxonomy as with the memory store.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.Detail, domain.ErrConflict)
	}
	return err
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("failed to rollback transaction: %v", err)
	}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("failed to close rows: %v", err)
	}
}
