package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/medatlas/provider-cli/internal/db"
	"github.com/medatlas/provider-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS providers (
	id                TEXT PRIMARY KEY,
	npi               TEXT NOT NULL DEFAULT '',
	first_name        TEXT NOT NULL DEFAULT '',
	last_name         TEXT NOT NULL DEFAULT '',
	organization_name TEXT NOT NULL DEFAULT '',
	provider_type     TEXT NOT NULL DEFAULT '',
	specialty         TEXT NOT NULL DEFAULT '',
	address_line1     TEXT NOT NULL DEFAULT '',
	address_line2     TEXT NOT NULL DEFAULT '',
	city              TEXT NOT NULL DEFAULT '',
	state             TEXT NOT NULL DEFAULT '',
	zip_code          TEXT NOT NULL DEFAULT '',
	phone             TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	website           TEXT NOT NULL DEFAULT '',
	license_number    TEXT NOT NULL DEFAULT '',
	license_state     TEXT NOT NULL DEFAULT '',
	practice_name     TEXT NOT NULL DEFAULT '',
	source_file       TEXT NOT NULL DEFAULT '',
	document_path     TEXT NOT NULL DEFAULT '',
	confidence_score  INTEGER NOT NULL DEFAULT 0,
	risk_score        INTEGER NOT NULL DEFAULT 0,
	validation_status TEXT NOT NULL DEFAULT 'pending',
	merged_from       JSONB,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS discrepancies (
	id               TEXT PRIMARY KEY,
	provider_id      TEXT NOT NULL REFERENCES providers(id),
	field_name       TEXT NOT NULL,
	original_value   TEXT NOT NULL DEFAULT '',
	reconciled_value TEXT NOT NULL DEFAULT '',
	source           TEXT NOT NULL DEFAULT '',
	risk_level       TEXT NOT NULL DEFAULT 'medium',
	status           TEXT NOT NULL DEFAULT 'open',
	notes            TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL DEFAULT '',
	provider_id TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_providers_npi ON providers(npi);
CREATE INDEX IF NOT EXISTS idx_providers_status ON providers(validation_status);
CREATE INDEX IF NOT EXISTS idx_providers_state ON providers(state);
CREATE INDEX IF NOT EXISTS idx_discrepancies_provider_id ON discrepancies(provider_id);
CREATE INDEX IF NOT EXISTS idx_events_provider_id ON events(provider_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertProvider(ctx context.Context, rec *model.FinalRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	mergedFrom, err := json.Marshal(rec.MergedFrom)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal merged_from")
	}

	args := providerArgs(&rec.ProviderRecord)
	args = append(args, string(mergedFrom), now, now)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO providers (`+providerColumnsWithMergedFrom+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		ON CONFLICT (id) DO UPDATE SET
			npi = EXCLUDED.npi,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			organization_name = EXCLUDED.organization_name,
			provider_type = EXCLUDED.provider_type,
			specialty = EXCLUDED.specialty,
			address_line1 = EXCLUDED.address_line1,
			address_line2 = EXCLUDED.address_line2,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			website = EXCLUDED.website,
			license_number = EXCLUDED.license_number,
			license_state = EXCLUDED.license_state,
			practice_name = EXCLUDED.practice_name,
			source_file = EXCLUDED.source_file,
			document_path = EXCLUDED.document_path,
			confidence_score = EXCLUDED.confidence_score,
			risk_score = EXCLUDED.risk_score,
			validation_status = EXCLUDED.validation_status,
			merged_from = EXCLUDED.merged_from,
			updated_at = EXCLUDED.updated_at`,
		args...,
	)
	return eris.Wrapf(err, "postgres: upsert provider %s", rec.ID)
}

// insertColumns is the column list used for bulk provider loads.
var insertColumns = []string{
	"id", "npi", "first_name", "last_name", "organization_name", "provider_type",
	"specialty", "address_line1", "address_line2", "city", "state", "zip_code",
	"phone", "email", "website", "license_number", "license_state", "practice_name",
	"source_file", "document_path", "confidence_score", "risk_score",
	"validation_status", "created_at", "updated_at",
}

// InsertProviders bulk-loads imported records with a COPY-backed upsert,
// so re-importing the same file is idempotent.
func (s *PostgresStore) InsertProviders(ctx context.Context, recs []model.ProviderRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.ValidationStatus == "" {
			rec.ValidationStatus = string(model.StatusPending)
		}
		args := providerArgs(rec)
		args = append(args, now, now)
		rows = append(rows, args)
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "providers",
		Columns:      insertColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: bulk insert providers")
	}
	return int(n), nil
}

func (s *PostgresStore) GetProvider(ctx context.Context, id string) (*model.ProviderRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE id = $1`, id)
	rec, err := scanProvider(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get provider %s", id)
	}
	return rec, nil
}

func (s *PostgresStore) ListProviders(ctx context.Context, filter ProviderFilter) ([]model.ProviderRecord, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND validation_status = $` + strconv.Itoa(len(args))
	}
	if filter.State != "" {
		args = append(args, filter.State)
		query += ` AND state = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list providers")
	}
	defer rows.Close()

	var out []model.ProviderRecord
	for rows.Next() {
		rec, err := scanProvider(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan provider")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate providers")
}

func (s *PostgresStore) InsertDiscrepancies(ctx context.Context, discrepancies []model.Discrepancy) error {
	if len(discrepancies) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(discrepancies))
	for _, d := range discrepancies {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = time.Now().UTC()
		}
		rows = append(rows, []any{
			d.ID, d.ProviderID, d.Field, d.OriginalValue, d.ReconciledValue,
			string(d.Source), string(d.RiskLevel), string(d.Status), d.Notes, d.CreatedAt,
		})
	}

	_, err := db.CopyFrom(ctx, s.pool, "discrepancies", []string{
		"id", "provider_id", "field_name", "original_value", "reconciled_value",
		"source", "risk_level", "status", "notes", "created_at",
	}, rows)
	return eris.Wrap(err, "postgres: insert discrepancies")
}

func (s *PostgresStore) ListDiscrepancies(ctx context.Context, providerID string) ([]model.Discrepancy, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, provider_id, field_name, original_value, reconciled_value,
			source, risk_level, status, notes, created_at
		FROM discrepancies WHERE provider_id = $1 ORDER BY created_at`,
		providerID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list discrepancies %s", providerID)
	}
	defer rows.Close()

	var out []model.Discrepancy
	for rows.Next() {
		var d model.Discrepancy
		var source, risk, status string
		if err := rows.Scan(&d.ID, &d.ProviderID, &d.Field, &d.OriginalValue,
			&d.ReconciledValue, &source, &risk, &status, &d.Notes, &d.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan discrepancy")
		}
		d.Source = model.SourceTag(source)
		d.RiskLevel = model.RiskLevel(risk)
		d.Status = model.DiscrepancyStatus(status)
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate discrepancies")
}

func (s *PostgresStore) LogEvent(ctx context.Context, event model.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (id, type, message, source, provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.Type, event.Message, event.Source, event.ProviderID, event.CreatedAt,
	)
	return eris.Wrap(err, "postgres: log event")
}
