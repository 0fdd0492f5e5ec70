package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/medatlas/provider-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	merged_from       TEXT,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
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
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL DEFAULT '',
	provider_id TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_providers_npi ON providers(npi);
CREATE INDEX IF NOT EXISTS idx_providers_status ON providers(validation_status);
CREATE INDEX IF NOT EXISTS idx_providers_state ON providers(state);
CREATE INDEX IF NOT EXISTS idx_discrepancies_provider_id ON discrepancies(provider_id);
CREATE INDEX IF NOT EXISTS idx_events_provider_id ON events(provider_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// providerColumns is the column order shared by the scan and write paths.
const providerColumns = `id, npi, first_name, last_name, organization_name, provider_type,
	specialty, address_line1, address_line2, city, state, zip_code, phone, email,
	website, license_number, license_state, practice_name, source_file, document_path,
	confidence_score, risk_score, validation_status, created_at, updated_at`

func providerArgs(rec *model.ProviderRecord) []any {
	return []any{
		rec.ID, rec.NPI, rec.FirstName, rec.LastName, rec.OrganizationName,
		rec.ProviderType, rec.Specialty, rec.AddressLine1, rec.AddressLine2,
		rec.City, rec.State, rec.ZipCode, rec.Phone, rec.Email, rec.Website,
		rec.LicenseNumber, rec.LicenseState, rec.PracticeName, rec.SourceFile,
		rec.DocumentPath, rec.ConfidenceScore, rec.RiskScore, rec.ValidationStatus,
	}
}

func scanProvider(row interface{ Scan(...any) error }) (*model.ProviderRecord, error) {
	var rec model.ProviderRecord
	err := row.Scan(
		&rec.ID, &rec.NPI, &rec.FirstName, &rec.LastName, &rec.OrganizationName,
		&rec.ProviderType, &rec.Specialty, &rec.AddressLine1, &rec.AddressLine2,
		&rec.City, &rec.State, &rec.ZipCode, &rec.Phone, &rec.Email, &rec.Website,
		&rec.LicenseNumber, &rec.LicenseState, &rec.PracticeName, &rec.SourceFile,
		&rec.DocumentPath, &rec.ConfidenceScore, &rec.RiskScore, &rec.ValidationStatus,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLiteStore) UpsertProvider(ctx context.Context, rec *model.FinalRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	mergedFrom, err := json.Marshal(rec.MergedFrom)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal merged_from")
	}

	args := providerArgs(&rec.ProviderRecord)
	args = append(args, string(mergedFrom), now, now)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO providers (`+providerColumnsWithMergedFrom+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			npi = excluded.npi,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			organization_name = excluded.organization_name,
			provider_type = excluded.provider_type,
			specialty = excluded.specialty,
			address_line1 = excluded.address_line1,
			address_line2 = excluded.address_line2,
			city = excluded.city,
			state = excluded.state,
			zip_code = excluded.zip_code,
			phone = excluded.phone,
			email = excluded.email,
			website = excluded.website,
			license_number = excluded.license_number,
			license_state = excluded.license_state,
			practice_name = excluded.practice_name,
			source_file = excluded.source_file,
			document_path = excluded.document_path,
			confidence_score = excluded.confidence_score,
			risk_score = excluded.risk_score,
			validation_status = excluded.validation_status,
			merged_from = excluded.merged_from,
			updated_at = excluded.updated_at`,
		args...,
	)
	return eris.Wrapf(err, "sqlite: upsert provider %s", rec.ID)
}

const providerColumnsWithMergedFrom = `id, npi, first_name, last_name, organization_name, provider_type,
	specialty, address_line1, address_line2, city, state, zip_code, phone, email,
	website, license_number, license_state, practice_name, source_file, document_path,
	confidence_score, risk_score, validation_status, merged_from, created_at, updated_at`

func (s *SQLiteStore) InsertProviders(ctx context.Context, recs []model.ProviderRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO providers (`+providerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	inserted := 0
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
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return inserted, eris.Wrapf(err, "sqlite: insert provider %s", rec.ID)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert")
	}
	return inserted, nil
}

func (s *SQLiteStore) GetProvider(ctx context.Context, id string) (*model.ProviderRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE id = ?`, id)
	rec, err := scanProvider(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: provider %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get provider %s", id)
	}
	return rec, nil
}

func (s *SQLiteStore) ListProviders(ctx context.Context, filter ProviderFilter) ([]model.ProviderRecord, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND validation_status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.State != "" {
		query += ` AND state = ?`
		args = append(args, filter.State)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list providers")
	}
	defer rows.Close()

	var out []model.ProviderRecord
	for rows.Next() {
		rec, err := scanProvider(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan provider")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate providers")
}

func (s *SQLiteStore) InsertDiscrepancies(ctx context.Context, discrepancies []model.Discrepancy) error {
	if len(discrepancies) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range discrepancies {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO discrepancies (id, provider_id, field_name, original_value,
				reconciled_value, source, risk_level, status, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.ProviderID, d.Field, d.OriginalValue, d.ReconciledValue,
			string(d.Source), string(d.RiskLevel), string(d.Status), d.Notes, d.CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert discrepancy %s/%s", d.ProviderID, d.Field)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit discrepancies")
}

func (s *SQLiteStore) ListDiscrepancies(ctx context.Context, providerID string) ([]model.Discrepancy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, provider_id, field_name, original_value, reconciled_value,
			source, risk_level, status, notes, created_at
		FROM discrepancies WHERE provider_id = ? ORDER BY created_at`,
		providerID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list discrepancies %s", providerID)
	}
	defer rows.Close()

	var out []model.Discrepancy
	for rows.Next() {
		var d model.Discrepancy
		var source, risk, status string
		if err := rows.Scan(&d.ID, &d.ProviderID, &d.Field, &d.OriginalValue,
			&d.ReconciledValue, &source, &risk, &status, &d.Notes, &d.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan discrepancy")
		}
		d.Source = model.SourceTag(source)
		d.RiskLevel = model.RiskLevel(risk)
		d.Status = model.DiscrepancyStatus(status)
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate discrepancies")
}

func (s *SQLiteStore) LogEvent(ctx context.Context, event model.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, type, message, source, provider_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.Type, event.Message, event.Source, event.ProviderID, event.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: log event")
}
