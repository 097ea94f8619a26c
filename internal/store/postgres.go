package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ignacioLiotti/gec-sub001/internal/db"
	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations.
var preparedStatements = map[string]string{
	"list_tables":   `SELECT id, name, label, template_profile, pinned_sheet FROM target_tables ORDER BY id`,
	"get_table":     `SELECT id, name, label, template_profile, pinned_sheet FROM target_tables WHERE id = $1`,
	"list_columns":  `SELECT id, table_id, field_key, label, data_type, required, config FROM target_columns WHERE table_id = $1 ORDER BY id`,
	"delete_rows":   `DELETE FROM extracted_rows WHERE table_id = $1 AND source_path = $2`,
	"upsert_status": `INSERT INTO import_status (table_id, source_path, row_count, imported_at) VALUES ($1, $2, $3, $4) ON CONFLICT (table_id, source_path) DO UPDATE SET row_count = EXCLUDED.row_count, imported_at = EXCLUDED.imported_at`,
	"get_status":    `SELECT table_id, source_path, row_count, imported_at FROM import_status WHERE table_id = $1 AND source_path = $2`,
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

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS target_tables (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	label            TEXT NOT NULL,
	template_profile TEXT NOT NULL DEFAULT '',
	pinned_sheet     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS target_columns (
	id        TEXT PRIMARY KEY,
	table_id  TEXT NOT NULL REFERENCES target_tables(id),
	field_key TEXT NOT NULL,
	label     TEXT NOT NULL,
	data_type TEXT NOT NULL DEFAULT 'text',
	required  BOOLEAN NOT NULL DEFAULT FALSE,
	config    JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS extracted_rows (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	table_id         TEXT NOT NULL REFERENCES target_tables(id),
	data             JSONB NOT NULL,
	source_bucket    TEXT NOT NULL DEFAULT '',
	source_path      TEXT NOT NULL,
	source_file_name TEXT NOT NULL DEFAULT '',
	imported_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS import_status (
	table_id    TEXT NOT NULL REFERENCES target_tables(id),
	source_path TEXT NOT NULL,
	row_count   INTEGER NOT NULL DEFAULT 0,
	imported_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (table_id, source_path)
);

CREATE INDEX IF NOT EXISTS idx_target_columns_table_id ON target_columns(table_id);
CREATE INDEX IF NOT EXISTS idx_extracted_rows_table_id ON extracted_rows(table_id);
CREATE INDEX IF NOT EXISTS idx_extracted_rows_source ON extracted_rows(table_id, source_path);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) TargetTables(ctx context.Context) ([]model.TargetTable, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, label, template_profile, pinned_sheet FROM target_tables ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tables")
	}
	defer rows.Close()

	var tables []model.TargetTable
	for rows.Next() {
		var t model.TargetTable
		if err := rows.Scan(&t.ID, &t.Name, &t.Label, &t.TemplateProfile, &t.PinnedSheet); err != nil {
			return nil, eris.Wrap(err, "postgres: scan table")
		}
		tables = append(tables, t)
	}
	return tables, eris.Wrap(rows.Err(), "postgres: list tables")
}

func (s *PostgresStore) TargetTable(ctx context.Context, tableID string) (*model.TargetTable, error) {
	var t model.TargetTable
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, label, template_profile, pinned_sheet FROM target_tables WHERE id = $1`,
		tableID,
	).Scan(&t.ID, &t.Name, &t.Label, &t.TemplateProfile, &t.PinnedSheet)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get table %s", tableID)
	}
	return &t, nil
}

func (s *PostgresStore) Columns(ctx context.Context, tableID string) ([]model.TargetColumn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, table_id, field_key, label, data_type, required, config FROM target_columns WHERE table_id = $1 ORDER BY id`,
		tableID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list columns %s", tableID)
	}
	defer rows.Close()

	var columns []model.TargetColumn
	for rows.Next() {
		var c model.TargetColumn
		var configJSON []byte
		if err := rows.Scan(&c.ID, &c.TableID, &c.FieldKey, &c.Label, &c.DataType, &c.Required, &configJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan column")
		}
		if len(configJSON) > 0 {
			if err := json.Unmarshal(configJSON, &c.Config); err != nil {
				return nil, eris.Wrapf(err, "postgres: unmarshal column config %s", c.ID)
			}
		}
		columns = append(columns, c)
	}
	return columns, eris.Wrapf(rows.Err(), "postgres: list columns %s", tableID)
}

func (s *PostgresStore) SeedSchema(ctx context.Context, tables []model.TargetTable, columns []model.TargetColumn) error {
	tableRows := make([][]any, 0, len(tables))
	for _, t := range tables {
		tableRows = append(tableRows, []any{t.ID, t.Name, t.Label, t.TemplateProfile, t.PinnedSheet})
	}
	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "target_tables",
		Columns:      []string{"id", "name", "label", "template_profile", "pinned_sheet"},
		ConflictKeys: []string{"id"},
	}, tableRows); err != nil {
		return eris.Wrap(err, "postgres: seed tables")
	}

	columnRows := make([][]any, 0, len(columns))
	for _, c := range columns {
		configJSON, err := json.Marshal(c.Config)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal column config %s", c.ID)
		}
		columnRows = append(columnRows, []any{c.ID, c.TableID, c.FieldKey, c.Label, string(c.DataType), c.Required, configJSON})
	}
	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "target_columns",
		Columns:      []string{"id", "table_id", "field_key", "label", "data_type", "required", "config"},
		ConflictKeys: []string{"id"},
	}, columnRows); err != nil {
		return eris.Wrap(err, "postgres: seed columns")
	}
	return nil
}

func (s *PostgresStore) ReplaceRows(ctx context.Context, tableID, sourcePath string, rows []model.ExtractedRow) (int, error) {
	now := time.Now().UTC()

	copyRows := make([][]any, 0, len(rows))
	for _, r := range rows {
		dataJSON, err := json.Marshal(r.Data)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal row for %s", tableID)
		}
		copyRows = append(copyRows, []any{
			uuid.New().String(), tableID, dataJSON,
			r.Provenance.SourceBucket, sourcePath, r.Provenance.SourceFileName, now,
		})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: replace rows: begin tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM extracted_rows WHERE table_id = $1 AND source_path = $2`,
		tableID, sourcePath,
	); err != nil {
		return 0, eris.Wrapf(err, "postgres: delete prior rows %s", tableID)
	}

	n, err := db.CopyFromTx(ctx, tx, "extracted_rows",
		[]string{"id", "table_id", "data", "source_bucket", "source_path", "source_file_name", "imported_at"},
		copyRows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: insert rows %s", tableID)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO import_status (table_id, source_path, row_count, imported_at) VALUES ($1, $2, $3, $4) ON CONFLICT (table_id, source_path) DO UPDATE SET row_count = EXCLUDED.row_count, imported_at = EXCLUDED.imported_at`,
		tableID, sourcePath, int(n), now,
	); err != nil {
		return 0, eris.Wrapf(err, "postgres: upsert import status %s", tableID)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: replace rows: commit tx")
	}
	return int(n), nil
}

func (s *PostgresStore) ImportStatus(ctx context.Context, tableID, sourcePath string) (*model.ImportStatus, error) {
	var st model.ImportStatus
	err := s.pool.QueryRow(ctx,
		`SELECT table_id, source_path, row_count, imported_at FROM import_status WHERE table_id = $1 AND source_path = $2`,
		tableID, sourcePath,
	).Scan(&st.TableID, &st.SourcePath, &st.RowCount, &st.ImportedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get import status %s", tableID)
	}
	return &st, nil
}
