package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
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
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	required  INTEGER NOT NULL DEFAULT 0,
	config    TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS extracted_rows (
	id               TEXT PRIMARY KEY,
	table_id         TEXT NOT NULL REFERENCES target_tables(id),
	data             TEXT NOT NULL,
	source_bucket    TEXT NOT NULL DEFAULT '',
	source_path      TEXT NOT NULL,
	source_file_name TEXT NOT NULL DEFAULT '',
	imported_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS import_status (
	table_id    TEXT NOT NULL REFERENCES target_tables(id),
	source_path TEXT NOT NULL,
	row_count   INTEGER NOT NULL DEFAULT 0,
	imported_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (table_id, source_path)
);

CREATE INDEX IF NOT EXISTS idx_target_columns_table_id ON target_columns(table_id);
CREATE INDEX IF NOT EXISTS idx_extracted_rows_table_id ON extracted_rows(table_id);
CREATE INDEX IF NOT EXISTS idx_extracted_rows_source ON extracted_rows(table_id, source_path);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) TargetTables(ctx context.Context) ([]model.TargetTable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, label, template_profile, pinned_sheet FROM target_tables ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tables")
	}
	defer rows.Close()

	var tables []model.TargetTable
	for rows.Next() {
		var t model.TargetTable
		if err := rows.Scan(&t.ID, &t.Name, &t.Label, &t.TemplateProfile, &t.PinnedSheet); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan table")
		}
		tables = append(tables, t)
	}
	return tables, eris.Wrap(rows.Err(), "sqlite: list tables")
}

func (s *SQLiteStore) TargetTable(ctx context.Context, tableID string) (*model.TargetTable, error) {
	var t model.TargetTable
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, label, template_profile, pinned_sheet FROM target_tables WHERE id = ?`,
		tableID,
	).Scan(&t.ID, &t.Name, &t.Label, &t.TemplateProfile, &t.PinnedSheet)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get table %s", tableID)
	}
	return &t, nil
}

func (s *SQLiteStore) Columns(ctx context.Context, tableID string) ([]model.TargetColumn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, table_id, field_key, label, data_type, required, config FROM target_columns WHERE table_id = ? ORDER BY id`,
		tableID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list columns %s", tableID)
	}
	defer rows.Close()

	var columns []model.TargetColumn
	for rows.Next() {
		var c model.TargetColumn
		var configJSON string
		if err := rows.Scan(&c.ID, &c.TableID, &c.FieldKey, &c.Label, &c.DataType, &c.Required, &configJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan column")
		}
		if configJSON != "" {
			if err := json.Unmarshal([]byte(configJSON), &c.Config); err != nil {
				return nil, eris.Wrapf(err, "sqlite: unmarshal column config %s", c.ID)
			}
		}
		columns = append(columns, c)
	}
	return columns, eris.Wrapf(rows.Err(), "sqlite: list columns %s", tableID)
}

func (s *SQLiteStore) SeedSchema(ctx context.Context, tables []model.TargetTable, columns []model.TargetColumn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: seed: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, t := range tables {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO target_tables (id, name, label, template_profile, pinned_sheet) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, label = excluded.label, template_profile = excluded.template_profile, pinned_sheet = excluded.pinned_sheet`,
			t.ID, t.Name, t.Label, t.TemplateProfile, t.PinnedSheet,
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed table %s", t.ID)
		}
	}
	for _, c := range columns {
		configJSON, err := json.Marshal(c.Config)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal column config %s", c.ID)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO target_columns (id, table_id, field_key, label, data_type, required, config) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET table_id = excluded.table_id, field_key = excluded.field_key, label = excluded.label, data_type = excluded.data_type, required = excluded.required, config = excluded.config`,
			c.ID, c.TableID, c.FieldKey, c.Label, string(c.DataType), c.Required, string(configJSON),
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed column %s", c.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: seed: commit tx")
}

func (s *SQLiteStore) ReplaceRows(ctx context.Context, tableID, sourcePath string, rows []model.ExtractedRow) (int, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: replace rows: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM extracted_rows WHERE table_id = ? AND source_path = ?`,
		tableID, sourcePath,
	); err != nil {
		return 0, eris.Wrapf(err, "sqlite: delete prior rows %s", tableID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO extracted_rows (id, table_id, data, source_bucket, source_path, source_file_name, imported_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range rows {
		dataJSON, err := json.Marshal(r.Data)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal row for %s", tableID)
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), tableID, string(dataJSON),
			r.Provenance.SourceBucket, sourcePath, r.Provenance.SourceFileName, now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert row %s", tableID)
		}
		inserted++
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO import_status (table_id, source_path, row_count, imported_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(table_id, source_path) DO UPDATE SET row_count = excluded.row_count, imported_at = excluded.imported_at`,
		tableID, sourcePath, inserted, now,
	); err != nil {
		return 0, eris.Wrapf(err, "sqlite: upsert import status %s", tableID)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: replace rows: commit tx")
	}
	return inserted, nil
}

func (s *SQLiteStore) ImportStatus(ctx context.Context, tableID, sourcePath string) (*model.ImportStatus, error) {
	var st model.ImportStatus
	err := s.db.QueryRowContext(ctx,
		`SELECT table_id, source_path, row_count, imported_at FROM import_status WHERE table_id = ? AND source_path = ?`,
		tableID, sourcePath,
	).Scan(&st.TableID, &st.SourcePath, &st.RowCount, &st.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get import status %s", tableID)
	}
	return &st, nil
}
