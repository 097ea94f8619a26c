// Package store persists target schema metadata, extracted rows and import
// status. Two backends implement the same interface: PostgreSQL for server
// deployments and SQLite for single-machine CLI use.
package store

import (
	"context"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

// Store is the persistence interface of the ingestion engine.
type Store interface {
	// Schema metadata. Definitions are seeded by migration/config and
	// read-only during imports.
	TargetTables(ctx context.Context) ([]model.TargetTable, error)
	TargetTable(ctx context.Context, tableID string) (*model.TargetTable, error)
	Columns(ctx context.Context, tableID string) ([]model.TargetColumn, error)
	SeedSchema(ctx context.Context, tables []model.TargetTable, columns []model.TargetColumn) error

	// ReplaceRows atomically swaps the rows previously extracted from the
	// same (table, source path) pair with the new batch and records the
	// import status, making re-imports idempotent. Returns the number of
	// rows inserted.
	ReplaceRows(ctx context.Context, tableID, sourcePath string, rows []model.ExtractedRow) (int, error)

	// ImportStatus returns the latest import outcome for the pair, or nil
	// when the document was never imported into the table.
	ImportStatus(ctx context.Context, tableID, sourcePath string) (*model.ImportStatus, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
