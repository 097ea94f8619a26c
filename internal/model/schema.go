// Package model defines the shared types of the ingestion engine: target
// schema metadata, normalized sheets, column mappings and extracted rows.
package model

import "time"

// DataType enumerates the value types a target column can declare.
type DataType string

const (
	TypeText    DataType = "text"
	TypeNumeric DataType = "numeric"
	TypeInteger DataType = "integer"
	TypeDate    DataType = "date"
)

// ColumnScope marks whether a column describes the whole document or one item.
type ColumnScope string

const (
	ScopeParent ColumnScope = "parent"
	ScopeItem   ColumnScope = "item"
)

// ColumnConfig holds optional per-column matching configuration.
type ColumnConfig struct {
	Keywords []string    `json:"keywords,omitempty"`
	Scope    ColumnScope `json:"scope,omitempty"`
}

// TargetColumn is one destination column of a target table. Definitions are
// owned by schema configuration and read-only to the engine.
type TargetColumn struct {
	ID       string       `json:"id"`
	TableID  string       `json:"table_id"`
	FieldKey string       `json:"field_key"`
	Label    string       `json:"label"`
	DataType DataType     `json:"data_type"`
	Required bool         `json:"required"`
	Config   ColumnConfig `json:"config"`
}

// TargetTable is a destination table plus its table-level import settings.
type TargetTable struct {
	ID string `json:"id"`
	// Name is the physical table identifier, Label the display name.
	Name  string `json:"name"`
	Label string `json:"label"`
	// TemplateProfile names a recognized document family (e.g. "certificado")
	// when the table corresponds to a cataloged fixed layout. Empty for
	// generic tables.
	TemplateProfile string `json:"template_profile,omitempty"`
	// PinnedSheet, when set, skips sheet selection entirely.
	PinnedSheet string `json:"pinned_sheet,omitempty"`
}

// ImportStatus records the outcome of the latest import of one document into
// one table, keyed by (table, source path).
type ImportStatus struct {
	TableID    string    `json:"table_id"`
	SourcePath string    `json:"source_path"`
	RowCount   int       `json:"row_count"`
	ImportedAt time.Time `json:"imported_at"`
}
