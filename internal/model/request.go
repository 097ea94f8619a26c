package model

// StoredRef points at a previously uploaded document in object storage.
type StoredRef struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

// TableRequest carries the per-table options of one import request.
type TableRequest struct {
	TableID string `json:"table_id"`
	// SheetPin forces a sheet by name, skipping selection.
	SheetPin string `json:"sheet_pin,omitempty"`
	// Mappings is an explicit fieldKey → header assignment. When present it
	// replaces automatic matching for this table.
	Mappings map[string]string `json:"mappings,omitempty"`
	// Overrides supplies literal values per fieldKey.
	Overrides map[string]string `json:"overrides,omitempty"`
}

// ImportRequest is the single inbound operation: import one spreadsheet for
// N target tables. Exactly one of File or Source must be set.
type ImportRequest struct {
	FileName string         `json:"file_name"`
	File     []byte         `json:"-"`
	Source   *StoredRef     `json:"source,omitempty"`
	Tables   []TableRequest `json:"tables"`
	Preview  bool           `json:"preview"`
}

// TableResult is the per-table slice of an import response.
type TableResult struct {
	TableID   string `json:"table_id"`
	TableName string `json:"table_name"`
	Inserted  int    `json:"inserted"`
	SheetName string `json:"sheet_name,omitempty"`
	// Preview-only fields.
	Mappings   []ColumnMapping  `json:"mappings,omitempty"`
	SampleRows []map[string]any `json:"sample_rows,omitempty"`
	// Error carries a per-table soft-failure or persistence message; sibling
	// tables are unaffected.
	Error string `json:"error,omitempty"`
}

// ImportResponse aggregates the per-table outcomes of one request.
type ImportResponse struct {
	Success       bool          `json:"success"`
	Preview       bool          `json:"preview"`
	FileName      string        `json:"file_name"`
	TotalInserted int           `json:"total_inserted"`
	Tables        []TableResult `json:"tables"`
}
