package model

// ColumnMapping links one target column to the source header it will read
// from. MatchedHeader is nil when no header cleared the profile threshold.
// Within one mapping set a header is consumed by at most one column.
type ColumnMapping struct {
	Column        TargetColumn `json:"column"`
	MatchedHeader *string      `json:"matched_header"`
	Confidence    float64      `json:"confidence"`
	// ManualOverride is a caller-supplied literal value for this field. It is
	// applied by the extraction strategies, not by matching.
	ManualOverride string `json:"manual_override,omitempty"`
}

// Mapped reports whether the column was assigned a source header.
func (m *ColumnMapping) Mapped() bool {
	return m.MatchedHeader != nil && *m.MatchedHeader != ""
}

// Header returns the matched header label, or "".
func (m *ColumnMapping) Header() string {
	if m.MatchedHeader == nil {
		return ""
	}
	return *m.MatchedHeader
}

// Provenance identifies the uploaded document a row was extracted from.
// (table, Path) is the idempotence key for re-imports.
type Provenance struct {
	SourceBucket   string `json:"source_bucket"`
	SourcePath     string `json:"source_path"`
	SourceFileName string `json:"source_file_name"`
}

// ExtractedRow is one output row produced by an extraction strategy.
type ExtractedRow struct {
	TargetTableID string         `json:"target_table_id"`
	Data          map[string]any `json:"data"`
	Provenance    Provenance     `json:"provenance"`
}
