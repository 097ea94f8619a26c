// Package template catalogs the fixed document layouts the operations team
// receives (certificate summaries, item tables, investment curves). Each
// definition describes one known table shape so matching can use tighter
// thresholds and fixed cell references instead of pure fuzzy scoring.
package template

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

// ExtractionMode selects the row-production algorithm for a template table.
type ExtractionMode string

const (
	ModeRowPerRecord    ExtractionMode = "row-per-record"
	ModeHorizontalPivot ExtractionMode = "horizontal-pivot"
)

// CellRef addresses a fixed cell in the source sheet, zero-based.
type CellRef struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

// Column describes one column of a template table layout.
type Column struct {
	Key      string            `yaml:"key" json:"key"`
	Label    string            `yaml:"label" json:"label"`
	DataType model.DataType    `yaml:"data_type" json:"data_type"`
	Keywords []string          `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Scope    model.ColumnScope `yaml:"scope,omitempty" json:"scope,omitempty"`
	// Cell, when set, is the primary source for document-summary extraction.
	Cell *CellRef `yaml:"cell,omitempty" json:"cell,omitempty"`
}

// Def is one cataloged document layout.
type Def struct {
	ID    string         `yaml:"id" json:"id"`
	Label string         `yaml:"label" json:"label"`
	Mode  ExtractionMode `yaml:"mode" json:"mode"`
	// SheetMarkers are normalized phrases whose presence in a sheet name
	// earns the sheet-name bonus during selection.
	SheetMarkers []string `yaml:"sheet_markers,omitempty" json:"sheet_markers,omitempty"`
	// MinRows/MaxRows bound the characteristic data-row count of this
	// layout; sheets inside the range earn the row-count bonus.
	MinRows int      `yaml:"min_rows,omitempty" json:"min_rows,omitempty"`
	MaxRows int      `yaml:"max_rows,omitempty" json:"max_rows,omitempty"`
	Columns []Column `yaml:"columns" json:"columns"`
}

// Column returns the template column with the given key, or nil.
func (d *Def) Column(key string) *Column {
	for i := range d.Columns {
		if d.Columns[i].Key == key {
			return &d.Columns[i]
		}
	}
	return nil
}

// Registry holds template definitions indexed by id.
type Registry struct {
	defs []*Def
	byID map[string]*Def
}

// NewRegistry indexes the given definitions.
func NewRegistry(defs []*Def) *Registry {
	r := &Registry{defs: defs, byID: make(map[string]*Def, len(defs))}
	for _, d := range defs {
		r.byID[d.ID] = d
	}
	return r
}

// Lookup returns the definition for a table's template profile, or nil for
// generic tables.
func (r *Registry) Lookup(id string) *Def {
	if id == "" {
		return nil
	}
	return r.byID[id]
}

// Defs returns all definitions in registration order.
func (r *Registry) Defs() []*Def { return r.defs }

// LoadFile reads template definitions from a YAML file and merges them over
// the built-in defaults (file definitions win on id collision).
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "template: read %s", path)
	}

	var doc struct {
		Templates []*Def `yaml:"templates"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrapf(err, "template: parse %s", path)
	}

	merged := NewRegistry(Defaults())
	for _, d := range doc.Templates {
		if d.ID == "" {
			return nil, eris.Errorf("template: definition without id in %s", path)
		}
		if _, exists := merged.byID[d.ID]; !exists {
			merged.defs = append(merged.defs, d)
		} else {
			for i, existing := range merged.defs {
				if existing.ID == d.ID {
					merged.defs[i] = d
					break
				}
			}
		}
		merged.byID[d.ID] = d
	}
	return merged, nil
}
