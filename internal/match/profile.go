package match

import (
	"strings"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/textnorm"
)

const (
	// GenericThreshold is the minimum score a header must reach to be
	// assigned to a column of a generic table.
	GenericThreshold = 0.15
	// CertificateThreshold is the looser floor for recognized document
	// families, where fixed layouts justify accepting weaker matches.
	CertificateThreshold = 0.08
	// profileBoost is added when a profile recognizes the column's semantic
	// category and the header hits that category's keyword bag.
	profileBoost = 0.2
)

// category is a semantic column family a profile can recognize.
type category int

const (
	catNone category = iota
	catMoney
	catDate
	catQuantity
	catDescription
)

// Profile tunes matching for a document family: its acceptance threshold
// and, optionally, category keyword bags that grant a score boost.
type Profile struct {
	Name      string
	Threshold float64
	// bags maps a semantic category to header keywords typical for the
	// family's documents.
	bags map[category][]string
}

// Generic is the default profile for tables without a recognized layout.
var Generic = Profile{Name: "generic", Threshold: GenericThreshold}

// Certificate is the profile for the certificate document family.
var Certificate = Profile{
	Name:      "certificado",
	Threshold: CertificateThreshold,
	bags: map[category][]string{
		catMoney:       {"monto", "importe", "precio", "total", "parcial", "certificado"},
		catDate:        {"fecha", "periodo", "mes", "vencimiento"},
		catQuantity:    {"cantidad", "cant", "unidades", "computo"},
		catDescription: {"descripcion", "detalle", "concepto", "designacion", "item"},
	},
}

// ForTable returns the profile to use for a table: Certificate when the
// table names a template profile, Generic otherwise.
func ForTable(tbl model.TargetTable) Profile {
	if tbl.TemplateProfile != "" {
		return Certificate
	}
	return Generic
}

// Boost returns the profile boost for (column, header), or 0. The boost
// fires when the profile can categorize the column from its label/key and
// the header textually hits the category's keyword bag.
func (p Profile) Boost(col model.TargetColumn, header string) float64 {
	if len(p.bags) == 0 {
		return 0
	}
	cat := categorize(col)
	if cat == catNone {
		return 0
	}
	h := textnorm.Normalize(header)
	if h == "" {
		return 0
	}
	for _, kw := range p.bags[cat] {
		if strings.Contains(h, kw) {
			return profileBoost
		}
	}
	return 0
}

// categorize infers the semantic category of a column from its label and
// field key.
func categorize(col model.TargetColumn) category {
	text := textnorm.Normalize(col.Label) + " " + textnorm.Normalize(strings.ReplaceAll(col.FieldKey, "_", " "))
	switch {
	case containsAny(text, "monto", "importe", "precio", "costo", "total"):
		return catMoney
	case containsAny(text, "fecha", "periodo", "vencimiento", "date"):
		return catDate
	case containsAny(text, "cantidad", "unidades", "qty"):
		return catQuantity
	case containsAny(text, "descripcion", "detalle", "concepto", "observ"):
		return catDescription
	default:
		return catNone
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
