package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry(Defaults())

	def := r.Lookup("certificado_curva")
	require.NotNil(t, def)
	assert.Equal(t, ModeHorizontalPivot, def.Mode)
	assert.Nil(t, r.Lookup(""))
	assert.Nil(t, r.Lookup("desconocido"))
}

func TestDef_Column(t *testing.T) {
	def := NewRegistry(Defaults()).Lookup("certificado_items")
	require.NotNil(t, def)
	assert.NotNil(t, def.Column("monto"))
	assert.Nil(t, def.Column("inexistente"))
}

func TestLoadFile_MergesOverDefaults(t *testing.T) {
	doc := `
templates:
  - id: certificado_items
    label: Items override
    mode: row-per-record
    columns:
      - key: item
        label: Item
        data_type: text
  - id: acta_medicion
    label: Acta de Medición
    mode: row-per-record
    columns:
      - key: partida
        label: Partida
        data_type: text
`
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	r, err := LoadFile(path)
	require.NoError(t, err)

	override := r.Lookup("certificado_items")
	require.NotNil(t, override)
	assert.Equal(t, "Items override", override.Label)
	assert.Len(t, override.Columns, 1)

	assert.NotNil(t, r.Lookup("acta_medicion"))
	assert.NotNil(t, r.Lookup("certificado_resumen")) // untouched default
}

func TestLoadFile_MissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates:\n  - label: sin id\n"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
