package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedCertSchema(t *testing.T, st *SQLiteStore) {
	t.Helper()
	tables := []model.TargetTable{
		{ID: "certs", Name: "certificados", Label: "Certificados", TemplateProfile: "certificado"},
		{ID: "obras", Name: "obras", Label: "Obras"},
	}
	columns := []model.TargetColumn{
		{ID: "c1", TableID: "certs", FieldKey: "monto", Label: "Monto Total", DataType: model.TypeNumeric,
			Config: model.ColumnConfig{Keywords: []string{"monto", "total"}, Scope: model.ScopeParent}},
		{ID: "c2", TableID: "certs", FieldKey: "obra", Label: "Obra", DataType: model.TypeText},
	}
	require.NoError(t, st.SeedSchema(context.Background(), tables, columns))
}

func TestSQLite_SeedAndReadSchema(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedCertSchema(t, st)
	ctx := context.Background()

	tables, err := st.TargetTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "certs", tables[0].ID)

	tbl, err := st.TargetTable(ctx, "certs")
	require.NoError(t, err)
	require.NotNil(t, tbl)
	assert.Equal(t, "certificado", tbl.TemplateProfile)

	columns, err := st.Columns(ctx, "certs")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, []string{"monto", "total"}, columns[0].Config.Keywords)
	assert.Equal(t, model.ScopeParent, columns[0].Config.Scope)
}

func TestSQLite_SeedSchema_UpsertOverwrites(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedCertSchema(t, st)
	ctx := context.Background()

	require.NoError(t, st.SeedSchema(ctx,
		[]model.TargetTable{{ID: "certs", Name: "certificados", Label: "Certificados v2"}}, nil))

	tbl, err := st.TargetTable(ctx, "certs")
	require.NoError(t, err)
	require.NotNil(t, tbl)
	assert.Equal(t, "Certificados v2", tbl.Label)

	tables, err := st.TargetTables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}

func TestSQLite_TargetTable_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	tbl, err := st.TargetTable(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, tbl)
}

func TestSQLite_ReplaceRows_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedCertSchema(t, st)
	ctx := context.Background()

	rows := []model.ExtractedRow{
		{TargetTableID: "certs", Data: map[string]any{"monto": 100.0, "obra": "Ruta 40"},
			Provenance: model.Provenance{SourceBucket: "docs", SourceFileName: "cert.xlsx"}},
		{TargetTableID: "certs", Data: map[string]any{"monto": 200.0}},
	}

	n, err := st.ReplaceRows(ctx, "certs", "docs/cert.xlsx", rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-import of the same document replaces, never accumulates.
	n, err = st.ReplaceRows(ctx, "certs", "docs/cert.xlsx", rows[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var count int
	err = st.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM extracted_rows WHERE table_id = ? AND source_path = ?`,
		"certs", "docs/cert.xlsx").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	status, err := st.ImportStatus(ctx, "certs", "docs/cert.xlsx")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, 1, status.RowCount)
	assert.False(t, status.ImportedAt.IsZero())
}

func TestSQLite_ReplaceRows_ScopedToSourcePath(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedCertSchema(t, st)
	ctx := context.Background()

	_, err := st.ReplaceRows(ctx, "certs", "docs/a.xlsx",
		[]model.ExtractedRow{{TargetTableID: "certs", Data: map[string]any{"monto": 1.0}}})
	require.NoError(t, err)
	_, err = st.ReplaceRows(ctx, "certs", "docs/b.xlsx",
		[]model.ExtractedRow{{TargetTableID: "certs", Data: map[string]any{"monto": 2.0}}})
	require.NoError(t, err)

	// Replacing one document leaves the other's rows untouched.
	_, err = st.ReplaceRows(ctx, "certs", "docs/a.xlsx", nil)
	require.NoError(t, err)

	var count int
	err = st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM extracted_rows WHERE table_id = ?`, "certs").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLite_ImportStatus_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedCertSchema(t, st)

	status, err := st.ImportStatus(context.Background(), "certs", "docs/never.xlsx")
	require.NoError(t, err)
	assert.Nil(t, status)
}
