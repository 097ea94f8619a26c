package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignacioLiotti/gec-sub001/internal/ingest"
	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.SeedSchema(ctx,
		[]model.TargetTable{{ID: "obras", Name: "obras", Label: "Obras"}},
		[]model.TargetColumn{
			{ID: "o1", TableID: "obras", FieldKey: "obra", Label: "Obra", DataType: model.TypeText},
			{ID: "o2", TableID: "obras", FieldKey: "monto", Label: "Monto", DataType: model.TypeNumeric},
		}))

	engine := ingest.New(st, nil, nil, ingest.Options{})
	srv := httptest.NewServer(newMux(st, engine, 32<<20))
	t.Cleanup(srv.Close)
	return srv
}

func TestServe_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServe_Tables(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/tables")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tables []model.TargetTable
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tables))
	require.Len(t, tables, 1)
	assert.Equal(t, "obras", tables[0].ID)
}

func multipartImport(t *testing.T, url, fileName, content, request string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("request", request))
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/import", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func TestServe_ImportMultipart(t *testing.T) {
	srv := newTestServer(t)

	resp := multipartImport(t, srv.URL, "obras.csv",
		"Obra,Monto\nRuta 40,100\nPuente Sur,200\n",
		`{"tables":[{"table_id":"obras"}]}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out model.ImportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, 2, out.TotalInserted)

	// Status endpoint now reports the import.
	statusResp, err := http.Get(srv.URL + "/status/obras?source=obras.csv")
	require.NoError(t, err)
	defer statusResp.Body.Close()
	require.Equal(t, http.StatusOK, statusResp.StatusCode)

	var status model.ImportStatus
	require.NoError(t, json.NewDecoder(statusResp.Body).Decode(&status))
	assert.Equal(t, 2, status.RowCount)
}

func TestServe_ImportBadExtension(t *testing.T) {
	srv := newTestServer(t)

	resp := multipartImport(t, srv.URL, "obras.pdf", "x", `{"tables":[{"table_id":"obras"}]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServe_ImportUnreadable(t *testing.T) {
	srv := newTestServer(t)

	resp := multipartImport(t, srv.URL, "obras.xlsx", "not a workbook", `{"tables":[{"table_id":"obras"}]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServe_ImportTableErrorsYieldMultiStatus(t *testing.T) {
	srv := newTestServer(t)

	resp := multipartImport(t, srv.URL, "obras.csv",
		"Obra,Monto\nRuta 40,100\n",
		`{"tables":[{"table_id":"nope"}]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)
}

func TestServe_ImportJSONRequiresSource(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/import", "application/json",
		strings.NewReader(`{"tables":[{"table_id":"obras"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	// JSON body with neither inline file nor stored reference is invalid.
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServe_StatusMissingSourceParam(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/status/obras")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServe_StatusNeverImported(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/status/obras?source=never.csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
