// Package ingest orchestrates one import: fetch or receive the document,
// parse it into sheets, pick a sheet and build mappings per target table,
// run the table's extraction strategy, and persist the result. Tables are
// processed concurrently and fail independently.
package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ignacioLiotti/gec-sub001/internal/extract"
	"github.com/ignacioLiotti/gec-sub001/internal/fetcher"
	"github.com/ignacioLiotti/gec-sub001/internal/match"
	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/sheet"
	"github.com/ignacioLiotti/gec-sub001/internal/store"
	"github.com/ignacioLiotti/gec-sub001/internal/template"
)

// ErrInvalidRequest marks caller mistakes: missing file, no tables, an
// unsupported extension. The serve layer maps it to a 400.
var ErrInvalidRequest = eris.New("ingest: invalid request")

// ErrUnreadableFile marks documents that were delivered but could not be
// parsed into any usable sheet.
var ErrUnreadableFile = eris.New("ingest: unreadable file")

var supportedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

// Options tunes engine behavior.
type Options struct {
	// MaxConcurrentTables bounds the per-table fan-out (default 4).
	MaxConcurrentTables int
	// PreviewRows caps sample rows in preview results (default 5).
	PreviewRows int
	// DefaultBucket is used for stored references that omit a bucket.
	DefaultBucket string
}

// Engine runs imports against a store, a document fetcher and a template
// registry.
type Engine struct {
	store     store.Store
	fetch     fetcher.Fetcher
	templates *template.Registry
	opts      Options
	log       *zap.Logger
}

// New creates an Engine. The fetcher may be nil when only inline uploads
// are expected.
func New(st store.Store, f fetcher.Fetcher, reg *template.Registry, opts Options) *Engine {
	if opts.MaxConcurrentTables <= 0 {
		opts.MaxConcurrentTables = 4
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 5
	}
	if reg == nil {
		reg = template.NewRegistry(template.Defaults())
	}
	return &Engine{
		store:     st,
		fetch:     f,
		templates: reg,
		opts:      opts,
		log:       zap.L().With(zap.String("component", "ingest")),
	}
}

// Import executes one import request. Request-level problems (bad input,
// unreadable document) surface as an error; per-table problems land in the
// matching TableResult and leave sibling tables untouched.
func (e *Engine) Import(ctx context.Context, req model.ImportRequest) (*model.ImportResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	data, fileName, prov, err := e.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}

	sheets, err := sheet.Parse(fileName, data)
	if err != nil {
		if errors.Is(err, sheet.ErrNoUsableSheets) {
			return nil, eris.Wrapf(ErrUnreadableFile, "%s: no usable sheets", fileName)
		}
		return nil, eris.Wrapf(ErrUnreadableFile, "%s: %s", fileName, err.Error())
	}

	e.log.Info("document parsed",
		zap.String("file", fileName),
		zap.Int("sheets", len(sheets)),
		zap.Int("tables", len(req.Tables)),
		zap.Bool("preview", req.Preview),
	)

	results := make([]model.TableResult, len(req.Tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.MaxConcurrentTables)
	for i, tr := range req.Tables {
		g.Go(func() error {
			results[i] = e.processTable(gctx, tr, sheets, prov, req.Preview)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "ingest: process tables")
	}

	resp := &model.ImportResponse{
		Success:  true,
		Preview:  req.Preview,
		FileName: fileName,
		Tables:   results,
	}
	for _, r := range results {
		resp.TotalInserted += r.Inserted
		if r.Error != "" {
			resp.Success = false
		}
	}
	return resp, nil
}

func validate(req model.ImportRequest) error {
	if len(req.File) == 0 && req.Source == nil {
		return eris.Wrap(ErrInvalidRequest, "no file and no stored reference")
	}
	if len(req.File) > 0 && req.Source != nil {
		return eris.Wrap(ErrInvalidRequest, "both inline file and stored reference given")
	}
	if len(req.Tables) == 0 {
		return eris.Wrap(ErrInvalidRequest, "no target tables")
	}

	name := req.FileName
	if name == "" && req.Source != nil {
		name = req.Source.Path
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !supportedExtensions[ext] {
		return eris.Wrapf(ErrInvalidRequest, "unsupported file extension %q", ext)
	}
	return nil
}

// resolveDocument returns the document bytes, its effective file name and
// the provenance to stamp on extracted rows.
func (e *Engine) resolveDocument(ctx context.Context, req model.ImportRequest) ([]byte, string, model.Provenance, error) {
	if len(req.File) > 0 {
		prov := model.Provenance{
			SourcePath:     req.FileName,
			SourceFileName: req.FileName,
		}
		return req.File, req.FileName, prov, nil
	}

	bucket := req.Source.Bucket
	if bucket == "" {
		bucket = e.opts.DefaultBucket
	}
	if e.fetch == nil {
		return nil, "", model.Provenance{}, eris.Wrap(ErrInvalidRequest, "stored reference given but no storage configured")
	}

	data, err := e.fetch.Fetch(ctx, bucket, req.Source.Path)
	if err != nil {
		return nil, "", model.Provenance{}, eris.Wrapf(err, "ingest: fetch %s/%s", bucket, req.Source.Path)
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = filepath.Base(req.Source.Path)
	}
	prov := model.Provenance{
		SourceBucket:   bucket,
		SourcePath:     req.Source.Path,
		SourceFileName: fileName,
	}
	return data, fileName, prov, nil
}

func (e *Engine) processTable(ctx context.Context, tr model.TableRequest, sheets []model.Sheet, prov model.Provenance, preview bool) model.TableResult {
	res := model.TableResult{TableID: tr.TableID}

	tbl, err := e.store.TargetTable(ctx, tr.TableID)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if tbl == nil {
		res.Error = "unknown target table"
		return res
	}
	res.TableName = tbl.Name

	columns, err := e.store.Columns(ctx, tr.TableID)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if len(columns) == 0 {
		res.Error = "target table has no columns"
		return res
	}

	var def *template.Def
	if tbl.TemplateProfile != "" {
		def = e.templates.Lookup(tbl.ID)
	}
	profile := match.ForTable(*tbl)

	s := e.selectSheet(sheets, tr, tbl, columns, def, profile)
	if s == nil {
		res.Error = "no sheet matches this table"
		return res
	}
	res.SheetName = s.Name

	explicit := len(tr.Mappings) > 0
	var mappings []model.ColumnMapping
	if explicit {
		mappings = match.ExplicitMappings(columns, tr.Mappings, tr.Overrides)
	} else {
		mappings = match.BuildMappings(columns, s.Headers, match.Options{
			Profile:   profile,
			Template:  def,
			Overrides: tr.Overrides,
		})
	}

	kind := extract.Select(*tbl, def, columns)
	in := extract.Input{
		TableID:    tbl.ID,
		Sheet:      s,
		Mappings:   mappings,
		Columns:    columns,
		Template:   def,
		Provenance: prov,
	}
	rows := extract.Run(kind, in)

	// Last resort before giving up on a table: loose name containment,
	// ignoring thresholds. Pivot extraction does not read mappings, so a
	// retry there would change nothing.
	if len(rows) == 0 && !explicit && kind != extract.KindHorizontalPivot {
		in.Mappings = match.PermissiveMappings(columns, s.Headers, tr.Overrides)
		rows = extract.Run(kind, in)
		if len(rows) > 0 {
			mappings = in.Mappings
			e.log.Info("permissive fallback matched",
				zap.String("table", tbl.ID),
				zap.String("sheet", s.Name),
				zap.Int("rows", len(rows)),
			)
		}
	}

	if preview {
		res.Mappings = mappings
		for _, r := range rows[:min(len(rows), e.opts.PreviewRows)] {
			res.SampleRows = append(res.SampleRows, r.Data)
		}
		res.Inserted = len(rows)
		return res
	}

	// Zero surviving rows is a soft failure. Persisting would wipe the batch
	// a previous import of the same document committed.
	if len(rows) == 0 {
		res.Error = "no rows extracted"
		return res
	}

	n, err := e.store.ReplaceRows(ctx, tbl.ID, prov.SourcePath, rows)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Inserted = n

	e.log.Info("table imported",
		zap.String("table", tbl.ID),
		zap.String("sheet", s.Name),
		zap.String("strategy", kind.String()),
		zap.Int("inserted", n),
	)
	return res
}

// selectSheet resolves the sheet for a table: an explicit pin wins, then the
// table's configured pin, then template-aware selection, then generic
// column-fit selection.
func (e *Engine) selectSheet(sheets []model.Sheet, tr model.TableRequest, tbl *model.TargetTable, columns []model.TargetColumn, def *template.Def, profile match.Profile) *model.Sheet {
	pin := tr.SheetPin
	if pin == "" {
		pin = tbl.PinnedSheet
	}
	if pin != "" {
		for i := range sheets {
			if sheets[i].Name == pin {
				return &sheets[i]
			}
		}
		return nil
	}

	if def != nil {
		if idx, _ := match.SelectTemplateSheet(sheets, def); idx >= 0 {
			return &sheets[idx]
		}
	}

	idx, _ := match.SelectSheet(sheets, columns, match.Options{Profile: profile, Template: def})
	if idx < 0 {
		return nil
	}
	return &sheets[idx]
}
