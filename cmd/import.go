package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

var (
	importFile      string
	importSource    string
	importTables    []string
	importSheet     string
	importPreview   bool
	importJSON      bool
	importMappings  []string
	importOverrides []string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a spreadsheet into one or more target tables",
	Long: `Parses the given workbook or CSV, matches its columns against each
target table's schema, and loads the extracted rows. With --preview the
mapping and a sample of the output are printed and nothing is persisted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("import"); err != nil {
			return err
		}
		if len(importTables) == 0 {
			return eris.New("at least one --table is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		engine, err := initEngine(st)
		if err != nil {
			return err
		}

		mappings, err := parseKeyValues(importMappings)
		if err != nil {
			return eris.Wrap(err, "parse --map")
		}
		overrides, err := parseKeyValues(importOverrides)
		if err != nil {
			return eris.Wrap(err, "parse --set")
		}

		req := model.ImportRequest{Preview: importPreview}
		switch {
		case importFile != "":
			data, err := os.ReadFile(importFile)
			if err != nil {
				return eris.Wrapf(err, "read %s", importFile)
			}
			req.File = data
			req.FileName = filepath.Base(importFile)
		case importSource != "":
			req.Source = &model.StoredRef{Path: importSource}
		default:
			return eris.New("either --file or --source is required")
		}

		for _, id := range importTables {
			req.Tables = append(req.Tables, model.TableRequest{
				TableID:   id,
				SheetPin:  importSheet,
				Mappings:  mappings,
				Overrides: overrides,
			})
		}

		resp, err := engine.Import(ctx, req)
		if err != nil {
			return err
		}

		if importJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return eris.Wrap(err, "encode response")
			}
		} else {
			printResponse(resp)
		}
		if !resp.Success {
			return eris.New("import finished with table errors")
		}
		zap.L().Info("import complete",
			zap.String("file", resp.FileName),
			zap.Int("total_inserted", resp.TotalInserted),
		)
		return nil
	},
}

// parseKeyValues splits repeated "key=value" flags into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, eris.Errorf("expected key=value, got %q", p)
		}
		out[k] = v
	}
	return out, nil
}

func printResponse(resp *model.ImportResponse) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush() //nolint:errcheck

	for _, tr := range resp.Tables {
		if tr.Error != "" {
			fmt.Fprintf(w, "%s\tERROR\t%s\n", tr.TableID, tr.Error)
			continue
		}
		fmt.Fprintf(w, "%s\tsheet=%s\trows=%d\n", tr.TableID, tr.SheetName, tr.Inserted)

		if !resp.Preview {
			continue
		}
		for _, m := range tr.Mappings {
			switch {
			case m.Mapped():
				fmt.Fprintf(w, "  %s\t<- %q\t%.2f\n", m.Column.FieldKey, m.Header(), m.Confidence)
			case m.ManualOverride != "":
				fmt.Fprintf(w, "  %s\t= %q\toverride\n", m.Column.FieldKey, m.ManualOverride)
			default:
				fmt.Fprintf(w, "  %s\t(unmapped)\t\n", m.Column.FieldKey)
			}
		}
		for i, row := range tr.SampleRows {
			fmt.Fprintf(w, "  sample %d\t%v\n", i+1, row)
		}
	}
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to a local .xlsx/.xls/.csv file")
	importCmd.Flags().StringVar(&importSource, "source", "", "path of a stored document in the configured bucket")
	importCmd.Flags().StringSliceVar(&importTables, "table", nil, "target table ID (repeatable)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "pin a sheet by name, skipping selection")
	importCmd.Flags().BoolVar(&importPreview, "preview", false, "show mappings and sample rows without persisting")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "print the full response as JSON")
	importCmd.Flags().StringArrayVar(&importMappings, "map", nil, "explicit field=header mapping (repeatable)")
	importCmd.Flags().StringArrayVar(&importOverrides, "set", nil, "literal field=value override (repeatable)")
	rootCmd.AddCommand(importCmd)
}
