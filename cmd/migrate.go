package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

var migrateSchemaPath string

// schemaFile is the on-disk shape of a target schema definition.
type schemaFile struct {
	Tables []struct {
		ID              string `yaml:"id"`
		Name            string `yaml:"name"`
		Label           string `yaml:"label"`
		TemplateProfile string `yaml:"template_profile"`
		PinnedSheet     string `yaml:"pinned_sheet"`
		Columns         []struct {
			ID       string   `yaml:"id"`
			FieldKey string   `yaml:"field_key"`
			Label    string   `yaml:"label"`
			DataType string   `yaml:"data_type"`
			Required bool     `yaml:"required"`
			Keywords []string `yaml:"keywords"`
			Scope    string   `yaml:"scope"`
		} `yaml:"columns"`
	} `yaml:"tables"`
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema and optionally seed target tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		zap.L().Info("migration complete", zap.String("driver", cfg.Store.Driver))

		if migrateSchemaPath == "" {
			return nil
		}

		tables, columns, err := loadSchemaFile(migrateSchemaPath)
		if err != nil {
			return err
		}
		if err := st.SeedSchema(ctx, tables, columns); err != nil {
			return err
		}
		zap.L().Info("schema seeded",
			zap.String("path", migrateSchemaPath),
			zap.Int("tables", len(tables)),
			zap.Int("columns", len(columns)),
		)
		return nil
	},
}

func loadSchemaFile(path string) ([]model.TargetTable, []model.TargetColumn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "read schema file %s", path)
	}

	var sf schemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, nil, eris.Wrapf(err, "parse schema file %s", path)
	}

	var tables []model.TargetTable
	var columns []model.TargetColumn
	for _, t := range sf.Tables {
		if t.ID == "" {
			return nil, nil, eris.Errorf("schema file %s: table without id", path)
		}
		name := t.Name
		if name == "" {
			name = t.ID
		}
		tables = append(tables, model.TargetTable{
			ID:              t.ID,
			Name:            name,
			Label:           t.Label,
			TemplateProfile: t.TemplateProfile,
			PinnedSheet:     t.PinnedSheet,
		})
		for _, c := range t.Columns {
			if c.FieldKey == "" {
				return nil, nil, eris.Errorf("schema file %s: column without field_key in table %s", path, t.ID)
			}
			id := c.ID
			if id == "" {
				id = t.ID + "." + c.FieldKey
			}
			dt := model.DataType(c.DataType)
			if dt == "" {
				dt = model.TypeText
			}
			columns = append(columns, model.TargetColumn{
				ID:       id,
				TableID:  t.ID,
				FieldKey: c.FieldKey,
				Label:    c.Label,
				DataType: dt,
				Required: c.Required,
				Config: model.ColumnConfig{
					Keywords: c.Keywords,
					Scope:    model.ColumnScope(c.Scope),
				},
			})
		}
	}
	return tables, columns, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSchemaPath, "schema", "", "YAML file with target tables and columns to seed")
	rootCmd.AddCommand(migrateCmd)
}
