package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	statusTable  string
	statusSource string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured target tables and import status",
	Long: `Without flags, lists the configured target tables. With --table and
--source, shows when that document was last imported into the table and how
many rows it produced.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("import"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush() //nolint:errcheck

		if statusTable == "" {
			tables, err := st.TargetTables(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "ID\tNAME\tLABEL\tPROFILE")
			for _, t := range tables {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Label, t.TemplateProfile)
			}
			return nil
		}

		if statusSource == "" {
			return eris.New("--source is required with --table")
		}

		status, err := st.ImportStatus(ctx, statusTable, statusSource)
		if err != nil {
			return err
		}
		if status == nil {
			fmt.Fprintf(w, "%s\t%s\tnever imported\n", statusTable, statusSource)
			return nil
		}
		fmt.Fprintf(w, "%s\t%s\trows=%d\timported=%s\n",
			status.TableID, status.SourcePath, status.RowCount,
			status.ImportedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusTable, "table", "", "target table ID")
	statusCmd.Flags().StringVar(&statusSource, "source", "", "source document path")
	rootCmd.AddCommand(statusCmd)
}
