package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taxon/internal/config"
	"taxon/internal/ingest"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a migration file from a CSV repository list",
	Long: "Generate converts a spreadsheet export (one URL column, one project\n" +
		"name column) into a timestamped migration of repadd commands, deduped\n" +
		"on (name, url).",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		csvPath, _ := cmd.Flags().GetString("csv")
		eco, _ := cmd.Flags().GetString("ecosystem")
		desc, _ := cmd.Flags().GetString("desc")
		if desc == "" {
			desc = "add " + eco + " repos"
		}
		outDir, _ := cmd.Flags().GetString("dir")
		if outDir == "" {
			outDir = migrationsDir(cmd, cfg)
		}

		f, err := os.Open(csvPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", csvPath, err)
		}
		defer f.Close()

		opts := ingest.Options{Ecosystem: eco}
		opts.URLColumn, _ = cmd.Flags().GetString("url-column")
		opts.NameColumn, _ = cmd.Flags().GetString("name-column")
		opts.DeclareEcosystem, _ = cmd.Flags().GetBool("with-ecoadd")

		lines, sum, err := ingest.FromCSV(f, opts)
		if err != nil {
			return err
		}
		name, err := ingest.WriteMigration(outDir, desc, lines, time.Now())
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "✓ wrote %s: %d repos (%d duplicates, %d skipped of %d rows)\n",
			name, sum.Written, sum.Duplicates, sum.Skipped, sum.Rows)
		return nil
	},
}

func init() {
	generateCmd.Flags().String("csv", "", "CSV file to convert")
	generateCmd.Flags().String("ecosystem", "", "ecosystem the repositories attach to")
	generateCmd.Flags().String("desc", "", "migration description (default derived from ecosystem)")
	generateCmd.Flags().String("dir", "", "output directory (default migrations dir)")
	generateCmd.Flags().String("url-column", "", `CSV header of the URL column (default "project_name")`)
	generateCmd.Flags().String("name-column", "", `CSV header of the project name column (default "Name")`)
	generateCmd.Flags().Bool("with-ecoadd", false, "prepend an ecoadd declaring the ecosystem")
	generateCmd.MarkFlagRequired("csv")
	generateCmd.MarkFlagRequired("ecosystem")
	rootCmd.AddCommand(generateCmd)
}
