package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"taxon/internal/config"
	"taxon/internal/export"
	"taxon/internal/migrate"
)

var exportCmd = &cobra.Command{
	Use:   "export [scope]",
	Short: "Export the taxonomy (or one ecosystem) as a flat record stream",
	Long: "Export replays migrations and writes one record per (branch path,\n" +
		"repository) pair. With no scope argument every root ecosystem is\n" +
		"exported; with a named scope only that ecosystem's subtree.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		dir := migrationsDir(cmd, cfg)

		scope := export.ScopeAll
		if len(args) == 1 {
			scope = args[0]
		}
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = cfg.ExportFormat
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.ExportPath
		}

		emitter, err := openEvents(cfg)
		if err != nil {
			return err
		}
		defer emitter.Close()
		defer warnAuditErr(emitter)

		runner := &migrate.Runner{Events: emitter}
		store, err := runner.Apply(dir)
		if err != nil {
			return err
		}

		recs, err := export.New(store).Export(scope)
		if err != nil {
			return err
		}
		return writeRecords(recs, format, out)
	},
}

// writeRecords dispatches records to the requested sink.
func writeRecords(recs []export.Record, format, out string) error {
	switch format {
	case "jsonl", "csv":
		w, closeFn, err := openOut(out)
		if err != nil {
			return err
		}
		defer closeFn()
		if format == "csv" {
			return export.WriteCSV(w, recs)
		}
		return export.WriteJSONL(w, recs)
	case "sqlite":
		if out == "" {
			return fmt.Errorf("sqlite export requires --out <database path>")
		}
		return export.WriteSQLite(context.Background(), out, recs)
	}
	return fmt.Errorf("unknown export format %q (want jsonl, csv, or sqlite)", format)
}

// openOut returns stdout or a created file, with a close function.
func openOut(out string) (io.Writer, func() error, error) {
	if out == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", out, err)
	}
	return f, f.Close, nil
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "output path (default stdout; required for sqlite)")
	exportCmd.Flags().StringP("format", "f", "", "output format: jsonl, csv, or sqlite")
	rootCmd.AddCommand(exportCmd)
}
