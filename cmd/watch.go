package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taxon/internal/config"
	"taxon/internal/events"
	"taxon/internal/export"
	"taxon/internal/migrate"
	"taxon/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild and re-export the taxonomy whenever migrations change",
	Long: "Watch monitors the migrations directory and replays the full\n" +
		"migration log on every change. Rebuild failures are reported without\n" +
		"exiting; the last good export stays in place until a valid history\n" +
		"produces a new one.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		dir := migrationsDir(cmd, cfg)

		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = cfg.ExportFormat
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.ExportPath
		}
		if out == "" {
			return fmt.Errorf("watch requires --out (stdout is reserved for status)")
		}

		emitter, err := openEvents(cfg)
		if err != nil {
			return err
		}
		defer emitter.Close()

		w, err := watch.New(dir)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		rebuild := func() {
			defer warnAuditErr(emitter)
			if err := rebuildExport(dir, format, out, emitter); err != nil {
				fmt.Fprintf(os.Stderr, "✗ rebuild: %v\n", err)
				return
			}
			fmt.Fprintf(os.Stderr, "✓ exported to %s\n", out)
		}
		rebuild()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		for {
			select {
			case <-w.Rebuilds:
				rebuild()
			case <-sig:
				return nil
			}
		}
	},
}

// rebuildExport replays the migration log from scratch and rewrites the
// export artifact.
func rebuildExport(dir, format, out string, emitter *events.Emitter) error {
	runner := &migrate.Runner{Events: emitter}
	store, err := runner.Apply(dir)
	if err != nil {
		return err
	}
	emitter.Emit(events.Event{Kind: events.KindRebuild, Data: store.Stats()})

	recs, err := export.New(store).Export(export.ScopeAll)
	if err != nil {
		return err
	}
	if err := writeRecords(recs, format, out); err != nil {
		return err
	}
	emitter.Emit(events.Event{Kind: events.KindExport, Data: len(recs)})
	return nil
}

func init() {
	watchCmd.Flags().StringP("out", "o", "", "export path rewritten on every rebuild")
	watchCmd.Flags().StringP("format", "f", "", "output format: jsonl, csv, or sqlite")
	rootCmd.AddCommand(watchCmd)
}
