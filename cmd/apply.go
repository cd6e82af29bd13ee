package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taxon/internal/config"
	"taxon/internal/migrate"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Replay all migrations and report the resulting taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		dir := migrationsDir(cmd, cfg)

		emitter, err := openEvents(cfg)
		if err != nil {
			return err
		}
		defer emitter.Close()
		defer warnAuditErr(emitter)

		names, err := migrate.Discover(dir)
		if err != nil {
			return err
		}

		runner := &migrate.Runner{Events: emitter}
		store, err := runner.Apply(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ halted: %v\n", err)
			return err
		}

		st := store.Stats()
		fmt.Fprintf(os.Stderr, "✓ applied %d migrations: %d ecosystems, %d repositories, %d connections\n",
			len(names), st.Ecosystems, st.Repos, st.Edges)
		if v, _ := cmd.Flags().GetBool("verbose"); v || cfg.Verbose {
			for _, name := range store.Roots() {
				fmt.Fprintf(os.Stderr, "  root: %s\n", name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}
