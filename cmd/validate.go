package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taxon/internal/config"
	"taxon/internal/migrate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every migration file without building the taxonomy",
	Long: "Validate parses and dry-applies all migrations, reporting every\n" +
		"problem at once instead of halting at the first like apply does.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		dir := migrationsDir(cmd, cfg)

		names, err := migrate.Discover(dir)
		if err != nil {
			return err
		}

		runner := &migrate.Runner{}
		errs := runner.Lint(dir)
		if len(errs) == 0 {
			fmt.Fprintf(os.Stderr, "✓ %d migrations OK\n", len(names))
			return nil
		}
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "✗ %v\n", e)
		}
		os.Exit(1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
