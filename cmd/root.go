package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taxon/internal/config"
	"taxon/internal/events"
)

var rootCmd = &cobra.Command{
	Use:   "taxon",
	Short: "Ecosystem taxonomy graph engine",
	Long: "Taxon replays ordered migration files into a directed acyclic graph of\n" +
		"ecosystems, sub-ecosystems, and repositories, and exports the taxonomy\n" +
		"as a flat record stream.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .taxon.yaml)")
	rootCmd.PersistentFlags().StringP("migrations", "m", "", "migrations directory (default from config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".taxon")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("TAXON")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// migrationsDir resolves the migrations directory: flag first, then config.
func migrationsDir(cmd *cobra.Command, cfg config.Config) string {
	if dir, _ := cmd.Flags().GetString("migrations"); dir != "" {
		return dir
	}
	return cfg.MigrationsDir
}

// openEvents opens the configured audit log, or returns a nil no-op emitter
// when auditing is disabled.
func openEvents(cfg config.Config) (*events.Emitter, error) {
	if cfg.EventsPath == "" {
		return nil, nil
	}
	return events.NewEmitter(cfg.EventsPath)
}

// warnAuditErr surfaces dropped audit records. Audit write failures never
// abort a run, but they must not vanish silently either.
func warnAuditErr(emitter *events.Emitter) {
	if err := emitter.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "✗ audit log: %v\n", err)
	}
}
