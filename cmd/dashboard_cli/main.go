package main

import (
	"os"

	"github.com/2beens/gymdash/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	env        string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "dashboard_cli",
	Short: "gymdash maintenance tool",
	Long: `Offline tooling around gymdash data.

Compute a dashboard snapshot from an export file, import an export into
the configured records store or apply the postgres schema.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stderr)
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(snapshotCmd, importCmd, migrateCmd, hashPasswordCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(env, configPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
