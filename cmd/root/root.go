// Package root contains the root command for the application
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cryptofolio/cryptofolio/internal/config"
	"github.com/cryptofolio/cryptofolio/internal/export"
	"github.com/cryptofolio/cryptofolio/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Output         string
	HoldingsOutput string
	PricesFile     string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.GetLogger()

	// Cfg is the loaded application configuration, populated by the
	// persistent pre-run hook before any subcommand executes.
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "cryptofolio",
		Short: "A CLI tool to fetch, normalize and categorize crypto transactions.",
		Long: `cryptofolio fetches on-chain transaction history for wallet addresses,
parses exchange statement exports, categorizes the resulting transactions
and reports portfolio holdings and income.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to cryptofolio!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				Log.WithError(err).Fatal("Failed to load configuration")
			}
			Cfg = cfg

			level, err := logrus.ParseLevel(cfg.Log.Level)
			if err != nil {
				level = logrus.InfoLevel
			}
			logging.SetAllLogLevels(level)

			Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
			logging.SetDefaultLogger(Log)
			export.SetLogger(Log)

			if SharedFlags.PricesFile != "" {
				Cfg.Prices.File = SharedFlags.PricesFile
			}
		},
	}

	// SharedFlags holds options common to all subcommands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Write categorized transactions to this CSV file")
	Cmd.PersistentFlags().StringVar(&SharedFlags.HoldingsOutput, "holdings-output", "", "Write holdings to this CSV file")
	Cmd.PersistentFlags().StringVar(&SharedFlags.PricesFile, "prices", "", "YAML file with price overrides")
}
