package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"threadscraper/pkg/config"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/logger"
	"threadscraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	notifications bool
	quiet         bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "threadscraper",
	Short: "Export your saved Threads posts with their captions and images",
	Long: `threadscraper opens your saved posts in a real Chrome session, scrolls
until the list stops growing, and exports every post as a table row with
its caption and images.

Features:
  - Reuses your Chrome profile, or attaches to a running browser
  - Fills the login form and asks for verification codes when needed
  - Stores images on Cloudinary or in a local folder
  - Writes CSV (Excel friendly), XLSX and an optional JSON sidecar
  - Desktop notifications when a code is needed and when the run ends

Running threadscraper without a subcommand is the same as 'threadscraper scrape'.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			logLevel = "error"
		} else if verbose {
			logLevel = "debug"
		}

		if !quiet && cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "show" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		if apperrors.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./threadscraper.yaml or ~/.config/threadscraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "enable desktop notifications")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging and per-post progress lines")

	rootCmd.SetVersionTemplate(`threadscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags collects the persistent flags the user actually set
func globalFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("notifications") {
		flags["notifications"] = notifications
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	return flags
}

// loadConfig loads the configuration and initializes the global logger
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, apperrors.Fatal("logger", "failed to initialize logging", err)
	}
	return cfg, nil
}
