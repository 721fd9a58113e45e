package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"threadscraper/pkg/config"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage threadscraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (THREADSCRAPER_*, THREADS_ID, CLOUDINARY_*)
  - A .env file in the current directory
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with the defaults",
	Long: `Write every option with its default value to a YAML file.

The file is created as 'threadscraper.yaml' in the current directory
unless a different path is given with --config. An existing file is
never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after all sources have been merged.

Passwords and API secrets are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration without starting a browser",
	Long: `Load the configuration from all sources and report every problem at once.

This command checks:
  - YAML syntax
  - The target URL and storage mode
  - Cloudinary credentials when storage is remote
  - Selector syntax
  - Value ranges`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "threadscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(ui.Output, "\nTo overwrite, first remove the existing file:\n  rm %s\n", configPath)
		return apperrors.Fatal("config", "configuration file already exists", fmt.Errorf("%s", configPath))
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return apperrors.Fatal("config", "failed to create configuration file", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Output, "\nNext steps:")
	fmt.Fprintln(ui.Output, "1. Set storage.mode to local, or fill in storage.cloudinary")
	fmt.Fprintln(ui.Output, "2. Store a login with 'threadscraper auth login' (optional)")
	fmt.Fprintln(ui.Output, "3. Run 'threadscraper config validate' to check the file")
	fmt.Fprintln(ui.Output, "4. Start with 'threadscraper scrape'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags(cmd))
	if err != nil {
		return err
	}

	masked := cfg.Masked()
	data, err := yaml.Marshal(&masked)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Output)
	fmt.Fprint(ui.Output, string(data))

	fmt.Fprintln(ui.Output, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(ui.Output, "1. Command line flags")
	fmt.Fprintln(ui.Output, "2. Environment variables and .env")
	if configFile != "" {
		fmt.Fprintf(ui.Output, "3. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(ui.Output, "3. Configuration file: (first found of threadscraper.yaml, ~/.config/threadscraper/config.yaml)")
	}
	fmt.Fprintln(ui.Output, "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, globalFlags(cmd))
	if err != nil {
		return err
	}

	var warnings []string
	if cfg.Auth.Username == "" && cfg.Auth.Account == "" {
		warnings = append(warnings, "no login configured; the browser profile must already be logged in or you will be prompted")
	}
	if cfg.Browser.Attach && cfg.Browser.Headless {
		warnings = append(warnings, "headless is ignored when attaching to a running browser")
	}
	if cfg.Target.MaxPosts == 0 {
		warnings = append(warnings, "max_posts is 0; every saved post will be processed")
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Fprintf(ui.Output, "  - %s\n", w)
		}
		fmt.Fprintln(ui.Output)
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Fprintln(ui.Output, "\nConfiguration summary:")
	fmt.Fprintf(ui.Output, "  Target: %s (max %d posts)\n", cfg.Target.URL, cfg.Target.MaxPosts)
	fmt.Fprintf(ui.Output, "  Storage: %s\n", cfg.Storage.Mode)
	fmt.Fprintf(ui.Output, "  Output: %s/%s.{csv,xlsx}\n", cfg.Export.OutputDir, cfg.OutputBaseName())
	fmt.Fprintf(ui.Output, "  Workers: %d, %d requests/minute\n", cfg.Download.Workers, cfg.Download.RequestsPerMinute)
	fmt.Fprintf(ui.Output, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
