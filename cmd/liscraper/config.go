package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"liscraper/pkg/config"
)

// configCmd groups the configuration subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage liscraper configuration.

Configuration is loaded in precedence order:
  - Command line flags (highest priority)
  - Environment variables (LISCRAPER_*)
  - Configuration file (.liscraper.yaml)
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration file",
	Long: `Write a configuration file with all options set to their defaults.

The file is created as '.liscraper.yaml' in the current directory
unless a path is given with --config.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging all sources. Credentials and
API keys are masked.`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".liscraper.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return err
	}

	masked := *cfg
	masked.Target.Password = mask(cfg.Target.Password)
	masked.Redis.Password = mask(cfg.Redis.Password)
	masked.Enrichment.APIKey = mask(cfg.Enrichment.APIKey)

	out, err := yaml.Marshal(&masked)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Load runs the full validation pass
	if _, err := config.Load(configFile, globalFlags()); err != nil {
		return err
	}
	fmt.Println("configuration is valid")
	return nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
