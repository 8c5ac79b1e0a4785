package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version info set from main
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"

	// Global flags
	configPath string
	outputFmt  string
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "A personal job discovery pipeline",
	Long: `jobscout collects job postings from alert emails and scraper output,
deduplicates them and scores every posting against your candidate profiles.

It provides:
  - Gmail integration for LinkedIn and ATS job alerts
  - Regex extraction with an optional Gemini fallback
  - Seniority, company and role filters with a manual review queue
  - Per-profile 115-point scoring with A-F grades and digests`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("config", "JOBSCOUT_CONFIG"); err != nil {
		log.Fatalf("binding JOBSCOUT_CONFIG environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "",
		"config file (default: ~/.config/jobscout/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table",
		"output format (table, json, jsonl)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	configPath = viper.GetString("config")
	if configPath != "" {
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		os.Exit(1)
	}
	configPath = filepath.Join(home, ".config", "jobscout", "config.toml")
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jobscout %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", buildTime)
	},
}
