package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and every profile for errors",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const configHeader = `# jobscout configuration
#
# Profiles are re-read on every run: edit them, then run 'jobscout rescore'.
# The Gemini API key for [llm] is read from the GEMINI_API_KEY environment
# variable.

`

func runConfigInit(cmd *cobra.Command, args []string) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists at %s\n", configPath)
		fmt.Println("Use 'jobscout config show' to view current configuration")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	// Write default config
	if err := os.WriteFile(configPath, append([]byte(configHeader), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Edit the [[profiles]] section to describe the roles you want")
	fmt.Println("  2. Set up Gmail API credentials and save credentials.json to the")
	fmt.Println("     [gmail] credentials_path")
	fmt.Println("  3. Run 'jobscout sync' to authenticate and fetch job alerts,")
	fmt.Println("     or 'jobscout ingest jobs.json' to score scraped jobs")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No config file found. Run 'jobscout config init' to create one.")
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	fmt.Printf("# Config file: %s\n\n", configPath)
	fmt.Println(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	fmt.Printf("%s is valid: %d profile(s), %d enabled\n", configPath, len(cfg.Profiles), len(cfg.EnabledProfiles()))
	return nil
}
