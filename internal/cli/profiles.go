package cli

import (
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/output"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List configured candidate profiles",
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return output.Output(outputFmt, cfg.Profiles)
}
