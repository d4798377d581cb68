package cli

import (
	"github.com/jerry-desk/bridgecli/commands"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run system diagnostics",
	Long:  `Reports the desktop backend, display and the configured Neo4j and memory database settings`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printJson(cmd.OutOrStdout(), commands.DoctorCommand(GetVersion(), cfg))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
