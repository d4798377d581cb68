package cli

import (
	"fmt"
	"io"

	"github.com/jerry-desk/bridgecli/rpc"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Dispatch one {method, params} request read from stdin",
	Long: `Reads a single {"method": "...", "params": {...}} object from stdin and
prints the result exactly as the matching bridge command would. Methods:
desktop.capture, desktop.mouse, desktop.keyboard, desktop.test,
memory.cluster, graph.query.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		input, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}

		result, err := rpc.NewDispatcher(cfg).Handle(cmd.Context(), input)
		if err != nil {
			return err
		}
		return printJson(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(rpcCmd)
}
