package cli

import (
	"fmt"
	"io"

	"github.com/jerry-desk/bridgecli/commands"
	"github.com/jerry-desk/bridgecli/config"
	"github.com/jerry-desk/bridgecli/utils"
	"github.com/spf13/cobra"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Project memory embeddings to 2-D and cluster them",
	Long: `Reads a JSON array of memories from stdin (or the memory database with
--dsn or --from-db), projects the embeddings onto two principal components and assigns
K-means clusters. Any failure prints [] unless --strict is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// a broken config file follows the same failure policy as bad input
		cfg, err := config.Load(configPath)
		if err != nil {
			return clusterFailed(cmd, err)
		}

		input, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return clusterFailed(cmd, fmt.Errorf("failed to read stdin: %w", err))
		}

		req := commands.ClusterRequest{
			Input:  input,
			DSN:    clusterDSN,
			FromDB: clusterFromDB,
			Limit:  clusterLimit,
		}
		commands.ApplyClusterDefaults(&req, cfg.Memory)

		output, err := commands.ClusterCommand(cmd.Context(), req)
		if err != nil {
			return clusterFailed(cmd, err)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return err
	},
}

func clusterFailed(cmd *cobra.Command, err error) error {
	utils.Log("cluster").Errorf("clustering failed: %v", err)
	if clusterStrict {
		return commands.NewExitError(commands.NewErrorBody(err), err)
	}
	_, printErr := fmt.Fprintln(cmd.OutOrStdout(), "[]")
	return printErr
}

func init() {
	rootCmd.AddCommand(clusterCmd)

	clusterCmd.Flags().StringVar(&clusterDSN, "dsn", "", "read memories from this postgres:// or sqlite:// database instead of stdin")
	clusterCmd.Flags().BoolVar(&clusterFromDB, "from-db", false, "read memories from the configured memory database (MEMORY_DSN or [memory] dsn)")
	clusterCmd.Flags().IntVar(&clusterLimit, "limit", 0, "maximum memories to load with --dsn (default from config, 300)")
	clusterCmd.Flags().BoolVar(&clusterStrict, "strict", false, "print a JSON error and exit 1 on failure instead of []")
}
