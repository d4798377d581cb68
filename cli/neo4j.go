package cli

import (
	"github.com/jerry-desk/bridgecli/commands"
	"github.com/spf13/cobra"
)

var neo4jCmd = &cobra.Command{
	Use:   "neo4j <cypher_query> [json_parameters]",
	Short: "Run one Cypher query against Neo4j",
	Long: `Runs a single Cypher query with optional JSON parameters and prints the
records and update counters. Connection settings come from NEO4J_URI,
NEO4J_USER and NEO4J_PASSWORD, the config file or the keyring.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.GraphRequest{}
		if len(args) > 0 {
			req.Query = args[0]
		}
		if len(args) > 1 {
			req.Params = args[1]
		}

		// the missing query is checked before any configuration is read
		if req.Query == "" {
			_, err := commands.GraphCommand(cmd.Context(), req)
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		req.Settings = commands.GraphSettings(cfg.Neo4j)
		req.Timeout = cfg.Neo4j.Timeout
		if cmd.Flags().Changed("timeout") {
			req.Timeout = neo4jTimeout
		}

		result, err := commands.GraphCommand(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJson(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(neo4jCmd)

	neo4jCmd.Flags().DurationVar(&neo4jTimeout, "timeout", 0, "bound the whole query, e.g. 30s (default from config, unbounded)")
}
