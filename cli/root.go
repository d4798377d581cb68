package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jerry-desk/bridgecli/commands"
	"github.com/jerry-desk/bridgecli/config"
	"github.com/jerry-desk/bridgecli/utils"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X ...cli.version=..."
var version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bridgecli",
	Short: "Desktop, memory clustering and Neo4j bridges for the host application",
	Long: `Single-shot bridges that each read their input, call one external
capability and print exactly one JSON document to stdout.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func GetVersion() string {
	return version
}

func initConfig() {
	utils.SetVerbose(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output on stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an ini config file (default $"+config.ConfigEnvVar+")")
}

// Execute runs the root command. Fatal preconditions have their JSON payload
// printed here before the error is handed back to main.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)

	var exitErr *commands.ExitError
	if errors.As(err, &exitErr) {
		if printErr := printJson(rootCmd.OutOrStdout(), exitErr.Payload); printErr != nil {
			return printErr
		}
	}
	return err
}

// loadConfig reads the configuration selected by --config. A broken config
// file is fatal for every bridge.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, commands.NewExitError(commands.NewErrorBody(err), err)
	}
	return cfg, nil
}

// printJson writes one compact JSON document followed by a newline
func printJson(w io.Writer, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
