package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/jerry-desk/bridgecli/commands"
	"github.com/jerry-desk/bridgecli/config"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored Neo4j password",
	Long:  `Commands for storing and removing the Neo4j password in the OS keyring.`,
}

var authNeo4jCmd = &cobra.Command{
	Use:   "neo4j",
	Short: "Store the Neo4j password read from stdin",
	Long:  `Reads the first line of stdin and stores it in the OS keyring, where the neo4j bridge finds it when NEO4J_PASSWORD is not set.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		password = strings.TrimRight(password, "\r\n")
		if password == "" {
			if err == nil {
				err = errors.New("empty password")
			}
			err = fmt.Errorf("no password provided on stdin: %w", err)
			return commands.NewExitError(commands.NewErrorBody(err), err)
		}

		if err := keyring.Set(config.KeyringService, config.KeyringUser, password); err != nil {
			err = fmt.Errorf("failed to store password: %w", err)
			return commands.NewExitError(commands.NewErrorBody(err), err)
		}

		return printJson(cmd.OutOrStdout(), authResponse{Success: true, Message: "Password stored in keyring"})
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored Neo4j password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := keyring.Delete(config.KeyringService, config.KeyringUser)
		switch {
		case errors.Is(err, keyring.ErrNotFound):
			return printJson(cmd.OutOrStdout(), authResponse{Success: true, Message: "No stored password"})
		case err != nil:
			return printJson(cmd.OutOrStdout(), commands.NewErrorBody(fmt.Errorf("failed to remove password: %w", err)))
		}

		return printJson(cmd.OutOrStdout(), authResponse{Success: true, Message: "Password removed from keyring"})
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authNeo4jCmd, authLogoutCmd)
}
