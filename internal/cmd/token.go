package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/insights/internal/config"
	"github.com/Iron-Ham/insights/internal/credentials"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the analytics API token",
	Long: `Manage the bearer token sent to the analytics endpoint.

The token is stored in the system keyring. A token set in the config file
(api.token) or INSIGHTS_API_TOKEN takes precedence over the keyring.`,
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the API token in the keyring",
	Long: `Store the API token in the keyring.

Without an argument the token is read from standard input, with echo
disabled when stdin is a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenSet,
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the API token from the keyring",
	Args:  cobra.NoArgs,
	RunE:  runTokenDelete,
}

var tokenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the API token comes from",
	Args:  cobra.NoArgs,
	RunE:  runTokenStatus,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
	tokenCmd.AddCommand(tokenStatusCmd)
}

func runTokenSet(cmd *cobra.Command, args []string) error {
	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		var err error
		token, err = readToken(cmd)
		if err != nil {
			return err
		}
	}

	if err := credentials.SetAPIToken(token); err != nil {
		return err
	}
	cmd.Println("API token stored in the system keyring.")
	return nil
}

// readToken reads one line from stdin without echo when it is a terminal.
func readToken(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "API token: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runTokenDelete(cmd *cobra.Command, args []string) error {
	err := credentials.DeleteAPIToken()
	if errors.Is(err, credentials.ErrNotFound) {
		cmd.Println("No API token stored.")
		return nil
	}
	if err != nil {
		return err
	}
	cmd.Println("API token removed from the system keyring.")
	return nil
}

func runTokenStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if strings.TrimSpace(cfg.API.Token) != "" {
		cmd.Println("API token: set in configuration (api.token)")
		return nil
	}

	_, err := credentials.GetAPIToken()
	switch {
	case err == nil:
		cmd.Println("API token: stored in the system keyring")
	case errors.Is(err, credentials.ErrNotFound):
		cmd.Println("API token: not set")
	default:
		return err
	}
	return nil
}
