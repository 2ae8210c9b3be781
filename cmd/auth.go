package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abhisek/rubrix/internal/auth"
	"github.com/abhisek/rubrix/internal/store"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the cached Bedrock bearer token",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange a user name and password for a bearer token and cache it",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		user, _ := cmd.Flags().GetString("user")
		in := bufio.NewReader(os.Stdin)

		if user == "" {
			fmt.Fprint(os.Stderr, "User: ")
			line, err := in.ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read user: %w", err)
			}
			user = strings.TrimSpace(line)
		}
		if user == "" {
			return errors.New("a user name is required")
		}

		password, err := readPassword(in)
		if err != nil {
			return err
		}

		client := auth.NewClient(e.cfg.Auth.URL, nil, e.log)
		secret, err := client.Exchange(cmd.Context(), user, password)
		if errors.Is(err, auth.ErrInvalidPassword) || errors.Is(err, auth.ErrUserNotFound) {
			return fmt.Errorf("login failed: %w", err)
		}
		if err != nil {
			return err
		}

		s, err := e.openStore()
		if err != nil {
			return err
		}
		cred := store.Credential{Name: auth.CredentialName, User: user, Secret: secret}
		if err := s.CredentialRepo().SaveCredential(cmd.Context(), cred); err != nil {
			return fmt.Errorf("cache credential: %w", err)
		}
		fmt.Println(styled(correctStyle, "Logged in as "+user+"."))
		return nil
	}),
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the cached bearer token",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		s, err := e.openStore()
		if err != nil {
			return err
		}
		if err := s.CredentialRepo().ClearCredential(cmd.Context(), auth.CredentialName); err != nil {
			return fmt.Errorf("clear credential: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	}),
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a bearer token is cached",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		s, err := e.openStore()
		if err != nil {
			return err
		}
		cred, err := s.CredentialRepo().LoadCredential(cmd.Context(), auth.CredentialName)
		if err != nil {
			return fmt.Errorf("load credential: %w", err)
		}
		if cred == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("Logged in as %s (token cached %s).\n",
			cred.User, cred.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	}),
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise.
func readPassword(in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	authLoginCmd.Flags().StringP("user", "u", "", "User name (prompted when omitted)")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}
