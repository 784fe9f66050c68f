package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jgoulah/energyviz/internal/api"
)

var (
	loginEmail    string
	loginPassword string
	loginAPI      string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the energy API and save the session",
	Long: `Exchanges your email and password for an access token.
The token is saved to the session file and sent with every fetch.
The password is prompted for when --password is omitted.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginAPI, "api", "", "API base URL to save in the config (e.g., http://localhost:8000)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if loginAPI != "" {
		cfg.API.BaseURL = loginAPI
		if err := saveConfig(cfg); err != nil {
			fmt.Printf("Warning: Could not save API URL: %v\n", err)
		} else {
			fmt.Printf("✓ API URL saved to %s\n", getConfigPath())
		}
	}

	email := loginEmail
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Logging in to %s as %s...\n", cfg.GetBaseURL(), email)
	if _, err := client.Login(context.Background(), email, password); err != nil {
		var authErr *api.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("login failed: invalid email or password")
		}
		return err
	}

	fmt.Printf("✓ Logged in, session saved to %s\n", client.Session().Path())
	return nil
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(label)
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}
