package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/internal/api"
)

var (
	registerEmail    string
	registerPassword string
	registerConfirm  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the energy API",
	Long: `Registers a new account. The password must be entered twice;
nothing is sent when the two entries differ.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerConfirm, "confirm", "", "Password confirmation (prompted when omitted)")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	email := registerEmail
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password := registerPassword
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}
	confirm := registerConfirm
	if confirm == "" {
		if confirm, err = promptPassword("Confirm password: "); err != nil {
			return err
		}
	}

	client := api.New(cfg.GetBaseURL(), cfg.GetTimeout(), nil)
	if err := client.Register(context.Background(), email, password, confirm); err != nil {
		if errors.Is(err, api.ErrPasswordMismatch) {
			fmt.Println("⚠ Passwords do not match")
		}
		return err
	}

	fmt.Printf("✓ Registered %s, run 'energyviz login --email %s' to continue\n", email, email)
	return nil
}
