package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dayguard/internal/config"
	"dayguard/internal/security"
)

func setPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-password",
		Short: "Set the parent password and derive the database encryption key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetPassword()
		},
	}
}

func runSetPassword() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		cfg = config.Default()
	}

	password, err := readPassword("New parent password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	cfg.Security.ParentPasswordHash = hash
	cfg.Database.EncryptionKey = security.DeriveEncryptionKey(password, cfg.Security.EncryptionSalt)

	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Println("parent password updated")
	return nil
}

// readPassword prompts on stdout and reads one line from stdin without
// echoing it back, falling back to a plain buffered read when stdin is not
// a terminal (e.g. piped input in tests).
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return trimNewline(line), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
