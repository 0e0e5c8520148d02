package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// PasswordEnv is read before prompting, for scripted use.
const PasswordEnv = "FINTRACK_PASSWORD"

// ReadPassword returns the password from PasswordEnv or asks for it
// interactively with input hidden.
func ReadPassword(title string) (string, error) {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}

	var pw string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if s == "" {
				return errors.New("password cannot be empty")
			}
			return nil
		}).
		Value(&pw).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", fmt.Errorf("password prompt cancelled")
		}
		return "", fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}
