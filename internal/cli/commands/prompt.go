package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// promptValue returns value, or asks for it when empty and the terminal is
// interactive. flag names the flag that supplies it non-interactively.
func (r *runtime) promptValue(value, label, flag string, validate promptui.ValidateFunc) (string, error) {
	if value != "" {
		return value, nil
	}
	if !r.interactive {
		return "", fmt.Errorf("%s is required in non-interactive mode (use --%s)", strings.ToLower(label), flag)
	}

	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%s prompt cancelled: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(result), nil
}

// promptPassword reads a password without echo. hint tells non-interactive
// callers how to pass it instead.
func (r *runtime) promptPassword(value, hint string) (string, error) {
	if value != "" {
		return value, nil
	}
	if !r.interactive {
		return "", fmt.Errorf("password is required in non-interactive mode (%s)", hint)
	}

	fmt.Fprint(r.errOut, "Password: ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(r.errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

// confirm asks a yes/no question. assumeYes skips the prompt; without a
// terminal the answer is no.
func (r *runtime) confirm(label string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !r.interactive {
		return false, fmt.Errorf("confirmation required in non-interactive mode (use --yes)")
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("prompt cancelled: %w", err)
	}
	return true, nil
}

func notBlank(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("value cannot be empty")
	}
	return nil
}
