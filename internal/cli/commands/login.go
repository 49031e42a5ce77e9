package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/auth"
	"github.com/haroonyaqubi/task-flow-app/internal/cli/client"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the taskflow API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set TASKFLOW_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set TASKFLOW_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, username, password string, opts ...Option) error {
	// Environment variables are useful for scripts and CI
	if username == "" {
		username = os.Getenv("TASKFLOW_USERNAME")
	}
	if password == "" {
		password = os.Getenv("TASKFLOW_PASSWORD")
	}

	r, err := newRuntime(client.LoginLocation, opts...)
	if err != nil {
		return err
	}

	username, err = r.promptValue(username, "Username", "username", notBlank)
	if err != nil {
		return err
	}
	password, err = r.promptPassword(password, "use --password flag or TASKFLOW_PASSWORD env var")
	if err != nil {
		return err
	}

	r.printf("Logging in to %s as %s...\n", r.client.BaseURL(), username)

	svc := auth.NewService(r.client, r.logger)
	res := svc.Login(ctx, username, password)
	if !res.Success {
		return failed("login failed", svc.Err(), res.Error)
	}

	r.printf("✓ %s!\n", res.Data.Message)
	if user := res.Data.User; user != nil {
		r.printf("  User: %s (%s)\n", user.DisplayName(), user.Email)
		if user.IsAdmin {
			r.printf("  Role: Admin\n")
		}
	}
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context())
		},
	}
}

func runLogout(ctx context.Context, opts ...Option) error {
	r, err := newRuntime("/logout", opts...)
	if err != nil {
		return err
	}

	svc := auth.NewService(r.client, r.logger)
	if !svc.IsAuthenticated() {
		r.printf("Not logged in.\n")
		return nil
	}
	if err := svc.Logout(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	r.printf("✓ Logged out\n")
	return nil
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context())
		},
	}
}

func runWhoami(ctx context.Context, opts ...Option) error {
	r, err := newRuntime("/profile", opts...)
	if err != nil {
		return err
	}
	if err := r.requireSession(); err != nil {
		return err
	}

	svc := auth.NewService(r.client, r.logger)
	res := svc.LoadUser(ctx)
	if !res.Success {
		return failed("failed to load profile", svc.Err(), res.Error)
	}

	user := res.Data
	r.printf("Username: %s\n", user.Username)
	if name := user.DisplayName(); name != user.Username {
		r.printf("Name:     %s\n", name)
	}
	if user.Email != "" {
		r.printf("Email:    %s\n", user.Email)
	}
	if user.IsAdmin {
		r.printf("Role:     Admin\n")
	}
	return nil
}
