package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/auth"
	"github.com/haroonyaqubi/task-flow-app/internal/cli/client"
)

type registerOptions struct {
	username      string
	email         string
	firstName     string
	lastName      string
	password      string
	acceptPrivacy bool
}

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var o registerOptions

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a taskflow account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), o)
		},
	}

	cmd.Flags().StringVar(&o.username, "username", "", "Username")
	cmd.Flags().StringVar(&o.email, "email", "", "Email address")
	cmd.Flags().StringVar(&o.firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&o.lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&o.password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().BoolVar(&o.acceptPrivacy, "accept-privacy", false, "Consent to the processing of your personal data")

	return cmd
}

func runRegister(ctx context.Context, o registerOptions, opts ...Option) error {
	r, err := newRuntime("/register", opts...)
	if err != nil {
		return err
	}

	if o.username, err = r.promptValue(o.username, "Username", "username", notBlank); err != nil {
		return err
	}
	if o.email, err = r.promptValue(o.email, "Email", "email", notBlank); err != nil {
		return err
	}
	if o.password, err = r.promptPassword(o.password, "use --password flag"); err != nil {
		return err
	}
	if !o.acceptPrivacy && r.interactive {
		o.acceptPrivacy, err = r.confirm("Do you consent to the processing of your personal data", false)
		if err != nil {
			return err
		}
	}

	svc := auth.NewService(r.client, r.logger)
	res := svc.Register(ctx, client.RegisterRequest{
		Username:       o.username,
		FirstName:      o.firstName,
		LastName:       o.lastName,
		Email:          o.email,
		Password:       o.password,
		PrivacyConsent: o.acceptPrivacy,
	})
	if !res.Success {
		return failed("registration failed", svc.Err(), res.Error)
	}

	r.printf("✓ %s\n", res.Data)
	r.printf("\nNext step: taskflow login --username %s\n", o.username)
	return nil
}
