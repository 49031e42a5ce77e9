package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/client"
)

// NewContactCmd creates the contact command
func NewContactCmd() *cobra.Command {
	var msg client.ContactMessage

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the taskflow team",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContact(cmd.Context(), msg)
		},
	}

	cmd.Flags().StringVar(&msg.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&msg.Email, "email", "", "Your email address")
	cmd.Flags().StringVar(&msg.Subject, "subject", "", "Subject")
	cmd.Flags().StringVar(&msg.Message, "message", "", "Message")

	return cmd
}

func runContact(ctx context.Context, msg client.ContactMessage, opts ...Option) error {
	r, err := newRuntime("/contact", opts...)
	if err != nil {
		return err
	}

	if msg.Name, err = r.promptValue(msg.Name, "Name", "name", notBlank); err != nil {
		return err
	}
	if msg.Email, err = r.promptValue(msg.Email, "Email", "email", notBlank); err != nil {
		return err
	}
	if msg.Subject, err = r.promptValue(msg.Subject, "Subject", "subject", notBlank); err != nil {
		return err
	}
	if msg.Message, err = r.promptValue(msg.Message, "Message", "message", notBlank); err != nil {
		return err
	}

	res := r.client.Contact().Send(ctx, msg)
	if !res.Success {
		return failed("failed to send message", contactErrorMessage(res.Error), res.Error)
	}

	r.printf("✓ %s\n", res.Data.Success)
	r.printf("  Reference: %s\n", res.Data.Reference)
	return nil
}

// contactErrorMessage reports the server's "error", else the first field
// error, else the transport message
func contactErrorMessage(e *client.APIError) string {
	if msg := e.StringField("error"); msg != "" {
		return msg
	}
	for _, field := range []string{"name", "email", "subject", "message"} {
		if msg := e.FirstFieldError(field); msg != "" {
			return field + ": " + msg
		}
	}
	return e.Message
}
