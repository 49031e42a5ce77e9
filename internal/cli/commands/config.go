package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/userconfig"
)

// NewConfigCmd creates the config command group
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change CLI settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the API address in use and where it comes from",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-url <api-base-url>",
		Short: "Set the API base URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := userconfig.SetAPIBaseURL(args[0]); err != nil {
				return err
			}
			path, _ := userconfig.GetConfigPath()
			fmt.Fprintf(cmd.OutOrStdout(), "✓ API base URL saved to %s\n", path)
			return nil
		},
	})

	return cmd
}

func runConfigShow(out io.Writer) error {
	baseURL, err := userconfig.ResolveBaseURL()
	if err != nil {
		return err
	}

	source := "default"
	if os.Getenv(userconfig.EnvAPIBaseURL) != "" {
		source = userconfig.EnvAPIBaseURL
	} else if cfg, err := userconfig.Load(); err == nil && cfg.APIBaseURL != "" {
		source, _ = userconfig.GetConfigPath()
	}

	fmt.Fprintf(out, "API base URL: %s\n", baseURL)
	fmt.Fprintf(out, "Source:       %s\n", source)
	return nil
}
