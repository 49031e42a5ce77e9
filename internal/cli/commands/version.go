package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/health"
)

// NewVersionCmd creates the version command
func NewVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version and the API server's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.Context(), version)
		},
	}
}

func runVersion(ctx context.Context, version string, opts ...Option) error {
	r, err := newRuntime("/version", opts...)
	if err != nil {
		return err
	}

	r.printf("taskflow version %s\n", version)

	status, err := health.Check(ctx, r.httpClient, r.baseURL)
	if err != nil {
		// The server being unreachable is not a CLI failure
		r.printf("API %s: unreachable (%v)\n", r.baseURL, err)
		return nil
	}

	r.printf("API %s: %s (%s %s)\n", r.baseURL, status.Status, status.Service, status.Version)
	if health.VersionsDiffer(version, status.Version) {
		r.logger.Debug().Str("cli", version).Str("server", status.Version).Msg("CLI and server versions differ")
	}
	return nil
}
