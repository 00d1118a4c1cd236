package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newIsLocalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "is-local",
		Short: "Ask the --remote server whether this machine counts as local",
		Long: `Ask the server configured by --remote (or the remote config key) whether
requests from this machine come from the local network, which is required
for publish and pull. When the server cannot be reached the answer is
reported as local and the error goes to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()
			if !b.remote() {
				return writeErr(cmd, errors.New("is-local needs --remote"))
			}

			loc, err := b.client.IsLocal(cmd.Context())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "is-local: %v\n", err)
			}
			return writeOut(cmd, app, loc)
		},
	}
}

func newHealthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the --remote server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()
			if !b.remote() {
				return writeErr(cmd, errors.New("health needs --remote"))
			}

			h, err := b.client.Health(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, h)
		},
	}
}
