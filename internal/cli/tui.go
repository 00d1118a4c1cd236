package cli

import (
	"inkwell-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and publish the inventory interactively (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	b, err := app.openBackend(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer b.Close()

	return tui.Run(cmd.Context(), tui.Options{
		Gateway:   b.gw,
		Publisher: b.pub,
		Journal:   b.recorder(),
	})
}
