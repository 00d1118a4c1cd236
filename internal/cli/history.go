package cli

import (
	"errors"

	"inkwell-cli/internal/history"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent saves, publishes, pulls and snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Remote != "" {
				return writeErr(cmd, errors.New("history is kept next to the data dir; run it on the server"))
			}
			if limit <= 0 {
				return writeErr(cmd, errFlag("limit", "must be positive"))
			}
			j, err := history.Open(cmd.Context(), history.Path(app.Dir))
			if err != nil {
				return writeErr(cmd, err)
			}
			defer j.Close()

			events, err := j.List(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, historyTable(events))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of events, newest first")
	return cmd
}
