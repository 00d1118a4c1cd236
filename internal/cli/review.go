package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"inkwell-cli/internal/history"
	"inkwell-cli/internal/review"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newReviewCmd(app *App) *cobra.Command {
	var publish bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Show the unpublished changes to the data files",
		Long: `Show the pending diff of the data files, coloured by line kind.

With --publish the changes are committed and pushed after they are shown.
Nothing is published when the diff is empty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			flow := review.NewWorkflow(b.pub, nil)
			d, err := flow.Review(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if asJSON {
				if err := writeOut(cmd, app, d); err != nil {
					return err
				}
			} else {
				printDiff(cmd.OutOrStdout(), d)
			}
			if !publish || !d.HasChanges {
				return nil
			}
			return runSync(cmd, app, b, history.KindPublish, flow.Publish)
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "Commit and push after showing the diff")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the diff as a JSON object instead of coloured text")
	return cmd
}

func newPublishCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Commit the data files with a timestamped message and push",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()
			return runSync(cmd, app, b, history.KindPublish, review.NewWorkflow(b.pub, nil).Publish)
		},
	}
}

func newPullCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Pull (rebase) the latest data from the remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()
			return runSync(cmd, app, b, history.KindPull, review.NewWorkflow(b.pub, nil).Pull)
		},
	}
}

// runSync runs a publish or pull, journals it and prints the result. On
// failure the raw git output goes to stderr.
func runSync(cmd *cobra.Command, app *App, b *backend, kind history.Kind, fn func(context.Context) (review.SyncResult, error)) error {
	res, err := fn(cmd.Context())

	ev := history.Event{Kind: kind, OK: err == nil, Detail: res.Message}
	var pe *review.PublishError
	if errors.As(err, &pe) {
		ev.Detail = pe.Details()
	}
	if !b.remote() {
		if rerr := b.recorder().Record(cmd.Context(), ev); rerr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "history: %v\n", rerr)
		}
	}

	if err != nil {
		if pe != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), pe.Details())
		}
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, res)
}

func printDiff(w io.Writer, d review.DiffResult) {
	out := termenv.NewOutput(w)
	lines := review.Lines(d.Diff)
	for _, ln := range lines {
		s := out.String(ln.Text)
		switch ln.Kind {
		case review.Addition:
			s = s.Foreground(out.Color("2"))
		case review.Removal:
			s = s.Foreground(out.Color("1"))
		case review.Hunk:
			s = s.Foreground(out.Color("6"))
		default:
			s = s.Faint()
		}
		fmt.Fprintln(w, s)
	}
	if d.HasChanges {
		added, removed := review.Stats(lines)
		fmt.Fprintln(w, out.String(fmt.Sprintf("%d added, %d removed", added, removed)).Bold())
	}
}
