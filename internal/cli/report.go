package cli

import (
	"fmt"
	"strings"

	"inkwell-cli/internal/report"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var raw bool
	var style string
	var width int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print an inventory summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			md := report.Markdown(s.Snapshot())
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(style),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := r.Render(md)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the Markdown source")
	cmd.Flags().StringVar(&style, "style", envOr("INKWELL_REPORT_STYLE", "dark"), "glamour style (dark|light|notty|ascii)")
	cmd.Flags().IntVar(&width, "width", 100, "Wrap width")
	return cmd
}
