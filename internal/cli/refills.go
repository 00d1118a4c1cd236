package cli

import (
	"fmt"
	"strings"

	"inkwell-cli/internal/model"
	"inkwell-cli/internal/store"
	"inkwell-cli/internal/views"

	"github.com/spf13/cobra"
)

func newRefillsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "refills",
		Aliases: []string{"refill", "log"},
		Short:   "List and edit the refill log",
	}
	cmd.AddCommand(newRefillsListCmd(app))
	cmd.AddCommand(newRefillsAddCmd(app))
	cmd.AddCommand(newRefillsEditCmd(app))
	cmd.AddCommand(newRefillsRmCmd(app))
	return cmd
}

func newRefillsListCmd(app *App) *cobra.Command {
	var brand string
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List refills newest first, one page at a time",
		Example: strings.TrimSpace(`
  inkwell refills list --brand Pilot --per-page 5 --page 2
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := views.ParsePageSize(perPage)
			if err != nil {
				return writeErr(cmd, errFlag("per-page", err.Error()))
			}
			if page < 1 {
				return writeErr(cmd, errFlag("page", "must be 1 or more"))
			}
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			res := views.PageRefills(s.Store.RefillViews(),
				views.RefillFilter{PenBrand: strings.TrimSpace(brand)},
				views.Page{Index: page - 1, Size: size})
			return writeOut(cmd, app, refillTable(res))
		},
	}
	cmd.Flags().StringVar(&brand, "brand", "", "Only refills of pens with this brand")
	cmd.Flags().IntVar(&page, "page", 1, "Page number (clamped to the last page)")
	cmd.Flags().IntVar(&perPage, "per-page", views.DefaultPageSize, fmt.Sprintf("Rows per page %v", views.PageSizes))
	return cmd
}

type refillFlags struct {
	pen   string
	inks  []string
	date  string
	notes string
}

func (f *refillFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.pen, "pen", "", "Pen id (required)")
	cmd.Flags().StringSliceVar(&f.inks, "ink", nil, "Ink id; repeat or comma-separate for mixes (first is the main ink)")
	cmd.Flags().StringVar(&f.date, "date", "", "Fill date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-form notes")
}

func (f *refillFlags) apply(cmd *cobra.Command, e *model.RefillLogEntry) error {
	if cmd.Flags().Changed("pen") {
		e.PenID = strings.TrimSpace(f.pen)
	}
	if cmd.Flags().Changed("ink") {
		e.InkIDs = e.InkIDs[:0:0]
		for _, id := range f.inks {
			if id = strings.TrimSpace(id); id != "" {
				e.InkIDs = append(e.InkIDs, id)
			}
		}
	}
	if cmd.Flags().Changed("date") {
		d, err := model.ParseDate(f.date)
		if err != nil {
			return errFlag("date", err.Error())
		}
		e.Date = d
	}
	if cmd.Flags().Changed("notes") {
		e.Notes = f.notes
	}
	return nil
}

func newRefillsAddCmd(app *App) *cobra.Command {
	var f refillFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record filling a pen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := model.RefillLogEntry{Date: model.NewDate(app.now().Date())}
			if err := f.apply(cmd, &e); err != nil {
				return writeErr(cmd, err)
			}
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			e, err = s.AddRefill(cmd.Context(), e)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, e)
		},
	}
	f.register(cmd)
	return cmd
}

func newRefillsEditCmd(app *App) *cobra.Command {
	var f refillFlags

	cmd := &cobra.Command{
		Use:   "edit <refill-id>",
		Short: "Change a refill entry; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			e, ok := s.Store.Refill(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("refill %s: %w", args[0], store.ErrNotFound))
			}
			if err := f.apply(cmd, &e); err != nil {
				return writeErr(cmd, err)
			}
			e, err = s.EditRefill(cmd.Context(), e)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, e)
		},
	}
	f.register(cmd)
	return cmd
}

func newRefillsRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <refill-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a refill entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			if err := s.RemoveRefill(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"deleted": args[0]})
		},
	}
}

func newInkedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inked",
		Short: "Show every pen with its latest fill, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			return writeOut(cmd, app, inkedTable(views.CurrentlyInked(s.Snapshot())))
		},
	}
}
