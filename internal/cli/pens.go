package cli

import (
	"fmt"

	"inkwell-cli/internal/model"
	"inkwell-cli/internal/store"
	"inkwell-cli/internal/views"

	"github.com/spf13/cobra"
)

func newPensCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pens",
		Aliases: []string{"pen"},
		Short:   "List and edit pens",
	}
	cmd.AddCommand(newPensListCmd(app))
	cmd.AddCommand(newPensAddCmd(app))
	cmd.AddCommand(newPensEditCmd(app))
	cmd.AddCommand(newPensRmCmd(app))
	return cmd
}

func newPensListCmd(app *App) *cobra.Command {
	var sortKey string
	var desc bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pens with fill counts and current ink",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := parseSort(sortKey, desc, views.PenSortKeys)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			rows := views.PenRows(s.Snapshot())
			views.SortPens(rows, state)
			return writeOut(cmd, app, penTable(rows))
		},
	}
	addSortFlags(cmd, &sortKey, &desc, views.PenSortKeys)
	return cmd
}

type penFlags struct {
	brand, model, color, nibSize, nibType string
}

func (f *penFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.brand, "brand", "", "Brand (required)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model (required)")
	cmd.Flags().StringVar(&f.color, "color", "", "Body colour")
	cmd.Flags().StringVar(&f.nibSize, "nib-size", "", "Nib size, e.g. EF, F, M, 0.7mm")
	cmd.Flags().StringVar(&f.nibType, "nib-type", "", "Nib material or grind")
}

// apply copies the flags that were set on the command line onto p.
func (f *penFlags) apply(cmd *cobra.Command, p *model.Pen) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("brand", &p.Brand, f.brand)
	set("model", &p.Model, f.model)
	set("color", &p.Color, f.color)
	set("nib-size", &p.NibSize, f.nibSize)
	set("nib-type", &p.NibType, f.nibType)
}

func newPensAddCmd(app *App) *cobra.Command {
	var f penFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			var p model.Pen
			f.apply(cmd, &p)
			p, err = s.AddPen(cmd.Context(), p)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, p)
		},
	}
	f.register(cmd)
	return cmd
}

func newPensEditCmd(app *App) *cobra.Command {
	var f penFlags

	cmd := &cobra.Command{
		Use:   "edit <pen-id>",
		Short: "Change fields of a pen; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			p, ok := s.Store.Pen(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("pen %s: %w", args[0], store.ErrNotFound))
			}
			f.apply(cmd, &p)
			p, err = s.EditPen(cmd.Context(), p)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, p)
		},
	}
	f.register(cmd)
	return cmd
}

func newPensRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <pen-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a pen (its refill entries are kept)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			if err := s.RemovePen(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"deleted": args[0]})
		},
	}
}
