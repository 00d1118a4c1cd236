package cli

import (
	"fmt"

	"inkwell-cli/internal/model"
	"inkwell-cli/internal/store"
	"inkwell-cli/internal/views"

	"github.com/spf13/cobra"
)

func newInksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inks",
		Aliases: []string{"ink"},
		Short:   "List and edit inks",
	}
	cmd.AddCommand(newInksListCmd(app))
	cmd.AddCommand(newInksAddCmd(app))
	cmd.AddCommand(newInksEditCmd(app))
	cmd.AddCommand(newInksRmCmd(app))
	return cmd
}

func newInksListCmd(app *App) *cobra.Command {
	var sortKey string
	var desc bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inks with usage counts and the pens holding them",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := parseSort(sortKey, desc, views.InkSortKeys)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			rows := views.InkRows(s.Snapshot())
			views.SortInks(rows, state)
			return writeOut(cmd, app, inkTable(rows))
		},
	}
	addSortFlags(cmd, &sortKey, &desc, views.InkSortKeys)
	return cmd
}

type inkFlags struct {
	brand, collection, name string
}

func (f *inkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.brand, "brand", "", "Brand (required)")
	cmd.Flags().StringVar(&f.collection, "collection", "", "Product line, e.g. Iroshizuku")
	cmd.Flags().StringVar(&f.name, "name", "", "Colour name (required)")
}

func (f *inkFlags) apply(cmd *cobra.Command, i *model.Ink) {
	if cmd.Flags().Changed("brand") {
		i.Brand = f.brand
	}
	if cmd.Flags().Changed("collection") {
		i.Collection = f.collection
	}
	if cmd.Flags().Changed("name") {
		i.Name = f.name
	}
}

func newInksAddCmd(app *App) *cobra.Command {
	var f inkFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an ink",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			var ink model.Ink
			f.apply(cmd, &ink)
			ink, err = s.AddInk(cmd.Context(), ink)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ink)
		},
	}
	f.register(cmd)
	return cmd
}

func newInksEditCmd(app *App) *cobra.Command {
	var f inkFlags

	cmd := &cobra.Command{
		Use:   "edit <ink-id>",
		Short: "Change fields of an ink; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			ink, ok := s.Store.Ink(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("ink %s: %w", args[0], store.ErrNotFound))
			}
			f.apply(cmd, &ink)
			ink, err = s.EditInk(cmd.Context(), ink)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ink)
		},
	}
	f.register(cmd)
	return cmd
}

func newInksRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <ink-id>",
		Aliases: []string{"delete"},
		Short:   "Delete an ink (refill entries keep its id)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, b, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			if err := s.RemoveInk(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"deleted": args[0]})
		},
	}
}
