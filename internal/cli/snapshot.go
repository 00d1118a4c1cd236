package cli

import (
	"fmt"

	"inkwell-cli/internal/history"
	"inkwell-cli/internal/snapshot"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Copy the collections to a blob store (fs, s3) and back",
		Long: `Snapshots are stored under snapshots/<id>/<resource>.json in the
configured blob store (snapshot.driver: fs, s3 or memory). Ids are UTC
timestamps; a snapshot is never overwritten.`,
	}
	cmd.AddCommand(newSnapshotCreateCmd(app))
	cmd.AddCommand(newSnapshotListCmd(app))
	cmd.AddCommand(newSnapshotRestoreCmd(app))
	return cmd
}

func newSnapshotCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Snapshot the current collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			blobs, err := snapshot.Open(cmd.Context(), app.cfg.snapshotConfig())
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			snap, err := snapshot.Create(cmd.Context(), blobs, b.gw, app.now())
			recordBestEffort(cmd, b, history.Event{Kind: history.KindSnapshot, OK: err == nil, Detail: snapDetail(blobs, snap.ID, err)})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, snap)
		},
	}
}

func newSnapshotListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			blobs, err := snapshot.Open(cmd.Context(), app.cfg.snapshotConfig())
			if err != nil {
				return writeErr(cmd, err)
			}
			snaps, err := snapshot.List(cmd.Context(), blobs)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, snapshotTable(snaps))
		},
	}
}

func newSnapshotRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot-id>",
		Short: "Replace the collections with a snapshot",
		Long: `Replace every collection with the copy stored in the snapshot. The data
files change like any other save; review and publish them afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobs, err := snapshot.Open(cmd.Context(), app.cfg.snapshotConfig())
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := app.openBackend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			err = snapshot.Restore(cmd.Context(), blobs, b.gw, args[0])
			recordBestEffort(cmd, b, history.Event{Kind: history.KindRestore, OK: err == nil, Detail: snapDetail(blobs, args[0], err)})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"restored": args[0]})
		},
	}
}

func snapDetail(b snapshot.Blobs, id string, err error) string {
	if err != nil {
		return fmt.Sprintf("%s %s: %v", b.Driver(), id, err)
	}
	return fmt.Sprintf("%s %s", b.Driver(), id)
}

func recordBestEffort(cmd *cobra.Command, b *backend, ev history.Event) {
	if err := b.recorder().Record(cmd.Context(), ev); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "history: %v\n", err)
	}
}
