package cli

import (
	"errors"

	"inkwell-cli/internal/gateway"
	"inkwell-cli/internal/gitrepo"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var remoteURL string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data dir and make it a git repository",
		Long: `Create the data dir with empty inks.json, pens.json and refillLog.json
plus meta.json. Unless --no-git is given the dir becomes a git repository
(when it is not inside one already) and --remote-url sets origin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Remote != "" {
				return writeErr(cmd, errors.New("init works on a local data dir; drop --remote"))
			}
			disk, err := gateway.NewDisk(app.Dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := disk.Ensure(); err != nil {
				return writeErr(cmd, err)
			}

			out := map[string]any{"dir": disk.Dir(), "files": gateway.Files()}
			if noGit {
				return writeOut(cmd, app, out)
			}

			st, err := gitrepo.GetStatus(cmd.Context(), app.Dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !st.IsRepo {
				if err := gitrepo.Init(cmd.Context(), app.Dir); err != nil {
					return writeErr(cmd, err)
				}
			}
			if remoteURL != "" {
				if err := gitrepo.SetRemoteURL(cmd.Context(), app.Dir, "origin", remoteURL); err != nil {
					return writeErr(cmd, err)
				}
			}
			if st, err = gitrepo.GetStatus(cmd.Context(), app.Dir); err != nil {
				return writeErr(cmd, err)
			}
			out["git"] = st
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().StringVar(&remoteURL, "remote-url", "", "Set the origin remote URL")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "Only create the data files")
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show git status of the data dir (branch, upstream, ahead/behind)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Remote != "" {
				return writeErr(cmd, errors.New("status reads the local repository; drop --remote"))
			}
			st, err := gitrepo.GetStatus(cmd.Context(), app.Dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, st)
		},
	}
}
