package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"inkwell-cli/internal/client"
	"inkwell-cli/internal/format"
	"inkwell-cli/internal/gateway"
	"inkwell-cli/internal/history"
	"inkwell-cli/internal/inventory"
	"inkwell-cli/internal/review"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigFile string
	Dir        string
	Remote     string
	PrettyJSON bool
	Format     string

	cfg Config
	now func() time.Time
}

func NewRootCmd() *cobra.Command {
	app := &App{now: time.Now}

	cmd := &cobra.Command{
		Use:           "inkwell",
		Short:         "Fountain pen, ink and refill inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  inkwell

  # Record a fill
  inkwell pens add --brand Pilot --model "Custom 74" --nib-size F
  inkwell refills add --pen <pen-id> --ink <ink-id>

  # See what changed, then publish it
  inkwell review --publish

  # Serve the HTTP API
  inkwell serve
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := app.configure(); err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return writeErr(cmd, err)
	})

	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", envOr("INKWELL_CONFIG", ""), "Config file (default: ./inkwell.yaml, then ~/.config/inkwell/inkwell.yaml)")
	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Data directory (overrides data_dir)")
	cmd.PersistentFlags().StringVar(&app.Remote, "remote", "", "Base URL of an inkwell server; when set, reads and writes go over HTTP")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|table)")

	cmd.AddCommand(newPensCmd(app))
	cmd.AddCommand(newInksCmd(app))
	cmd.AddCommand(newRefillsCmd(app))
	cmd.AddCommand(newInkedCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newReviewCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newPullCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newIsLocalCmd(app))
	cmd.AddCommand(newHealthCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newSnapshotCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// configure merges the config file and environment under the global flags.
func (app *App) configure() error {
	cfg, err := loadConfig(app.ConfigFile)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(app.Dir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(app.Remote); v != "" {
		cfg.Remote = v
	}
	if v := strings.TrimSpace(app.Format); v != "" {
		cfg.Format = v
	}
	app.Dir, app.Remote, app.Format = cfg.DataDir, cfg.Remote, cfg.Format
	app.cfg = cfg
	return nil
}

// backend is either the local data dir plus git, or a remote server.
type backend struct {
	gw      gateway.Gateway
	pub     review.Publisher
	client  *client.Client
	journal *history.Journal
}

func (b *backend) remote() bool { return b.client != nil }

func (b *backend) recorder() history.Recorder {
	if b.journal == nil {
		return history.Nop
	}
	return b.journal
}

func (b *backend) Close() error {
	if b.journal != nil {
		return b.journal.Close()
	}
	return nil
}

func (app *App) openBackend(ctx context.Context) (*backend, error) {
	if app.Remote != "" {
		c, err := client.New(app.Remote)
		if err != nil {
			return nil, err
		}
		return &backend{gw: c, pub: c, client: c}, nil
	}

	disk, err := gateway.NewDisk(app.Dir)
	if err != nil {
		return nil, err
	}
	if err := disk.Ensure(); err != nil {
		return nil, err
	}
	j, err := history.Open(ctx, history.Path(app.Dir))
	if err != nil {
		return nil, err
	}
	return &backend{
		gw:      disk,
		pub:     review.LocalPublisher{Dir: app.Dir, Paths: gateway.Files(), Now: app.now},
		journal: j,
	}, nil
}

// openSession loads every collection into a fresh session. The caller closes
// the returned backend.
func (app *App) openSession(cmd *cobra.Command) (*inventory.Session, *backend, error) {
	b, err := app.openBackend(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	s := inventory.New(b.gw,
		inventory.WithNotifier(newNotifier(cmd.ErrOrStderr())),
		inventory.WithJournal(b.recorder()),
	)
	if err := s.Open(cmd.Context()); err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	return s, b, nil
}

// newNotifier prints save outcomes as coloured status lines.
func newNotifier(w io.Writer) gateway.Notifier {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	return gateway.NotifierFunc(func(n gateway.Notice) {
		if n.Kind == gateway.NoticeError {
			_, _ = bad.Fprintln(w, n.Message)
			return
		}
		_, _ = ok.Fprintln(w, n.Message)
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
