package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"inkwell-cli/internal/history"
	"inkwell-cli/internal/web"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var autoPublish bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for the data dir",
		Long: strings.TrimSpace(`
Serve the JSON API and a small status page for the data directory.

The listen address defaults to the addr config key (":8080"); PORT replaces
the port when INKWELL_ADDR is unset. Push and pull are refused for clients
outside the local network.
`),
		Example: strings.TrimSpace(`
# Serve ./data on :8080
inkwell serve

# Commit and push a minute after the last save
inkwell --dir ~/pens serve --addr 127.0.0.1:3000 --auto-publish
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Remote != "" {
				return writeErr(cmd, errors.New("serve: --remote makes no sense here; serve a local data dir"))
			}
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = app.cfg.Addr
			}
			if listenAddr == "" {
				return writeErr(cmd, errFlag("addr", "missing"))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			journal, err := history.Open(ctx, history.Path(app.Dir))
			if err != nil {
				return writeErr(cmd, err)
			}
			defer journal.Close()

			srv, err := web.NewServer(web.ServerConfig{
				Addr:                listenAddr,
				Dir:                 app.Dir,
				AutoPublish:         autoPublish || app.cfg.AutoPublish,
				AutoPublishDebounce: debounce,
				Journal:             journal,
				Logger:              log.New(cmd.ErrOrStderr(), "inkwell: ", log.LstdFlags),
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer srv.Close()
			srv.Prime(ctx)

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			_ = writeOut(cmd, app, map[string]any{
				"addr":        actualAddr,
				"url":         "http://" + actualAddr + "/",
				"dir":         app.Dir,
				"autoPublish": autoPublish || app.cfg.AutoPublish,
				"startedAt":   app.now().UTC().Format(time.RFC3339Nano),
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "inkwell serving %s at http://%s/\n", app.Dir, actualAddr)

			hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
			errc := make(chan error, 1)
			go func() { errc <- hs.Serve(ln) }()

			select {
			case err := <-errc:
				return writeErr(cmd, err)
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := hs.Shutdown(shutdownCtx); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port); defaults to the addr config key")
	cmd.Flags().BoolVar(&autoPublish, "auto-publish", false, "Commit and push the data files after saves settle")
	cmd.Flags().DurationVar(&debounce, "auto-publish-after", time.Minute, "Quiet period before an automatic publish")
	return cmd
}
