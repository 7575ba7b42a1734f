package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/hyphen/internal/server"
	"github.com/conneroisu/hyphen/internal/watcher"
)

// reloadDelay debounces editor saves that touch a file several times.
const reloadDelay = 300 * time.Millisecond

var serveDicts []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve hyphenation over HTTP and WebSocket",
	Long: `Start an HTTP server exposing the loaded dictionaries.

Endpoints:
  POST /api/hyphenate       {"text": "...", "language": "en-US", "mark": "-", "html": false}
  POST /api/possibilities   {"text": "...", "language": "en-US"}
  GET  /api/dictionaries
  GET  /health
  GET  /ws                  JSON requests and reload notifications

With --watch the dictionary files are reloaded when they change, and
connected WebSocket clients are told about it.

Examples:
  hyphen serve --dict en-US=hyph-en-us.tex --dict de=hyph-de-1996.tex
  hyphen serve --port 9000 --host 0.0.0.0`,
	PreRunE: bindFlags(map[string]string{
		"port":  "server.port",
		"host":  "server.host",
		"watch": "server.watch",
	}),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringArrayVarP(&serveDicts, "dict", "d", nil, "Dictionary file as path or lang=path (repeatable)")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("watch", true, "Reload dictionary files when they change")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := loadRegistry(ctx, cfg, logger, serveDicts)
	if err != nil {
		return err
	}
	if len(reg.List()) == 0 {
		logger.Warn(ctx, nil, "No dictionaries loaded, hyphenation requests will fail")
	}

	srv := server.New(cfg, reg, logger.WithComponent("server"))

	if sources := reg.Sources(); cfg.Server.Watch && len(sources) > 0 {
		fw, err := watcher.WatchSources(ctx, reg, sources, reloadDelay,
			logger, srv.NotifyReload)
		if err != nil {
			return err
		}
		defer fw.Stop()
		logger.Info(ctx, "Watching dictionary files", "count", len(sources))
	}

	return srv.Start(ctx)
}
