package app

import (
	"context"
	"errors"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/deltalens/internal/web"
)

var serveFlagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web report viewer",
	Long: `Serve loads the sheet once and serves the report viewer. The browser
keeps the current report in its location hash, so back/forward buttons and
bookmarks work.

Examples:
  deltalens serve
  deltalens serve --addr :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlagAddr, "addr", "", "Listen address (default from config serve.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	log := newLogger()
	ld, err := loadData(ctx, log)
	if err != nil {
		return err
	}
	defer ld.Close()

	srv, err := web.NewServer(ld.data, web.Options{Info: ld.result.Info, LoadedAt: ld.result.LoadedAt}, log)
	if err != nil {
		return err
	}
	addr := serveFlagAddr
	if addr == "" {
		addr = ld.cfg.Serve.Addr
	}
	err = srv.Run(ctx, addr)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
