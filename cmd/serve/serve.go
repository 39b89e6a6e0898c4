// Package serve runs the HTTP API.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/api"
	"fjacquet/fintrack/internal/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var migrate bool

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API on the configured address. The acting user of every
request is taken from the X-User-ID header set by the authenticating proxy.`,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().BoolVar(&migrate, "migrate", true, "Migrate the database schema before serving")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	if migrate {
		if err := c.Migrate(); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              c.GetConfig().Server.Addr(),
		Handler:           api.NewRouter(c),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		root.Log.Info("Server listening", logging.F("address", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	root.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
