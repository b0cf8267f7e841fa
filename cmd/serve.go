package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trotybot/wikirag/internal/progress"
	"github.com/trotybot/wikirag/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wiki assistant over HTTP",
	Long: `Starts an HTTP server exposing ask, search, and status endpoints plus a
WebSocket chat channel. The index is built on startup if needed.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (default from config)")
	serveCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if allowAll, _ := cmd.Flags().GetBool("allow-all-origins"); allowAll {
		cfg.Server.AllowAll = true
	}

	a, err := newApp(cfg, progress.NewReporter())
	if err != nil {
		return err
	}
	defer a.Close()

	// Build before accepting traffic; a stale index would otherwise block
	// the first request for the whole rebuild.
	if err := a.index.Ensure(ctx); err != nil {
		return err
	}
	fmt.Printf("Index ready: %d chunks\n", a.index.ChunkCount())

	srv := server.New(cfg.Server, a.engine, a.index, a.cache)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		fmt.Println("\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
