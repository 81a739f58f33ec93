package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/roivaz/drata-compliance-mcp/internal/config"
	"github.com/roivaz/drata-compliance-mcp/internal/logging"
	"github.com/roivaz/drata-compliance-mcp/internal/mcp"
)

func main() {
	root := &cobra.Command{
		Use:           "mcp-server",
		Short:         "Drata compliance MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	config.AddClientFlags(root)
	root.PersistentFlags().String("transport", "stdio", "MCP transport: stdio or http")
	root.PersistentFlags().Int("port", 8000, "HTTP port")
	root.PersistentFlags().String("host", "0.0.0.0", "HTTP host")
	root.PersistentFlags().String("endpoint-path", "/mcp/jsonrpc", "HTTP path of the MCP endpoint")

	config.Init(root)

	if err := root.Execute(); err != nil {
		log.Fatalf("mcp-server: %v", err)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	logger := logging.New(logging.NewLogr(config.LogLevel())).WithName("mcp-server")

	cfg, err := mcp.DefaultConfig(logger)
	if err != nil {
		return err
	}
	srv := mcp.New(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch transport := config.Transport(); transport {
	case "stdio":
		logger.Info("serving MCP over stdio")
		err := server.NewStdioServer(srv.MCP).Listen(ctx, os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case "http":
		return serveHTTP(ctx, logger, srv)
	default:
		return fmt.Errorf("unsupported transport %q", transport)
	}
}

func serveHTTP(ctx context.Context, logger logging.Logger, srv *mcp.Server) error {
	addr := config.Host() + ":" + strconv.Itoa(config.Port())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("MCP server listening", "addr", addr, "path", config.EndpointPath())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
