package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/chains"
	"github.com/mark3labs/auth-harness/config"
	"github.com/mark3labs/auth-harness/engine"
	enginehttp "github.com/mark3labs/auth-harness/http"
	"github.com/mark3labs/auth-harness/mcp"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the in-process engine over HTTP",
		Long: `Serve the in-process engine over HTTP for other harness instances to use
with --engine-url. With --engine-secret set, every request must carry a
bearer token signed with the same secret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []enginehttp.HandlerOption{enginehttp.WithHandlerLogger(a.logger)}
			if a.cfg.EngineSecret != "" {
				auth, err := enginehttp.NewTokenAuth(a.cfg.EngineSecret)
				if err != nil {
					return authharness.InvalidConfig(config.KeyEngineSecret, err.Error())
				}
				opts = append(opts, enginehttp.WithAuth(auth))
			}
			handler := enginehttp.NewEngineHandler(engine.NewLocal(engine.WithLogger(a.logger)), opts...)
			return serveHTTP(cmd.Context(), a.cfg.Listen, handler, a.logger, func(addr net.Addr) {
				fmt.Fprintf(cmd.OutOrStdout(), "engine listening on http://%s\n", addr)
			})
		},
	}
	cmd.Flags().String(config.KeyListen, config.DefaultListen, "Address to listen on")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	var overHTTP bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve parse, generate and verify as MCP tools",
		Long: `Serve <chain>_parse, <chain>_generate and <chain>_verify as MCP tools,
over stdio by default or over streamable HTTP with --http.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := mcp.NewServer("auth-harness", Version, chains.Variants(a.harness), mcp.WithLogger(a.logger))
			if !overHTTP {
				if err := srv.ServeStdio(); err != nil {
					return authharness.NewError(authharness.ErrCodeInternal, "mcp server stopped", err)
				}
				return nil
			}
			return serveHTTP(cmd.Context(), a.cfg.Listen, srv.Handler(), a.logger, func(addr net.Addr) {
				fmt.Fprintf(cmd.OutOrStdout(), "mcp listening on http://%s/mcp\n", addr)
			})
		},
	}
	cmd.Flags().BoolVar(&overHTTP, "http", false, "Serve over streamable HTTP instead of stdio")
	cmd.Flags().String(config.KeyListen, config.DefaultListen, "Address to listen on with --http")
	return cmd
}

// serveHTTP serves handler on addr until ctx is done, then shuts down gracefully.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return authharness.InvalidConfig(config.KeyListen, fmt.Sprintf("cannot listen on %s: %v", addr, err))
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ready(ln.Addr())
	logger.Info("serving", zap.Stringer("addr", ln.Addr()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return authharness.NewError(authharness.ErrCodeInternal, "server stopped", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return authharness.NewError(authharness.ErrCodeInternal, "shutdown failed", err)
	}
	return nil
}
