// Package cli implements the auth-harness command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/chains"
	"github.com/mark3labs/auth-harness/config"
	"github.com/mark3labs/auth-harness/engine"
	"github.com/mark3labs/auth-harness/harness"
	enginehttp "github.com/mark3labs/auth-harness/http"
	"github.com/mark3labs/auth-harness/logging"
)

// Version is the release reported by --version and the MCP server.
var Version = "0.1.0"

// Exit codes.
const (
	ExitOK           = 0
	ExitVerifyFailed = 1
	ExitError        = 2
)

// usageCode labels errors that never reached a component, such as flag parse errors.
const usageCode = "USAGE"

// app carries what the root command resolves before any subcommand runs.
type app struct {
	viper      *viper.Viper
	configFile string
	cfg        config.Config
	logger     *zap.Logger
	harness    *harness.Harness
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{viper: config.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "auth-harness",
		Short: "Exercise blockchain signature verification against a CKB-style auth engine",
		Long: `auth-harness derives account fingerprints, generates signing targets and
verifies signatures for Solana and Ethereum accounts by submitting them to a
verification engine under a fixed cycle budget.

The engine is in-process unless --engine-url points at a remote engine
started with "auth-harness serve".`,
		Version:           Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Path to config file (yaml, toml or json)")
	flags.Uint64(config.KeyCycleBudget, engine.DefaultCycleBudget, "Cycle budget of each engine call")
	flags.String(config.KeyEngineURL, "", "Remote engine URL (default: in-process engine)")
	flags.String(config.KeyEngineSecret, "", "Shared secret for remote engine authentication")
	flags.String(config.KeyLogLevel, logging.DefaultLevel, "Log level (debug, info, warn, error)")

	for _, name := range chains.Names() {
		root.AddCommand(newChainCmd(a, name))
	}
	root.AddCommand(newSupportedCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newMCPCmd(a))
	root.AddCommand(newEncodeCmd())
	root.AddCommand(newDecodeCmd())

	return root
}

// setup resolves configuration, logging and the engine for the command about to run.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		switch f.Name {
		case config.KeyCycleBudget, config.KeyEngineURL, config.KeyEngineSecret, config.KeyLogLevel, config.KeyListen:
			if err := a.viper.BindPFlag(f.Name, f); err != nil && bindErr == nil {
				bindErr = err
			}
		}
	})
	if bindErr != nil {
		return authharness.NewError(authharness.ErrCodeInternal, "failed to bind flags", bindErr)
	}

	if err := config.ReadFile(a.viper, a.configFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.viper)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return authharness.InvalidConfig(config.KeyLogLevel, err.Error())
	}
	a.logger = logger

	e, err := a.newEngine()
	if err != nil {
		return err
	}
	a.harness = harness.New(e, harness.WithCycleBudget(cfg.CycleBudget), harness.WithLogger(logger))

	logger.Debug("configured",
		zap.Uint64("cycle_budget", cfg.CycleBudget),
		zap.String("engine_url", cfg.EngineURL),
		zap.String("config_file", a.viper.ConfigFileUsed()))
	return nil
}

func (a *app) newEngine() (engine.Engine, error) {
	if a.cfg.EngineURL == "" {
		return engine.NewLocal(engine.WithLogger(a.logger)), nil
	}
	opts := []enginehttp.ClientOption{enginehttp.WithClientLogger(a.logger)}
	if a.cfg.EngineSecret != "" {
		opts = append(opts, enginehttp.WithSecret(a.cfg.EngineSecret))
	}
	client, err := enginehttp.NewEngineClient(a.cfg.EngineURL, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		Report(stderr, err)
	}
	return ExitCode(err)
}

// ExitCode maps err to the process exit code: 0 on success, 1 when the
// engine rejected verification and 2 for every other failure.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case authharness.IsEngineError(err):
		return ExitVerifyFailed
	default:
		return ExitError
	}
}

// Report writes the user-facing description of err.
func Report(w io.Writer, err error) {
	var e *authharness.Error
	switch {
	case authharness.IsEngineError(err):
		fmt.Fprintf(w, "verification failed: %v\n", err)
	case errors.As(err, &e):
		fmt.Fprintf(w, "error [%s]: %v\n", e.Code, err)
	default:
		fmt.Fprintf(w, "error [%s]: %v\n", usageCode, err)
	}
}
