// Command growthlens collects Codeforces rating histories into snapshots and
// reports which practice patterns go along with rating growth.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/growthlens/internal/config"
	"github.com/okian/growthlens/pkg/logger"
)

// rootOptions carries the persistent flags and the loaded configuration to
// every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "growthlens",
		Short: "Rank practice patterns against Codeforces rating growth",
		Long: `growthlens turns rating histories into snapshots of five rated contests
paired with the practice that preceded them, then ranks problem tags and
difficulty buckets by how they go along with rating growth in three skill bands.`,
		SilenceUsage:      true,
		PersistentPreRunE: o.setup,
	}

	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default: $GROWTH_CONFIG)")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&o.logFormat, "log-format", "", "log format (text, json)")

	cmd.AddCommand(newCollectCmd(o))
	cmd.AddCommand(newAnalyzeCmd(o))
	cmd.AddCommand(newServeCmd(o))
	return cmd
}

// setup loads configuration (defaults -> optional file -> env -> flags) and
// sets up logging.
func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx, o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	o.cfg = cfg
	return nil
}

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
