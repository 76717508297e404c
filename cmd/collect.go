package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/okian/growthlens/internal/adapters/cache"
	"github.com/okian/growthlens/internal/adapters/codeforces"
	"github.com/okian/growthlens/internal/adapters/listing"
	workerpool "github.com/okian/growthlens/internal/adapters/mq/worker"
	"github.com/okian/growthlens/internal/adapters/repository"
	service "github.com/okian/growthlens/internal/app"
	"github.com/okian/growthlens/internal/config"
	"github.com/okian/growthlens/internal/domain/dedupe"
	"github.com/okian/growthlens/pkg/logger"
)

var errNoHandles = errors.New("no handles to collect")

type collectFlags struct {
	handles    []string
	output     string
	keepGoing  bool
	noProgress bool
}

func newCollectCmd(o *rootOptions) *cobra.Command {
	var f collectFlags
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Build snapshots from Codeforces rating histories",
		Long: `Collect reads handles from the rated-user listing pages (or from --handle),
fetches each user's rating changes and submissions from the Codeforces API and
writes the resulting snapshots to the snapshot file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCollect(cmd.Context(), o.cfg, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringSliceVar(&f.handles, "handle", nil, "collect these handles instead of reading listing pages (repeatable)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "snapshot file to write (default: snapshot_path)")
	cmd.Flags().BoolVar(&f.keepGoing, "keep-going", false, "skip users whose history cannot be retrieved")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}

func runCollect(ctx context.Context, cfg *config.Config, f collectFlags, out, errOut io.Writer) error {
	log := logger.Named("collect")

	handles, err := resolveHandles(ctx, cfg, f.handles, log)
	if err != nil {
		return err
	}
	if len(handles) == 0 {
		return errNoHandles
	}

	clientOpts := []codeforces.Option{
		codeforces.WithBaseURL(cfg.APIBaseURL),
		codeforces.WithTimeout(cfg.RequestTimeout()),
		codeforces.WithRetry(cfg.RetryAttempts, cfg.RetryBackoff()),
		codeforces.WithMinInterval(cfg.RequestInterval()),
		codeforces.WithLogger(log.Named("codeforces")),
	}
	if cfg.CachePath != "" {
		c, err := cache.Open(ctx, cfg.CachePath)
		if err != nil {
			return err
		}
		defer c.Close()
		clientOpts = append(clientOpts, codeforces.WithCache(c))
	}

	path := cfg.SnapshotPath
	if f.output != "" {
		path = f.output
	}
	store := repository.NewFileStore(path, repository.WithLogger(log))

	svc := service.New(
		service.WithFetcher(codeforces.New(clientOpts...)),
		service.WithStore(store),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithKeepGoing(f.keepGoing),
		service.WithLogger(log),
	)

	var progress service.Progress
	var bar *progressbar.ProgressBar
	if !f.noProgress {
		bar = progressbar.NewOptions(len(handles),
			progressbar.OptionSetWriter(errOut),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Collecting users..."),
		)
		progress = func(r workerpool.Result) {
			if r.Err == nil {
				bar.Describe("Collected " + r.Handle)
			}
			_ = bar.Add(1)
		}
	}

	stats, err := svc.CollectAndSave(ctx, handles, progress)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(errOut)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "Saved %d snapshots to %s from %d users\n",
		stats.Snapshots, store.Location(), stats.Users-stats.Failed)
	return err
}

// resolveHandles returns the explicit handles, deduplicated, or reads the
// listing pages up to the configured target.
func resolveHandles(ctx context.Context, cfg *config.Config, explicit []string, log logger.Logger) ([]string, error) {
	if len(explicit) > 0 {
		return dedupe.Unique(ctx, dedupe.NewHandleDeduper(), explicit, 0), nil
	}
	r := listing.NewReader(cfg.ListingPattern,
		listing.WithPages(cfg.ListingPages),
		listing.WithLogger(log.Named("listing")),
	)
	handles, err := r.Handles(ctx, cfg.TargetUsers)
	if err != nil {
		return nil, fmt.Errorf("read listing pages: %w", err)
	}
	log.Info(ctx, "handles selected", logger.Int("count", len(handles)))
	return handles, nil
}
