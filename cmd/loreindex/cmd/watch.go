package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/loreindex/loreindex/internal/index"
	"github.com/loreindex/loreindex/internal/store"
	"github.com/loreindex/loreindex/internal/ui"
	"github.com/loreindex/loreindex/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the project and index changes in the background",
		Long: `Watch runs until interrupted: filesystem changes are coalesced per
file, and a file is reindexed once it has been quiet for the configured
period. Deletions are deindexed immediately.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, offline)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Use deterministic offline embeddings")

	return cmd
}

func runWatch(cmd *cobra.Command, offline bool) error {
	root, cfg, err := loadProject()
	if err != nil {
		return err
	}

	// The scheduler only runs with search enabled and credentialed (or
	// explicitly offline); newEmbedClient enforces that.
	client, err := newEmbedClient(cfg, offline)
	if err != nil {
		return err
	}

	st, err := store.Open(root)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	indexer := index.New(root, st, client)
	scheduler := watch.NewScheduler(indexer, index.NewLock(root),
		cfg.TickInterval(), cfg.QuietPeriod())

	watcher, err := watch.NewWatcher(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ui.New(cmd.OutOrStdout()).Statusf("Watching %s (tick %s, quiet period %s). Ctrl-C to stop.",
		root, cfg.TickInterval(), cfg.QuietPeriod())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(ctx) })
	g.Go(func() error { return scheduler.Run(ctx) })
	g.Go(func() error { return pumpEvents(ctx, watcher, scheduler) })

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// pumpEvents feeds watcher output into the scheduler queues.
func pumpEvents(ctx context.Context, watcher *watch.Watcher, scheduler *watch.Scheduler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			scheduler.Apply(ev)
		case err, ok := <-watcher.Errors():
			if !ok {
				return nil
			}
			slog.Warn("watcher_error", slog.String("error", err.Error()))
		}
	}
}
