package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"remindbot/httpapi"
	"remindbot/scheduler"
	"remindbot/state"
	"remindbot/tui"
	"remindbot/watcher"
)

var watchPaths []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Deliver due reminders, serve the HTTP API and watch markdown files",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive reminder list",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	serveCmd.Flags().StringArrayVarP(&watchPaths, "watch", "w", nil, "markdown file or directory to watch (repeatable)")
	tuiCmd.Flags().StringArrayVarP(&watchPaths, "watch", "w", nil, "markdown file or directory to watch (repeatable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sched, err := scheduler.New(store, scheduler.LogNotifier{Logger: logger}, scheduler.Config{
		Interval:       cfg.Scheduler.Interval,
		VacuumSchedule: cfg.Scheduler.VacuumSchedule,
		Retention:      cfg.Scheduler.Retention,
	}, logger)
	if err != nil {
		return err
	}

	api := httpapi.New(store, newParser(), httpapi.Config{
		Addr:            cfg.HTTP.Addr,
		Mode:            cfg.HTTP.Mode,
		RateLimitPerMin: cfg.HTTP.RateLimitPerMin,
	}, logger)

	w, err := startWatcher(ctx, store)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sched.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		sched.Stop()
		return nil
	})

	g.Go(func() error {
		return api.Run(gctx)
	})

	if w != nil {
		g.Go(func() error {
			defer w.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case event := <-w.Events:
					applyFileEvent(gctx, store, event)
				}
			}
		})
	}

	logger.Info("remindbot serving", zap.Strings("watch", watchList()))
	return g.Wait()
}

func runTUI(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	w, err := startWatcher(cmd.Context(), store)
	if err != nil {
		return err
	}

	var events <-chan watcher.FileEvent
	if w != nil {
		defer w.Stop()
		events = w.Events
	}

	model, err := tui.New(store, currentUser(), events)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// watchList combines the --watch flags with watch.paths from the config.
func watchList() []string {
	paths := append([]string{}, cfg.Watch.Paths...)
	paths = append(paths, watchPaths...)
	for i, p := range paths {
		if rest, ok := strings.CutPrefix(p, "~/"); ok {
			if home, err := os.UserHomeDir(); err == nil {
				paths[i] = filepath.Join(home, rest)
			}
		}
	}
	return paths
}

// startWatcher imports the reminders of every watched path and starts a
// watcher for later changes. It returns nil when nothing is watched.
func startWatcher(ctx context.Context, store *state.Store) (*watcher.Watcher, error) {
	paths := watchList()
	if len(paths) == 0 {
		return nil, nil
	}

	w, err := watcher.New(logger)
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		events, _, err := watcher.ParseInitial(path)
		if err != nil {
			logger.Warn("could not parse watched path", zap.String("path", path), zap.Error(err))
		}
		for _, event := range events {
			applyFileEvent(ctx, store, event)
		}
		if err := w.Watch(path); err != nil {
			w.Stop()
			return nil, err
		}
	}

	w.Start()
	return w, nil
}

func applyFileEvent(ctx context.Context, store *state.Store, event watcher.FileEvent) {
	if event.Err != nil {
		logger.Warn("could not read reminder file", zap.String("file", event.FilePath), zap.Error(event.Err))
		return
	}
	for _, s := range event.Skipped {
		logger.Warn("skipped reminder directive", zap.String("file", event.FilePath), zap.String("directive", s.String()))
	}

	merged, err := store.ReplaceSource(ctx, event.FilePath, event.Reminders, currentUser())
	if err != nil {
		logger.Error("could not store file reminders", zap.String("file", event.FilePath), zap.Error(err))
		return
	}
	logger.Info("reminders synced from file",
		zap.String("file", event.FilePath),
		zap.Int("reminders", len(merged)),
		zap.Int("skipped", len(event.Skipped)))
}
