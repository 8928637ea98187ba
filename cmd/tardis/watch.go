package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/akhenakh/tardis"
	"github.com/akhenakh/tardis/internal/metrics"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Propagate the catalog periodically and serve metrics",
	Long: `Propagate every satellite to the current time on each tick, reload the
catalog when its file changes, and expose Prometheus metrics on metrics.addr.

Example:
  tardis watch -c active.txt --interval 30s`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 10*time.Second, "propagation interval")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if watchInterval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if cfg.Catalog.Path == "-" {
		return fmt.Errorf("watch needs a catalog file, not stdin")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec, err := metrics.New(reg)
	if err != nil {
		return err
	}

	c, err := loadCatalog(cmd, tardis.WithRecorder(rec))
	if err != nil {
		return err
	}
	rec.SetCatalogSize(c.Len())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// editors replace files, so watch the directory
	path, err := filepath.Abs(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		log.Info("serving metrics", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return watchLoop(ctx, cmd, c, rec, watcher, path)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchLoop owns the catalog: ticks and reloads are serialized here.
func watchLoop(ctx context.Context, cmd *cobra.Command, c *tardis.Catalog, rec *metrics.Recorder, watcher *fsnotify.Watcher, path string) error {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	tick := func() {
		now := time.Now().UTC()
		results, err := c.PropagateAll(ctx, now)
		if err != nil {
			return
		}
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		log.Info("propagated catalog",
			zap.Time("time", now),
			zap.Int("entries", len(results)),
			zap.Int("failed", failed),
		)
	}
	tick()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			next, err := loadCatalog(cmd, tardis.WithRecorder(rec))
			if err != nil {
				log.Warn("catalog reload failed, keeping previous catalog", zap.Error(err))
				continue
			}
			c = next
			rec.SetCatalogSize(c.Len())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", zap.Error(err))
		}
	}
}
