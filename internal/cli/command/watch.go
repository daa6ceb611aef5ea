package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/projconf/internal/infra/confloader"
	"github.com/yndnr/projconf/internal/infra/shutdown"
	"github.com/yndnr/projconf/internal/telemetry/logger"
	"github.com/yndnr/projconf/internal/telemetry/metric"
	"github.com/yndnr/projconf/pkg/projconf"
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print the configuration and print it again whenever an rc file changes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "Watch the configuration of level `ID` instead of the merged stack",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on `ADDR`, e.g. :9090",
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "Time allowed for cleanup after an interrupt",
				Value: 5 * time.Second,
			},
		},
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	e := getEnv(c)
	e.metrics = metric.NewRegistry()

	opts, err := projectOptions(c)
	if err != nil {
		return err
	}

	cache, err := projconf.NewCache(projconf.DefaultCacheSize,
		projconf.WithCacheLogger(e.log.Slog()),
		projconf.WithCacheMetrics(e.metrics),
	)
	if err != nil {
		return err
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(e.log.Slog()))
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := cache.Watch(w); err != nil {
		w.Stop()
		return fmt.Errorf("watch sources: %w", err)
	}

	changes := make(chan string, 1)
	w.OnChange(func(path string) {
		select {
		case changes <- path:
		default:
		}
	})

	ctx := commandContext(c, nil)
	show := func() error {
		cfg, err := cache.Get(ctx, opts,
			projconf.WithLogger(e.log.Slog()),
			projconf.WithMetrics(e.metrics),
		)
		if err != nil {
			return err
		}
		var data any
		if id := c.String("level"); id != "" {
			conf, err := cfg.Level(ctx, id)
			if err != nil {
				return err
			}
			data = conf
		} else {
			if data, err = cfg.Get(ctx); err != nil {
				return err
			}
		}
		return render(c, data)
	}

	if err := show(); err != nil {
		w.Stop()
		return err
	}

	handler := shutdown.NewHandler(c.Duration("shutdown-timeout"))
	handler.OnShutdown(func(context.Context) error {
		return w.Stop()
	})

	if addr := c.String("metrics-addr"); addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           metricsMux(e.metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.L(ctx).Error("metrics server failed", "addr", addr, "error", err)
			}
		}()
		handler.OnShutdown(srv.Shutdown)
		logger.L(ctx).Info("serving metrics", "addr", addr)
	}

	w.StartAsync()
	go func() {
		for {
			select {
			case path := <-changes:
				logger.L(ctx).Info("configuration changed", "file", path)
				if err := show(); err != nil {
					logger.L(ctx).Error("re-resolve failed", "error", err)
				}
			case <-handler.Done():
				return
			}
		}
	}()

	return handler.Wait(ctx)
}

func metricsMux(r *metric.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metric.Handler(r))
	return mux
}
