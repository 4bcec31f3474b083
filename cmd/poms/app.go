package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"poms/internal/adapters/notify"
	"poms/internal/config"
	"poms/internal/core"
)

type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: newLogger(cfg, cmd.ErrOrStderr())}, nil
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	if cfg.Log.Format == "console" || (cfg.Log.Format == "" && cfg.IsDev()) {
		out = zerolog.ConsoleWriter{Out: out}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil && lvl != zerolog.NoLevel {
		logger = logger.Level(lvl)
	}
	return logger
}

// openService opens the configured store. Bill notifications are wired when
// a Redis URL is configured; a Redis outage only disables them.
func (a *app) openService(ctx context.Context, opts ...core.Option) (*core.Service, func(), error) {
	cleanup := func() {}
	opts = append([]core.Option{core.WithLogger(a.logger)}, opts...)
	if a.cfg.Redis.URL != "" {
		n, err := notify.Dial(ctx, a.cfg.Redis.URL, a.cfg.Redis.Channel, a.logger)
		if err != nil {
			a.logger.Warn().Err(err).Msg("bill notifications disabled")
		} else {
			opts = append(opts, core.WithBillNotifier(n))
			cleanup = func() { _ = n.Close() }
		}
	}
	svc, err := core.Open(ctx, a.cfg.StorageSettings(), opts...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return svc, func() {
		if err := svc.Close(context.Background()); err != nil {
			a.logger.Error().Err(err).Msg("close storage")
		}
		cleanup()
	}, nil
}
