package store

import (
	"context"
	"fmt"
	"time"

	"tiba/internal/platform/logger"
	"tiba/internal/platform/store/ch"
	"tiba/internal/platform/store/pg"
)

const (
	defaultConnectRetries = 6
	defaultPingTimeout    = 3 * time.Second
	backoffStart          = 150 * time.Millisecond
	backoffMax            = 2 * time.Second
)

// openPG opens the pool and waits for it to answer a ping
func openPG(ctx context.Context, cfg PGConfig, log logger.Logger) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{URL: cfg.URL, MaxConns: cfg.MaxConns, SlowMs: cfg.SlowQueryMs}, tracer, nil)
	if err != nil {
		return nil, err
	}
	if err := waitPing(ctx, cfg, log, p.Pool.Ping); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

// waitPing retries ping with doubling backoff up to cfg.ConnectRetries times
func waitPing(ctx context.Context, cfg PGConfig, log logger.Logger, ping func(context.Context) error) error {
	tries := cfg.ConnectRetries
	if tries <= 0 {
		tries = defaultConnectRetries
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	var err error
	wait := backoffStart
	for i := 1; i <= tries; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		err = ping(pctx)
		cancel()
		if err == nil {
			return nil
		}
		if i == tries {
			break
		}
		log.Warn().Err(err).Int("attempt", i).Dur("retry_in", wait).Msg("postgres not ready")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, backoffMax)
	}
	return fmt.Errorf("ping failed after %d attempts: %w", tries, err)
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := ch.Open(ctx, ch.Config{URL: cfg.CH.URL, Role: cfg.AppName, Tag: cfg.CH.Tag})
	if err != nil {
		return nil, err
	}
	return chAdapter{c}, nil
}
