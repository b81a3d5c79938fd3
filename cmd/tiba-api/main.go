// @title         TIBA API
// @version       0.1.0
// @description   Workspaces that configure and synchronize behavioral analysis widgets against the rendering backend

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tiba/internal/modkit/repokit"
	"tiba/internal/platform/config"
	"tiba/internal/platform/logger"
	phttp "tiba/internal/platform/net/http"
	"tiba/internal/platform/store"

	"tiba/internal/services/api"
)

func main() {
	// root config for modules (WORKSPACE_*, COMPARE_*, RENDER_*), service scoped for HTTP (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*
	// bring up logging early
	lopt := logger.FromEnv()
	if lopt.Service == "" {
		lopt.Service = "tiba-api"
	}
	logger.Init(lopt)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// stores only back the optional render ledger
	pgOn := pgCfg.MayBool("ENABLED", false)
	chOn := chCfg.MayBool("ENABLED", false)
	scfg := store.Config{AppName: "tiba", PG: store.PGConfig{Enabled: pgOn}, CH: store.CHConfig{Enabled: chOn, Tag: "api"}}
	if pgOn {
		scfg.PG.URL = pgCfg.MustString("DBURL")
		scfg.PG.MaxConns = int32(pgCfg.MayInt("MAX_CONNS", 4))
		scfg.PG.SlowQueryMs = pgCfg.MayInt("SLOW_MS", 500)
		scfg.PG.LogSQL = pgCfg.MayBool("LOG_SQL", false)
		scfg.PG.ConnectRetries = pgCfg.MayInt("CONNECT_RETRIES", 6)
		scfg.PG.PingTimeout = pgCfg.MayDuration("PING_TIMEOUT", 3*time.Second)
	}
	if chOn {
		scfg.CH.URL = chCfg.MustString("DBURL")
	}

	st, err := store.Open(ctx, scfg, store.WithLogger(*logger.Get()))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	repokit.MustGuard(ctx, st)
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(root.Prefix("CORE_"))

	// mount our API
	workers := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	for _, w := range workers {
		g.Go(func() error { return w.Run(gctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		l.Panic().Err(err).Msg("api stopped")
	}
	l.Info().Msg("api stopped")
}
