// Package api provides the HTTP API for the application
package api

import (
	"context"

	"tiba/internal/adapters/render"
	"tiba/internal/platform/config"
	"tiba/internal/platform/logger"
	phttp "tiba/internal/platform/net/http"
	"tiba/internal/platform/net/middleware"
	"tiba/internal/platform/store"

	"tiba/internal/modkit"
	"tiba/internal/modkit/httpkit"
	"tiba/internal/modkit/module"
	"tiba/internal/modkit/swaggerkit"

	cmpmod "tiba/internal/services/api/compare/module"
	exmod "tiba/internal/services/api/examples/module"
	metamod "tiba/internal/services/api/meta/module"
	wsmod "tiba/internal/services/api/workspace/module"
)

// Options are the API options
type Options struct {
	// Config is the root config; modules read their own prefixes from it
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// Backend overrides the render client built from RENDER_*
	Backend *render.Client
}

// Worker is a background loop owned by a module
type Worker interface {
	Run(ctx context.Context) error
}

// Mount mounts the API service onto the given router and returns the module workers
// the caller runs the workers for as long as the server is up
func Mount(r phttp.Router, opt Options) []Worker {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config, Log: *logger.Named("api")}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	log := deps.Log
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	// one render client for every module so pacing is shared
	backend := opt.Backend
	if backend == nil {
		backend = render.NewClient(render.FromConfig(opt.Config))
	}

	workspaces := wsmod.New(deps, modkit.WithPorts(wsmod.Ports{Backend: backend}))
	compare := cmpmod.New(deps, modkit.WithPorts(cmpmod.Ports{Backend: cmpmod.NewRenderBackend(backend)}))

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Backend: backend})),
		exmod.New(deps),
		workspaces,
		compare,
	}

	// load balancer probe, outside the versioned API
	r.Use(middleware.Heartbeat("/health"))

	// versioned API with a common middleware stack
	httpkit.MountAPI(r, "v1", httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			m.MountRoutes(api)
			log.Debug().Str("module", m.Name()).Msg("module mounted")
		}
	})

	return []Worker{
		module.MustPortsOf[wsmod.Provided](workspaces).Worker,
		module.MustPortsOf[cmpmod.Provided](compare).Worker,
	}
}
