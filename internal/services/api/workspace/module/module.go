// Package module wires workspaces into the API using modkit
package module

import (
	"context"
	"strings"

	"tiba/internal/adapters/render"
	"tiba/internal/core/examples"
	modkit "tiba/internal/modkit"
	"tiba/internal/modkit/httpkit"
	"tiba/internal/modkit/repokit"
	"tiba/internal/platform/logger"
	str "tiba/internal/platform/strings"

	wsdom "tiba/internal/services/api/workspace/domain"
	wshttp "tiba/internal/services/api/workspace/http"
	wsrepo "tiba/internal/services/api/workspace/repo"
	wssvc "tiba/internal/services/api/workspace/service"
)

// Module serves workspaces under /workspaces
type Module struct {
	built modkit.Built
	svc   wssvc.Service
	ports Provided
	cfg   Options
}

// Ports are the optional injected ports; nil fields are built from config
type Ports struct {
	Backend wsdom.Backend
	Ledger  wsdom.Ledger
}

// Provided are the ports this module exposes
type Provided struct {
	Service wsdom.ServicePort
	Worker  wsdom.WorkerPort
}

// New constructs a workspace module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("workspaces"), modkit.WithPrefix("/workspaces")}, opts...)...)
	cfg := FromConfig(deps.Cfg)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Backend == nil {
		injected.Backend = render.NewClient(render.FromConfig(deps.Cfg))
	}
	if injected.Ledger == nil {
		injected.Ledger = ledgerFor(deps, cfg)
	}

	str.MustPrefix(b.Prefix)
	svc := wssvc.New(injected.Backend, injected.Ledger, cfg.Service)
	return &Module{
		built: b,
		svc:   svc,
		ports: Provided{Service: adaptWorkspacePort{svc: svc}, Worker: svc},
		cfg:   cfg,
	}
}

// ledgerFor picks the ledger sinks named by WORKSPACE_LEDGER among the open stores
func ledgerFor(deps modkit.Deps, cfg Options) wsdom.Ledger {
	log := logger.Named("workspace-ledger")
	ctx := context.Background()
	want := strings.ToLower(cfg.Ledger)

	var sinks wsrepo.Fanout
	if (want == LedgerPG || want == LedgerBoth) && deps.PG != nil {
		if cfg.EnsureLedger {
			if err := wsrepo.EnsurePG(ctx, deps.PG); err != nil {
				log.Error().Err(err).Msg("ensure pg ledger table failed")
			}
		}
		sinks = append(sinks, repokit.MustBind(wsrepo.NewPG(), deps.PG))
	}
	if (want == LedgerCH || want == LedgerBoth) && deps.CH != nil {
		if cfg.EnsureLedger {
			if err := wsrepo.EnsureCH(ctx, deps.CH); err != nil {
				log.Error().Err(err).Msg("ensure ch ledger table failed")
			}
		}
		sinks = append(sinks, wsrepo.NewCH(deps.CH))
	}
	if len(sinks) == 0 {
		if want != LedgerOff {
			log.Warn().Str("ledger", want).Msg("ledger store not configured, ledger disabled")
		}
		return nil
	}
	return sinks
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(r httpkit.Router) {
		wshttp.Register(r, wshttp.Deps{
			Svc:       m.svc,
			Catalog:   examples.MustLoad(),
			MaxUpload: int64(m.cfg.MaxUploadMB) << 20,
		})
	})
}

// Name implements modkit.Module
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }
