// Package module wires compare sessions into the API using modkit
package module

import (
	"tiba/internal/adapters/render"
	"tiba/internal/core/examples"
	modkit "tiba/internal/modkit"
	"tiba/internal/modkit/httpkit"
	str "tiba/internal/platform/strings"

	cmpdom "tiba/internal/services/api/compare/domain"
	cmphttp "tiba/internal/services/api/compare/http"
	cmpsvc "tiba/internal/services/api/compare/service"
)

// Module serves compare sessions under /compare
type Module struct {
	built    modkit.Built
	svc      *cmpsvc.Svc
	maxBytes int64
}

// Ports are the optional injected ports
type Ports struct {
	Backend cmpdom.Backend
}

// Provided are the ports this module exposes
type Provided struct {
	Service cmpdom.ServicePort
	Worker  cmpdom.WorkerPort
}

// New constructs a compare module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("compare"), modkit.WithPrefix("/compare")}, opts...)...)
	str.MustPrefix(b.Prefix)
	cfg := FromConfig(deps.Cfg)

	var backend cmpdom.Backend
	if p, ok := b.Ports.(Ports); ok {
		backend = p.Backend
	}
	if backend == nil {
		backend = NewRenderBackend(render.NewClient(render.FromConfig(deps.Cfg)))
	}
	return &Module{
		built:    b,
		svc:      cmpsvc.New(backend, cfg.Service),
		maxBytes: int64(cfg.MaxUploadMB) << 20,
	}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(r httpkit.Router) {
		cmphttp.Register(r, cmphttp.Deps{Svc: m.svc, Catalog: examples.MustLoad(), MaxUpload: m.maxBytes})
	})
}

// Name implements modkit.Module
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }
