// Package module mounts the meta endpoints
package module

import (
	"time"

	"tiba/internal/core/version"
	modkit "tiba/internal/modkit"
	"tiba/internal/modkit/httpkit"
	str "tiba/internal/platform/strings"

	metahttp "tiba/internal/services/api/meta/http"
)

// Module serves /meta
type Module struct {
	built modkit.Built
	deps  metahttp.Deps
}

// Ports are the optional injected ports
type Ports struct {
	// Backend is the required readiness check
	Backend metahttp.Pinger
}

// New builds the meta module; readiness covers the render backend and whichever stores deps carries
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...)

	var backend metahttp.Pinger
	if p, ok := b.Ports.(Ports); ok {
		backend = p.Backend
	}
	pc := deps.Cfg.Prefix("META_")

	return &Module{
		built: b,
		deps: metahttp.Deps{
			Service:   version.Info().Service,
			StartedAt: time.Now(),
			Checks: []metahttp.Check{
				{Name: "render", Required: true, Ping: backend},
				{Name: "pg", Ping: pingerOf(deps.PG)},
				{Name: "ch", Ping: pingerOf(deps.CH)},
			},
			ProbeTimeout: pc.MayDuration("PROBE_TIMEOUT", 2*time.Second),
		},
	}
}

// pingerOf keeps nil stores nil so they report as skipped
func pingerOf(v any) metahttp.Pinger {
	p, _ := v.(metahttp.Pinger)
	return p
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(r httpkit.Router) { metahttp.Register(r, m.deps) })
}

// Name implements modkit.Module
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Ports implements modkit.Module
func (m *Module) Ports() any { return nil }
