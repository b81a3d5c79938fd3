// Package module wires the example catalog into the API
package module

import (
	"tiba/internal/core/examples"
	modkit "tiba/internal/modkit"
	"tiba/internal/modkit/httpkit"
	str "tiba/internal/platform/strings"

	exhttp "tiba/internal/services/api/examples/http"
)

// Module serves the read only example catalog
type Module struct {
	built   modkit.Built
	catalog *examples.Catalog
}

// New loads the embedded catalog
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("examples"), modkit.WithPrefix("/examples")}, opts...)...)
	return &Module{built: b, catalog: examples.MustLoad()}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(r httpkit.Router) {
		exhttp.Register(r, exhttp.Deps{Catalog: m.catalog})
	})
}

// Name implements modkit.Module
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }

// Ports returns nothing, the catalog is read only
func (m *Module) Ports() any { return nil }
