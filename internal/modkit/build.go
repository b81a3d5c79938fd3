package modkit

import (
	"net/http"

	"tiba/internal/modkit/httpkit"
)

// Built is the resolved option set a module keeps
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any

	Subrouter func(httpkit.Router) httpkit.Router
	Register  func(httpkit.Router)
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:      c.name,
		Prefix:    c.prefix,
		Mw:        append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:     c.ports,
		Subrouter: c.subrouter,
		Register:  c.register,
	}
}

// Mount routes a group at b.Prefix with b's middleware, then registers own and b.Register
func (b Built) Mount(r httpkit.Router, own func(httpkit.Router)) {
	r.Route(b.Prefix, func(rr httpkit.Router) {
		for _, mw := range b.Mw {
			rr.Use(mw)
		}
		if b.Subrouter != nil {
			rr = b.Subrouter(rr)
		}
		if own != nil {
			own(rr)
		}
		if b.Register != nil {
			b.Register(rr)
		}
	})
}
