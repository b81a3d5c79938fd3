// Package http serves the example dataset catalog
package http

import (
	stdhttp "net/http"

	"tiba/internal/core/examples"
	"tiba/internal/modkit/httpkit"
	perr "tiba/internal/platform/errors"
)

// Deps are the handler dependencies
type Deps struct {
	Catalog *examples.Catalog
}

// Register mounts the catalog routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}
	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{key}", h.get)
}

type handlers struct{ deps Deps }

// @Summary List example datasets
// @Description Keys can be sent as {"example": key} to the dataset endpoints
// @Tags Examples
// @Produce json
// @Success 200 {object} examples.Catalog "ok"
// @Router /examples [get]
func (h *handlers) list(_ *stdhttp.Request) (any, error) {
	return h.deps.Catalog, nil
}

// @Summary Example dataset by key
// @Tags Examples
// @Produce json
// @Param key path string true "Example key"
// @Success 200 {object} examples.Example "ok"
// @Failure 404 {object} httpkit.Envelope "unknown key"
// @Router /examples/{key} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	key := httpkit.Param(r, "key")
	e, ok := h.deps.Catalog.Lookup(key)
	if !ok {
		return nil, perr.NotFoundf("example %q not found", key)
	}
	return e, nil
}
