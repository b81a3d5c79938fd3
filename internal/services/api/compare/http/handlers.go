// Package http provides http transport for compare sessions
package http

import (
	stdhttp "net/http"

	"tiba/internal/core/dataset"
	"tiba/internal/core/examples"
	"tiba/internal/modkit/httpkit"
	"tiba/internal/platform/net/http/bind"
	"tiba/internal/services/api/compare/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Svc       domain.ServicePort
	Catalog   *examples.Catalog
	MaxUpload int64
}

// Register mounts compare endpoints on the given router
func Register(r httpkit.Router, d Deps) {
	if d.MaxUpload <= 0 {
		d.MaxUpload = 32 << 20
	}
	h := &handlers{deps: d}
	httpkit.Post(r, "/", h.create)
	httpkit.Get(r, "/{id}", h.state)
	httpkit.Delete(r, "/{id}", h.close)
	httpkit.Post(r, "/{id}/datasets", h.addDataset)
	httpkit.PostJSON[domain.SwitchInput](r, "/{id}/switch", h.switchGroups)
	httpkit.PostJSON[domain.SettingsInput](r, "/{id}/settings", h.configure)
	httpkit.Post(r, "/{id}/distances", h.distances)
}

type handlers struct{ deps Deps }

// @Summary Create a compare session
// @Tags Compare
// @Produce json
// @Success 201 {object} domain.State "created"
// @Router /compare [post]
func (h *handlers) create(r *stdhttp.Request) (any, error) {
	st, err := h.deps.Svc.Create(r.Context())
	if err != nil {
		return nil, err
	}
	return httpkit.Created(st), nil
}

// @Summary Compare session state
// @Tags Compare
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.State "ok"
// @Router /compare/{id} [get]
func (h *handlers) state(r *stdhttp.Request) (any, error) {
	return h.deps.Svc.State(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Close a compare session
// @Tags Compare
// @Param id path string true "Session id"
// @Success 204 "closed"
// @Router /compare/{id} [delete]
func (h *handlers) close(r *stdhttp.Request) (any, error) {
	if err := h.deps.Svc.Close(r.Context(), httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Add a dataset
// @Description Validates the dataset and renders its standardized transition network; accepted datasets join group A
// @Tags Compare
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.DatasetInput false "Example dataset"
// @Success 200 {object} domain.State "ok"
// @Router /compare/{id}/datasets [post]
func (h *handlers) addDataset(r *stdhttp.Request) (any, error) {
	up, err := h.upload(r)
	if err != nil {
		return nil, err
	}
	return h.deps.Svc.AddDataset(r.Context(), httpkit.Param(r, "id"), up)
}

func (h *handlers) upload(r *stdhttp.Request) (dataset.Upload, error) {
	if !bind.IsMultipart(r) {
		in, err := bind.ParseJSON[domain.DatasetInput](r)
		if err != nil {
			return dataset.Upload{}, err
		}
		return h.deps.Catalog.Upload(in.Example)
	}
	f, err := bind.FormFile(r, "upload", h.deps.MaxUpload)
	if err != nil {
		return dataset.Upload{}, err
	}
	return dataset.Upload{Name: f.Name, Filename: f.Filename, File: f.Data}, nil
}

// @Summary Switch an entry between groups
// @Tags Compare
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.SwitchInput true "Entry"
// @Success 200 {object} domain.State "ok"
// @Failure 404 {object} httpkit.Envelope "unknown entry"
// @Router /compare/{id}/switch [post]
func (h *handlers) switchGroups(r *stdhttp.Request, in domain.SwitchInput) (any, error) {
	return h.deps.Svc.Switch(r.Context(), httpkit.Param(r, "id"), in.Entry)
}

// @Summary Change distance settings
// @Tags Compare
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.SettingsInput true "Settings"
// @Success 200 {object} domain.State "ok"
// @Router /compare/{id}/settings [post]
func (h *handlers) configure(r *stdhttp.Request, in domain.SettingsInput) (any, error) {
	return h.deps.Svc.Configure(r.Context(), httpkit.Param(r, "id"), in)
}

// @Summary Compute distances
// @Description Pairwise graph distances with MDS and hierarchical clustering images
// @Tags Compare
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.State "ok"
// @Failure 409 {object} httpkit.Envelope "fewer than two networks"
// @Router /compare/{id}/distances [post]
func (h *handlers) distances(r *stdhttp.Request) (any, error) {
	return h.deps.Svc.Distances(r.Context(), httpkit.Param(r, "id"))
}
