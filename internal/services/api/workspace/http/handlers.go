// Package http provides http transport for workspaces
package http

import (
	stdhttp "net/http"

	"tiba/internal/core/dataset"
	"tiba/internal/core/examples"
	"tiba/internal/core/widget"
	"tiba/internal/modkit/httpkit"
	"tiba/internal/platform/net/http/bind"
	"tiba/internal/services/api/workspace/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Svc       domain.ServicePort
	Catalog   *examples.Catalog
	MaxUpload int64
}

// Register mounts workspace endpoints on the given router
func Register(r httpkit.Router, d Deps) {
	if d.MaxUpload <= 0 {
		d.MaxUpload = 32 << 20
	}
	h := &handlers{deps: d}
	httpkit.Post(r, "/", h.create)
	httpkit.Get(r, "/{id}", h.state)
	httpkit.Delete(r, "/{id}", h.close)
	r.Post("/{id}/dataset", httpkit.Handle(h.dataset))
	httpkit.PostJSON[domain.EditInput](r, "/{id}/widgets/{kind}/edit", h.edit)
	httpkit.Post(r, "/{id}/widgets/{kind}/apply", h.apply)
	httpkit.Get(r, "/{id}/widgets/{kind}/links", h.links)
}

type handlers struct{ deps Deps }

// @Summary Create a workspace
// @Tags Workspaces
// @Produce json
// @Success 201 {object} domain.State "created"
// @Failure 429 {object} httpkit.Envelope "too many workspaces"
// @Router /workspaces [post]
func (h *handlers) create(r *stdhttp.Request) (any, error) {
	st, err := h.deps.Svc.Create(r.Context())
	if err != nil {
		return nil, err
	}
	return httpkit.Created(st), nil
}

// @Summary Workspace state
// @Tags Workspaces
// @Produce json
// @Param id path string true "Workspace id"
// @Success 200 {object} domain.State "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /workspaces/{id} [get]
func (h *handlers) state(r *stdhttp.Request) (any, error) {
	return h.deps.Svc.State(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Close a workspace
// @Tags Workspaces
// @Param id path string true "Workspace id"
// @Success 204 "closed"
// @Router /workspaces/{id} [delete]
func (h *handlers) close(r *stdhttp.Request) (any, error) {
	if err := h.deps.Svc.Close(r.Context(), httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Load a dataset
// @Description JSON body {"example":"example1"} or multipart form with an "upload" file part
// @Tags Workspaces
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Workspace id"
// @Param payload body domain.DatasetInput false "Example dataset"
// @Success 202 {object} domain.State "validating"
// @Failure 422 {object} httpkit.Envelope "unknown example"
// @Router /workspaces/{id}/dataset [post]
func (h *handlers) dataset(r *stdhttp.Request) httpkit.Response {
	up, err := h.upload(r)
	if err != nil {
		return httpkit.Error(err)
	}
	st, err := h.deps.Svc.LoadDataset(r.Context(), httpkit.Param(r, "id"), up)
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.Accepted(st)
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

// @Summary Edit a widget
// @Description Changes a parameter or a selection list; nothing is rendered until apply
// @Tags Widgets
// @Accept json
// @Produce json
// @Param id path string true "Workspace id"
// @Param kind path string true "Widget kind" Enums(barplot, interactions, transitions, timeseries, behaviorplot)
// @Param payload body domain.EditInput true "Edit"
// @Success 200 {object} domain.WidgetState "ok"
// @Failure 409 {object} httpkit.Envelope "dataset loading"
// @Failure 422 {object} httpkit.Envelope "rejected edit"
// @Router /workspaces/{id}/widgets/{kind}/edit [post]
func (h *handlers) edit(r *stdhttp.Request, in domain.EditInput) (any, error) {
	kind, err := widget.ParseKind(httpkit.Param(r, "kind"))
	if err != nil {
		return nil, err
	}
	return h.deps.Svc.Edit(r.Context(), httpkit.Param(r, "id"), kind, in.Edit())
}

// @Summary Apply widget changes
// @Description Sends one render request when the widget is dirty and idle
// @Tags Widgets
// @Produce json
// @Param id path string true "Workspace id"
// @Param kind path string true "Widget kind"
// @Success 200 {object} domain.WidgetState "requesting"
// @Failure 409 {object} httpkit.Envelope "nothing to apply or already requesting"
// @Router /workspaces/{id}/widgets/{kind}/apply [post]
func (h *handlers) apply(r *stdhttp.Request) (any, error) {
	kind, err := widget.ParseKind(httpkit.Param(r, "kind"))
	if err != nil {
		return nil, err
	}
	return h.deps.Svc.Apply(r.Context(), httpkit.Param(r, "id"), kind)
}

// @Summary Artifact links
// @Tags Widgets
// @Produce json
// @Param id path string true "Workspace id"
// @Param kind path string true "Widget kind"
// @Success 200 {object} domain.LinksOutput "ok"
// @Failure 404 {object} httpkit.Envelope "no artifact yet"
// @Failure 409 {object} httpkit.Envelope "dataset loading or not loaded"
// @Router /workspaces/{id}/widgets/{kind}/links [get]
func (h *handlers) links(r *stdhttp.Request) (any, error) {
	kind, err := widget.ParseKind(httpkit.Param(r, "kind"))
	if err != nil {
		return nil, err
	}
	return h.deps.Svc.Links(r.Context(), httpkit.Param(r, "id"), kind)
}
