package module

import (
	"context"

	"tiba/internal/core/dataset"
	"tiba/internal/core/widget"
	wsdom "tiba/internal/services/api/workspace/domain"
	wssvc "tiba/internal/services/api/workspace/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptWorkspacePort adapts the workspace service to the domain port interface
type adaptWorkspacePort struct{ svc wssvc.Service }

func (a adaptWorkspacePort) Create(ctx context.Context) (wsdom.State, error) { return a.svc.Create(ctx) }

func (a adaptWorkspacePort) State(ctx context.Context, id string) (wsdom.State, error) {
	return a.svc.State(ctx, id)
}

func (a adaptWorkspacePort) Close(ctx context.Context, id string) error { return a.svc.Close(ctx, id) }

func (a adaptWorkspacePort) LoadDataset(ctx context.Context, id string, up dataset.Upload) (wsdom.State, error) {
	return a.svc.LoadDataset(ctx, id, up)
}

func (a adaptWorkspacePort) Edit(ctx context.Context, id string, kind widget.Kind, e widget.Edit) (wsdom.WidgetState, error) {
	return a.svc.Edit(ctx, id, kind, e)
}

func (a adaptWorkspacePort) Apply(ctx context.Context, id string, kind widget.Kind) (wsdom.WidgetState, error) {
	return a.svc.Apply(ctx, id, kind)
}

func (a adaptWorkspacePort) Links(ctx context.Context, id string, kind widget.Kind) (wsdom.LinksOutput, error) {
	return a.svc.Links(ctx, id, kind)
}
