// Package domain defines the workspace ports and DTOs
package domain

import (
	"context"

	"tiba/internal/core/dataset"
	"tiba/internal/core/widget"
)

// Backend is the rendering backend as seen by a workspace
type Backend interface {
	Validate(ctx context.Context, up dataset.Upload) (dataset.ValidationReport, error)
	Domain(ctx context.Context, up dataset.Upload) (dataset.Domain, error)
	Render(ctx context.Context, req widget.RenderRequest) (string, error)
}

// Ledger records render dispatches and their outcome
type Ledger interface {
	Record(ctx context.Context, e LedgerEntry) error
}

// ServicePort is the workspace service contract used by transports
type ServicePort interface {
	Create(ctx context.Context) (State, error)
	State(ctx context.Context, id string) (State, error)
	Close(ctx context.Context, id string) error

	LoadDataset(ctx context.Context, id string, up dataset.Upload) (State, error)
	Edit(ctx context.Context, id string, kind widget.Kind, e widget.Edit) (WidgetState, error)
	Apply(ctx context.Context, id string, kind widget.Kind) (WidgetState, error)
	Links(ctx context.Context, id string, kind widget.Kind) (LinksOutput, error)
}

// WorkerPort runs background housekeeping
type WorkerPort interface {
	Run(ctx context.Context) error
}
