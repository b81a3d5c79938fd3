// Package domain defines the compare ports and DTOs
package domain

import (
	"context"

	"tiba/internal/core/dataset"
	"tiba/internal/core/widget"
)

// Backend is the rendering backend as seen by a compare session
type Backend interface {
	Validate(ctx context.Context, up dataset.Upload) (dataset.ValidationReport, error)
	Render(ctx context.Context, req widget.RenderRequest) (string, error)
	Distances(ctx context.Context, q Query) (Result, error)
}

// ServicePort is the compare service contract used by transports
type ServicePort interface {
	Create(ctx context.Context) (State, error)
	State(ctx context.Context, id string) (State, error)
	Close(ctx context.Context, id string) error

	AddDataset(ctx context.Context, id string, up dataset.Upload) (State, error)
	Switch(ctx context.Context, id, entry string) (State, error)
	Configure(ctx context.Context, id string, in SettingsInput) (State, error)
	Distances(ctx context.Context, id string) (State, error)
}

// WorkerPort runs background housekeeping
type WorkerPort interface {
	Run(ctx context.Context) error
}
