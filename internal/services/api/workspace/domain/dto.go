package domain

import (
	"time"

	"tiba/internal/core/dataset"
	"tiba/internal/core/widget"
)

// ValidationStatus is the state of the upload validation widget
type ValidationStatus string

// Validation statuses
const (
	ValidationIdle       ValidationStatus = "idle"
	ValidationValidating ValidationStatus = "validating"
	ValidationValid      ValidationStatus = "valid"
	ValidationError      ValidationStatus = "error"
)

// Validation is the upload validation widget
type Validation struct {
	Status   ValidationStatus `json:"status"   example:"error"`
	Messages []string         `json:"messages" example:"Required column \"Time\" is missing"`
}

// WidgetState is a widget as reported to clients
type WidgetState struct {
	widget.View
	Visible bool `json:"visible"`
}

// UploadInfo describes the current dataset without its bytes
type UploadInfo struct {
	Name    string `json:"name"              example:"Neolamprologus multifasciatus"`
	Example string `json:"example,omitempty" example:"example1"`
}

// State is a full workspace snapshot
type State struct {
	ID             string             `json:"id"              example:"3f1c8a2e-5d8b-4f6c-9a51-0c6a3f1e2b7d"`
	Generation     dataset.Generation `json:"generation"      example:"2"`
	Upload         *UploadInfo        `json:"upload,omitempty"`
	DatasetLoading bool               `json:"dataset_loading"`
	Validation     Validation         `json:"validation"`
	Domain         *dataset.Domain    `json:"domain,omitempty"`
	Widgets        []WidgetState      `json:"widgets"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Widget returns the state of kind if present
func (s State) Widget(kind widget.Kind) (WidgetState, bool) {
	for _, w := range s.Widgets {
		if w.Kind == kind {
			return w, true
		}
	}
	return WidgetState{}, false
}

// LinksOutput carries download locations and file names for a widget artifact
type LinksOutput struct {
	Kind    widget.Kind    `json:"kind"`
	Base    string         `json:"base"`
	Links   widget.Links   `json:"links"`
	Exports widget.Exports `json:"exports"`
}

// DatasetInput selects an example dataset
type DatasetInput struct {
	Example string `json:"example" validate:"required,min=1,max=64" example:"example1"`
}

// EditInput is one widget edit
type EditInput struct {
	Op    widget.Op `json:"op"              validate:"required,oneof=set toggle only select_all" example:"set"`
	Param string    `json:"param,omitempty" validate:"required_if=Op set,max=64"                example:"min_edge_count"`
	Value any       `json:"value,omitempty"                                                      swaggertype:"string" example:"2"`
	List  string    `json:"list,omitempty"  validate:"required_unless=Op set,max=32"            example:"subjects"`
	ID    string    `json:"id,omitempty"    validate:"max=256"                                  example:"f1"`
}

// Edit converts the input to a widget edit
func (in EditInput) Edit() widget.Edit {
	return widget.Edit{Op: in.Op, Param: in.Param, Value: in.Value, List: in.List, ID: in.ID}
}

// LedgerEvent names a ledger row type
type LedgerEvent string

// Ledger events
const (
	EventDispatched LedgerEvent = "dispatched"
	EventRendered   LedgerEvent = "rendered"
	EventFailed     LedgerEvent = "failed"
	EventStale      LedgerEvent = "stale"
)

// LedgerEntry is one row in the render ledger
type LedgerEntry struct {
	RequestID  string
	Workspace  string
	Kind       widget.Kind
	Generation dataset.Generation
	Seq        uint64
	Event      LedgerEvent
	Artifact   string
	Error      string
	Latency    time.Duration
	At         time.Time
}
