package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Algorithm is a graph distance measure understood by the backend
type Algorithm string

// Distance measures
const (
	PortraitDivergence Algorithm = "PortraitDivergence"
	JaccardDistance    Algorithm = "JaccardDistance"
	Frobenius          Algorithm = "Frobenius"
	Hamming            Algorithm = "Hamming"
)

// Linkage is the hierarchical clustering criterion
type Linkage string

// Linkage criteria
const (
	LinkageAverage  Linkage = "average"
	LinkageComplete Linkage = "complete"
	LinkageSingle   Linkage = "single"
	LinkageWard     Linkage = "ward"
)

// Settings parametrize a distance query
type Settings struct {
	Algorithm   Algorithm `json:"distance_alg" example:"PortraitDivergence"`
	SetIndices  bool      `json:"setindices"`
	RandomState int       `json:"random_state" example:"0"`
	NInit       int       `json:"n_init"       example:"4"`
	Linkage     Linkage   `json:"linkage"      example:"average"`
}

// DefaultSettings are the settings of a fresh session
func DefaultSettings() Settings {
	return Settings{Algorithm: PortraitDivergence, NInit: 4, Linkage: LinkageAverage}
}

// Query is one distance computation over two groups of networks
type Query struct {
	GroupA []string
	GroupB []string
	Settings
}

// Result is the backend answer to a Query
type Result struct {
	ImageURL   string          `json:"image_url"`
	Image2URL  string          `json:"image2_url"`
	DistMatrix json.RawMessage `json:"dist_matrix"  swaggertype:"array,number"`
	NodeDict   any             `json:"node_dict"    swaggertype:"object"`
	Labels     json.RawMessage `json:"labels"       swaggertype:"array,string"`
}

// UploadOutcome reports what happened to the last upload
type UploadOutcome struct {
	Name     string   `json:"name"`
	Accepted bool     `json:"accepted"`
	Entry    string   `json:"entry,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

// State is a compare session snapshot
// entries are "<dataset name>/<gml path>"
type State struct {
	ID         string         `json:"id"`
	GroupA     []string       `json:"group_a"`
	GroupB     []string       `json:"group_b"`
	Settings   Settings       `json:"settings"`
	Configured bool           `json:"configured"`
	LastUpload *UploadOutcome `json:"last_upload,omitempty"`
	Result     *Result        `json:"result,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// EntryName returns the dataset name part of an entry
func EntryName(entry string) string {
	name, _, _ := strings.Cut(entry, "/")
	return name
}

// DatasetInput selects an example dataset
type DatasetInput struct {
	Example string `json:"example" validate:"required,min=1,max=64" example:"example1"`
}

// SwitchInput moves an entry between groups
type SwitchInput struct {
	Entry string `json:"entry" validate:"required,max=512" example:"Lamprologus ocellatus/media/transitions-1.gml"`
}

// SettingsInput changes some settings; nil fields are kept
type SettingsInput struct {
	Algorithm   *Algorithm `json:"distance_alg,omitempty" validate:"omitempty,oneof=PortraitDivergence JaccardDistance Frobenius Hamming"`
	SetIndices  *bool      `json:"setindices,omitempty"`
	RandomState *int       `json:"random_state,omitempty" validate:"omitempty,min=0,max=1000"`
	NInit       *int       `json:"n_init,omitempty"       validate:"omitempty,min=4,max=1000"`
	Linkage     *Linkage   `json:"linkage,omitempty"      validate:"omitempty,oneof=average complete single ward"`
}

// Apply returns s with the non nil fields of in
func (in SettingsInput) Apply(s Settings) Settings {
	if in.Algorithm != nil {
		s.Algorithm = *in.Algorithm
	}
	if in.SetIndices != nil {
		s.SetIndices = *in.SetIndices
	}
	if in.RandomState != nil {
		s.RandomState = *in.RandomState
	}
	if in.NInit != nil {
		s.NInit = *in.NInit
	}
	if in.Linkage != nil {
		s.Linkage = *in.Linkage
	}
	return s
}
