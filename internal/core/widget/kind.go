// Package widget holds the per widget configuration state machine
//
// A Config is owned by exactly one goroutine (the workspace loop)
// every transition goes through a small reducer: ApplyEdit, Fire, Prime, Complete
package widget

import (
	perr "tiba/internal/platform/errors"
)

// Kind identifies a visualization widget
type Kind string

// Widget kinds, one backend endpoint each
const (
	Barplot      Kind = "barplot"
	Interactions Kind = "interactions"
	Transitions  Kind = "transitions"
	Timeseries   Kind = "timeseries"
	Behaviorplot Kind = "behaviorplot"
)

// Kinds returns every widget kind in page order
func Kinds() []Kind {
	return []Kind{Barplot, Interactions, Transitions, Timeseries, Behaviorplot}
}

// ParseKind validates s as a widget kind
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", perr.InvalidArgf("unknown widget %q", s)
}

// Endpoint is the backend path relative to the base URL
func (k Kind) Endpoint() string { return "api/" + string(k) + "/" }

// Graph reports whether the widget renders a network graph (as opposed to a plot)
func (k Kind) Graph() bool { return k == Interactions || k == Transitions }

// ArtifactField is the backend response field carrying the artifact path
func (k Kind) ArtifactField() string {
	if k.Graph() {
		return "graph"
	}
	return "plot"
}

// exportSuffix is appended to the dataset name for downloads
func (k Kind) exportSuffix() string {
	switch k {
	case Behaviorplot:
		return "_plot"
	default:
		return "_" + string(k)
	}
}
