// Package dataset models the identifier domain of an uploaded dataset
package dataset

import (
	"strings"
)

// Axis names one of the identifier families reported by the backend
type Axis string

// Axes the backend reports for a dataset
const (
	AxisSubjects   Axis = "ids"
	AxisBehaviors  Axis = "behaviors"
	AxisCategories Axis = "categories"
	AxisModifiers  Axis = "modifier_1s"
)

// Axes lists every axis in display order
func Axes() []Axis {
	return []Axis{AxisSubjects, AxisBehaviors, AxisCategories, AxisModifiers}
}

// Generation counts dataset resets inside a workspace
// responses tagged with an older generation are stale
type Generation uint64

// Domain is the set of identifiers extracted from one upload
// it is replaced wholesale on every dataset reset and never mutated
type Domain struct {
	Generation Generation `json:"generation"`
	Headers    []string   `json:"headers"`
	IDs        []string   `json:"ids"`
	Behaviors  []string   `json:"behaviors"`
	Categories []string   `json:"categories"`
	Modifiers  []string   `json:"modifier_1s"`
}

// Values returns a copy of the identifiers on axis a
func (d Domain) Values(a Axis) []string {
	var src []string
	switch a {
	case AxisSubjects:
		src = d.IDs
	case AxisBehaviors:
		src = d.Behaviors
	case AxisCategories:
		src = d.Categories
	case AxisModifiers:
		src = d.Modifiers
	}
	return append([]string(nil), src...)
}

// Has reports whether id is a member of axis a
func (d Domain) Has(a Axis, id string) bool {
	for _, v := range d.Values(a) {
		if v == id {
			return true
		}
	}
	return false
}

// First returns the first identifier on axis a or the empty string
func (d Domain) First(a Axis) string {
	if v := d.Values(a); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Empty reports whether the domain carries no identifiers at all
func (d Domain) Empty() bool {
	return len(d.IDs) == 0 && len(d.Behaviors) == 0 && len(d.Categories) == 0 && len(d.Modifiers) == 0
}

// Upload references the dataset the backend should operate on
// either an example key or raw file bytes
type Upload struct {
	Name     string `json:"name"`
	Example  string `json:"example,omitempty"`
	Filename string `json:"filename,omitempty"`
	File     []byte `json:"-"`
}

// IsExample reports whether the upload points at a bundled example
func (u Upload) IsExample() bool { return u.Example != "" }

// Zero reports whether no dataset was chosen yet
func (u Upload) Zero() bool { return u.Example == "" && len(u.File) == 0 }

// ValidationReport is the backend verdict on an upload
type ValidationReport struct {
	Success  bool     `json:"success"`
	Messages []string `json:"messages"`
}

// SplitMessages turns a newline delimited backend response into one message per line
// blank lines are dropped
func SplitMessages(response string) []string {
	var out []string
	for line := range strings.SplitSeq(response, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
