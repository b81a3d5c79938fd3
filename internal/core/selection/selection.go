// Package selection holds the identifier sets a widget sends to the rendering backend
//
// A List is bounded by a universe (the slice of the dataset domain it was reset to)
// membership is a set, items come back in universe order so request payloads are stable
package selection

import (
	perr "tiba/internal/platform/errors"
)

// List is a set of identifiers drawn from a fixed universe
// the zero value is an empty list with an empty universe
type List struct {
	universe []string
	index    map[string]int
	in       map[string]struct{}
}

// New returns a list over universe with every member selected
func New(universe ...string) *List {
	l := &List{}
	l.ResetToAll(universe)
	return l
}

// ResetToAll replaces the universe and selects every member of it
// duplicates in subset are collapsed
func (l *List) ResetToAll(subset []string) {
	l.universe = make([]string, 0, len(subset))
	l.index = make(map[string]int, len(subset))
	l.in = make(map[string]struct{}, len(subset))
	for _, id := range subset {
		if _, dup := l.index[id]; dup {
			continue
		}
		l.index[id] = len(l.universe)
		l.universe = append(l.universe, id)
		l.in[id] = struct{}{}
	}
}

// Toggle inserts id when absent and removes it when present
// it reports whether id is selected afterwards
func (l *List) Toggle(id string) (bool, error) {
	if !l.Known(id) {
		return false, perr.InvalidArgf("%q is not part of the current dataset", id)
	}
	if l.Contains(id) {
		delete(l.in, id)
		return false, nil
	}
	l.in[id] = struct{}{}
	return true, nil
}

// Only narrows the selection to the single id
func (l *List) Only(id string) error {
	if !l.Known(id) {
		return perr.InvalidArgf("%q is not part of the current dataset", id)
	}
	l.in = map[string]struct{}{id: {}}
	return nil
}

// Known reports whether id belongs to the universe
func (l *List) Known(id string) bool {
	if l == nil || l.index == nil {
		return false
	}
	_, ok := l.index[id]
	return ok
}

// Contains reports whether id is selected
func (l *List) Contains(id string) bool {
	if l == nil {
		return false
	}
	_, ok := l.in[id]
	return ok
}

// Len is the number of selected ids
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.in)
}

// Items returns the selected ids in universe order
// the slice is freshly allocated and safe to hand to another goroutine
func (l *List) Items() []string {
	out := make([]string, 0, l.Len())
	if l == nil {
		return out
	}
	for _, id := range l.universe {
		if _, ok := l.in[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
