package widget

import (
	"maps"

	"tiba/internal/core/dataset"
	"tiba/internal/core/selection"
)

// Phase is the synchronization state of a widget
type Phase uint8

// Phases
//
//	Clean            -> Dirty            on edit
//	Dirty            -> Requesting       on apply
//	Requesting       -> RequestingEdited on edit
//	Requesting       -> Clean            on success
//	RequestingEdited -> Dirty            on success
//	Requesting*      -> Dirty            on failure
const (
	Clean Phase = iota
	Dirty
	Requesting
	RequestingEdited
)

var phaseNames = [...]string{"clean", "dirty", "requesting", "requesting_edited"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Config is the state of one widget
type Config struct {
	Kind     Kind
	Params   map[string]any
	Lists    map[string]*selection.List
	Phase    Phase
	Artifact string

	generation dataset.Generation
	seq        uint64
	inflight   uint64
}

// Dirty reports whether the local state diverges from the last requested state
func (c *Config) Dirty() bool { return c.Phase == Dirty }

// Pending reports whether a render request is outstanding
func (c *Config) Pending() bool { return c.Phase == Requesting || c.Phase == RequestingEdited }

// CanApply reports whether the apply control is actionable
func (c *Config) CanApply() bool { return c.Dirty() && !c.Pending() }

// Generation is the dataset generation this config was built for
func (c *Config) Generation() dataset.Generation { return c.generation }

// Inflight returns the sequence number of the outstanding request, zero when idle
func (c *Config) Inflight() uint64 {
	if !c.Pending() {
		return 0
	}
	return c.inflight
}

// Schema returns the schema of the widget kind
func (c *Config) Schema() Schema { return SchemaOf(c.Kind) }

// Reset builds a config with default params and full lists over dom
// the config starts Clean with no artifact
func Reset(k Kind, dom dataset.Domain) *Config {
	s := SchemaOf(k)
	c := &Config{
		Kind:       k,
		Params:     s.Defaults(dom),
		Lists:      make(map[string]*selection.List, len(s.Lists)),
		Phase:      Clean,
		generation: dom.Generation,
	}
	for _, ls := range s.Lists {
		l := selection.New(dom.Values(ls.Axis)...)
		if ls.Single {
			if first := dom.First(ls.Axis); first != "" {
				_ = l.Only(first)
			}
		}
		c.Lists[ls.Name] = l
	}
	return c
}

// View is a read only copy of a Config safe to hand out of the owning goroutine
type View struct {
	Kind     Kind                `json:"kind"`
	Phase    Phase               `json:"phase"`
	Dirty    bool                `json:"dirty"`
	Pending  bool                `json:"pending"`
	CanApply bool                `json:"can_apply"`
	Params   map[string]any      `json:"params"`
	Lists    map[string][]string `json:"lists"`
	Artifact string              `json:"artifact,omitempty"`
}

// View snapshots c
func (c *Config) View() View {
	v := View{
		Kind:     c.Kind,
		Phase:    c.Phase,
		Dirty:    c.Dirty(),
		Pending:  c.Pending(),
		CanApply: c.CanApply(),
		Params:   maps.Clone(c.Params),
		Lists:    make(map[string][]string, len(c.Lists)),
		Artifact: c.Artifact,
	}
	for name, l := range c.Lists {
		v.Lists[name] = l.Items()
	}
	return v
}
