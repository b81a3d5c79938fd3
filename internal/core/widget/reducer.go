package widget

import (
	"maps"

	"tiba/internal/core/dataset"
	perr "tiba/internal/platform/errors"
)

// Op is the kind of edit applied to a widget
type Op string

// Edit operations
const (
	OpSet       Op = "set"
	OpToggle    Op = "toggle"
	OpOnly      Op = "only"
	OpSelectAll Op = "select_all"
)

// Edit is one user change to a widget
// Param and Value are used by OpSet, List and ID by the list ops
type Edit struct {
	Op    Op     `json:"op"`
	Param string `json:"param,omitempty"`
	Value any    `json:"value,omitempty"`
	List  string `json:"list,omitempty"`
	ID    string `json:"id,omitempty"`
}

// Outcome is what Complete did with a result
type Outcome uint8

// Outcomes
const (
	Applied Outcome = iota + 1
	Failed
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	}
	return "unknown"
}

// Result is the backend answer to a RenderRequest
type Result struct {
	Kind       Kind
	Generation dataset.Generation
	Seq        uint64
	Artifact   string
	Err        error
}

// ApplyEdit validates e against the schema and dom and applies it
// a rejected edit leaves the config untouched
func (c *Config) ApplyEdit(e Edit, dom dataset.Domain) error {
	s := c.Schema()
	switch e.Op {
	case OpSet:
		spec, ok := s.Param(e.Param)
		if !ok {
			return perr.WithField(perr.InvalidArgf("unknown parameter %q for %s", e.Param, c.Kind), "param")
		}
		v, err := spec.Coerce(e.Value, dom, c.Params)
		if err != nil {
			return err
		}
		c.Params[spec.Name] = v
		for _, name := range spec.Resets {
			if dep, ok := s.Param(name); ok {
				c.Params[name] = dep.defaultFor(dom)
			}
		}
	case OpToggle, OpOnly, OpSelectAll:
		ls, ok := s.List(e.List)
		if !ok {
			return perr.WithField(perr.InvalidArgf("unknown list %q for %s", e.List, c.Kind), "list")
		}
		l := c.Lists[ls.Name]
		switch {
		case ls.Single && e.Op != OpOnly:
			return perr.WithField(perr.InvalidArgf("list %q holds a single selection, use only", ls.Name), "op")
		case e.Op == OpSelectAll:
			l.ResetToAll(dom.Values(ls.Axis))
		case e.Op == OpOnly:
			if err := l.Only(e.ID); err != nil {
				return perr.WithField(err, "id")
			}
		default:
			if _, err := l.Toggle(e.ID); err != nil {
				return perr.WithField(err, "id")
			}
		}
	default:
		return perr.WithField(perr.InvalidArgf("unknown op %q", e.Op), "op")
	}
	c.touch()
	return nil
}

// touch records a local change
func (c *Config) touch() {
	switch c.Phase {
	case Clean, Dirty:
		c.Phase = Dirty
	case Requesting, RequestingEdited:
		c.Phase = RequestingEdited
	}
}

// Fire is the apply gate: it snapshots the config into a request and marks it pending
func (c *Config) Fire(up dataset.Upload) (RenderRequest, error) {
	if c.Pending() {
		return RenderRequest{}, perr.Conflictf("%s render already in flight", c.Kind)
	}
	if !c.CanApply() {
		return RenderRequest{}, perr.Conflictf("%s has no unapplied changes", c.Kind)
	}
	return c.fire(up), nil
}

// Prime fires the initial render after a dataset reset regardless of the gate
func (c *Config) Prime(up dataset.Upload) RenderRequest { return c.fire(up) }

func (c *Config) fire(up dataset.Upload) RenderRequest {
	c.seq++
	c.inflight = c.seq
	c.Phase = Requesting
	return c.snapshot(up)
}

func (c *Config) snapshot(up dataset.Upload) RenderRequest {
	s := c.Schema()
	req := RenderRequest{
		Kind:       c.Kind,
		Generation: c.generation,
		Seq:        c.inflight,
		Upload:     up,
		Params:     maps.Clone(c.Params),
		Lists:      make(map[string][]string, len(s.Lists)),
	}
	mode, _ := c.Params[s.Mode].(bool)
	for _, ls := range s.Lists {
		if ls.ModeOn != nil && *ls.ModeOn != mode {
			continue
		}
		req.Lists[ls.Wire] = c.Lists[ls.Name].Items()
	}
	return req
}

// Complete folds a backend result into the config
// results for another generation or an older request are dropped as Stale
func (c *Config) Complete(r Result) Outcome {
	if r.Kind != c.Kind || r.Generation != c.generation || !c.Pending() || r.Seq != c.inflight {
		return Stale
	}
	edited := c.Phase == RequestingEdited
	c.inflight = 0
	if r.Err != nil {
		c.Phase = Dirty
		return Failed
	}
	c.Artifact = r.Artifact
	if edited {
		c.Phase = Dirty
	} else {
		c.Phase = Clean
	}
	return Applied
}
