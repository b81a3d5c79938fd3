package widget

import (
	"math"
	"strconv"
	"strings"

	"tiba/internal/core/dataset"
	perr "tiba/internal/platform/errors"
)

// ParamType is the scalar type of a widget parameter
type ParamType uint8

// Parameter types
const (
	TypeBool ParamType = iota + 1
	TypeInt
	TypeFloat
	TypeEnum
	TypeDomain // a single identifier taken from a dataset axis
)

// ParamSpec describes one scalar parameter
type ParamSpec struct {
	Name    string
	Type    ParamType
	Default any
	Min     float64
	Max     float64 // zero means unbounded above
	Enum    []string
	Axis    dataset.Axis

	// CapWhen caps the value at Cap while the named bool parameter is true
	CapWhen string
	Cap     float64

	// Resets lists parameters restored to their default when this one changes
	Resets []string
}

// ListSpec describes one selection list
type ListSpec struct {
	Name   string
	Axis   dataset.Axis
	Wire   string
	Single bool // exactly one member selected, starts with the first id

	// ModeOn is the value of the schema mode parameter under which this list is sent
	// nil means the list is always sent
	ModeOn *bool
}

// Schema is the parameter surface of a widget kind
type Schema struct {
	Kind   Kind
	Params []ParamSpec
	Lists  []ListSpec

	// Mode names the bool parameter picking between lists sharing a wire name
	Mode string
}

// Node attribute maps accepted by the transition network
var (
	NodeMaps      = []string{"total_time", "avg_time", "amount", "indeg", "outdeg", "closeness", "betweenness"}
	NodeLabelMaps = []string{"", "total_time", "avg_time", "amount"}
)

// List names shared across schemas
const (
	ListSubjects   = "subjects"
	ListBehaviors  = "behaviors"
	ListCategories = "categories"
	ListModifiers  = "modifiers"
)

func modeOn(v bool) *bool { return &v }

var schemas = map[Kind]Schema{
	Interactions: {
		Kind: Interactions,
		Params: []ParamSpec{
			{Name: "min_edge_count", Type: TypeInt, Default: 0},
		},
		Lists: []ListSpec{
			{Name: ListSubjects, Axis: dataset.AxisSubjects, Wire: "id_list"},
			{Name: ListModifiers, Axis: dataset.AxisModifiers, Wire: "mod1_list"},
		},
	},
	Behaviorplot: {
		Kind: Behaviorplot,
		Params: []ParamSpec{
			{Name: "behavior", Type: TypeDomain, Axis: dataset.AxisBehaviors},
		},
		Lists: []ListSpec{
			{Name: ListSubjects, Axis: dataset.AxisSubjects, Wire: "id_list"},
			{Name: ListBehaviors, Axis: dataset.AxisBehaviors, Wire: "bhvr_list"},
		},
	},
	Transitions: {
		Kind: Transitions,
		Mode: "option",
		Params: []ParamSpec{
			{Name: "option", Type: TypeBool, Default: false},
			{Name: "min_edge_count", Type: TypeFloat, Default: 0.0, CapWhen: "normalized", Cap: 1},
			{Name: "with_status", Type: TypeBool, Default: false},
			{Name: "normalized", Type: TypeBool, Default: false, Resets: []string{"min_edge_count"}},
			{Name: "colored", Type: TypeBool, Default: false},
			{Name: "custom_edge_thickness", Type: TypeBool, Default: false},
			{Name: "colored_edge_thickness", Type: TypeInt, Default: 2, Min: 1, Max: 15},
			{Name: "color_hue", Type: TypeInt, Default: 150, Min: 0, Max: 180},
			{Name: "node_color_map", Type: TypeEnum, Default: "total_time", Enum: NodeMaps},
			{Name: "node_size_map", Type: TypeEnum, Default: "total_time", Enum: NodeMaps},
			{Name: "node_label_map", Type: TypeEnum, Default: "total_time", Enum: NodeLabelMaps},
			{Name: "logarithmic_normalization", Type: TypeBool, Default: false},
		},
		Lists: []ListSpec{
			{Name: ListSubjects, Axis: dataset.AxisSubjects, Wire: "id_list"},
			{Name: ListBehaviors, Axis: dataset.AxisBehaviors, Wire: "bhvr_list", ModeOn: modeOn(false)},
			{Name: ListCategories, Axis: dataset.AxisCategories, Wire: "bhvr_list", ModeOn: modeOn(true)},
		},
	},
	Barplot: {
		Kind: Barplot,
		Mode: "barplot_plot_categories",
		Params: []ParamSpec{
			{Name: "barplot_plot_categories", Type: TypeBool, Default: false},
			{Name: "barplot_plot_total_time", Type: TypeBool, Default: false},
			{Name: "barplot_relative", Type: TypeBool, Default: false},
		},
		Lists: []ListSpec{
			{Name: ListSubjects, Axis: dataset.AxisSubjects, Wire: "id_list"},
			{Name: ListBehaviors, Axis: dataset.AxisBehaviors, Wire: "bhvr_list"},
			{Name: ListCategories, Axis: dataset.AxisCategories, Wire: "cat_list"},
		},
	},
	Timeseries: {
		Kind: Timeseries,
		Mode: "timeseries_plot_categories",
		Params: []ParamSpec{
			{Name: "timeseries_plot_categories", Type: TypeBool, Default: false},
		},
		Lists: []ListSpec{
			{Name: ListSubjects, Axis: dataset.AxisSubjects, Wire: "id_list", Single: true},
			{Name: ListBehaviors, Axis: dataset.AxisBehaviors, Wire: "bhvr_list"},
			{Name: ListCategories, Axis: dataset.AxisCategories, Wire: "cat_list"},
		},
	},
}

// SchemaOf returns the schema for k
func SchemaOf(k Kind) Schema { return schemas[k] }

// Param looks up a parameter by name
func (s Schema) Param(name string) (ParamSpec, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// List looks up a list by name
func (s Schema) List(name string) (ListSpec, bool) {
	for _, l := range s.Lists {
		if l.Name == name {
			return l, true
		}
	}
	return ListSpec{}, false
}

// Defaults returns a fresh parameter map for dom
func (s Schema) Defaults(dom dataset.Domain) map[string]any {
	out := make(map[string]any, len(s.Params))
	for _, p := range s.Params {
		out[p.Name] = p.defaultFor(dom)
	}
	return out
}

func (p ParamSpec) defaultFor(dom dataset.Domain) any {
	if p.Type == TypeDomain {
		return dom.First(p.Axis)
	}
	return p.Default
}

// Coerce converts raw into the parameter type and checks its bounds
// raw may come from JSON (float64, bool, string) or from a CLI flag (string)
func (p ParamSpec) Coerce(raw any, dom dataset.Domain, params map[string]any) (any, error) {
	switch p.Type {
	case TypeBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, p.invalid(raw)
			}
			return b, nil
		}
	case TypeInt:
		f, ok := toFloat(raw)
		if !ok || f != math.Trunc(f) {
			return nil, p.invalid(raw)
		}
		if err := p.bounds(f, params); err != nil {
			return nil, err
		}
		return int(f), nil
	case TypeFloat:
		f, ok := toFloat(raw)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, p.invalid(raw)
		}
		if err := p.bounds(f, params); err != nil {
			return nil, err
		}
		return f, nil
	case TypeEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, p.invalid(raw)
		}
		for _, e := range p.Enum {
			if e == s {
				return s, nil
			}
		}
		return nil, perr.WithField(perr.InvalidArgf("%s must be one of %s", p.Name, strings.Join(quoted(p.Enum), ", ")), p.Name)
	case TypeDomain:
		s, ok := raw.(string)
		if !ok || !dom.Has(p.Axis, s) {
			return nil, perr.WithField(perr.InvalidArgf("%q is not part of the current dataset", raw), p.Name)
		}
		return s, nil
	}
	return nil, p.invalid(raw)
}

func (p ParamSpec) bounds(f float64, params map[string]any) error {
	if f < p.Min {
		return perr.WithField(perr.InvalidArgf("%s must be >= %s", p.Name, fmtNum(p.Min)), p.Name)
	}
	upper := p.Max
	if p.CapWhen != "" {
		if on, _ := params[p.CapWhen].(bool); on {
			upper = p.Cap
		}
	}
	if upper > 0 && f > upper {
		return perr.WithField(perr.InvalidArgf("%s must be <= %s", p.Name, fmtNum(upper)), p.Name)
	}
	return nil
}

func (p ParamSpec) invalid(raw any) error {
	return perr.WithField(perr.InvalidArgf("invalid value %v for %s", raw, p.Name), p.Name)
}

// Encode renders a parameter value as a backend form value
func Encode(v any) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return ""
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func fmtNum(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func quoted(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strconv.Quote(s)
	}
	return out
}
