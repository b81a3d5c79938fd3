package widget

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	perr "tiba/internal/platform/errors"
)

const graphSuffix = ".gv.svg"

// Links are the download locations derived from an artifact path
type Links struct {
	SVG        string `json:"svg"`
	GV         string `json:"gv,omitempty"`
	GML        string `json:"gml,omitempty"`
	Statistics string `json:"statistics,omitempty"`
}

// LinksFor derives the sibling artifacts of a render
// graph renders end in .gv.svg and have .gv, .gml and for transitions a -statistics.csv next to them
func LinksFor(k Kind, artifact string) (Links, error) {
	if artifact == "" {
		return Links{}, perr.NotFoundf("%s has no artifact yet", k)
	}
	l := Links{SVG: artifact}
	if !k.Graph() {
		return l, nil
	}
	if !strings.HasSuffix(artifact, graphSuffix) {
		return Links{}, perr.Internalf("graph artifact %q does not end in %s", artifact, graphSuffix)
	}
	stem := artifact[:len(artifact)-len(graphSuffix)]
	l.GV = artifact[:len(artifact)-len(".svg")]
	l.GML = stem + ".gml"
	if k == Transitions {
		l.Statistics = stem + "-statistics.csv"
	}
	return l, nil
}

// Exports are download file names matching Links
type Exports struct {
	SVG        string `json:"svg"`
	GV         string `json:"gv,omitempty"`
	GML        string `json:"gml,omitempty"`
	Statistics string `json:"statistics,omitempty"`
}

// ExportNames builds download names from the dataset name
func ExportNames(k Kind, datasetName string) Exports {
	base := ExportBase(datasetName) + k.exportSuffix()
	e := Exports{SVG: base + ".svg"}
	if k.Graph() {
		e.GV = base + ".gv"
		e.GML = base + ".gml"
	}
	if k == Transitions {
		e.Statistics = base + "_statistics.csv"
	}
	return e
}

// ExportBase normalizes a dataset name for use in a file name
// whitespace becomes underscores
func ExportBase(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "dataset"
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		if r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, name)
}
