package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tiba/internal/core/dataset"
	"tiba/internal/core/examples"
	"tiba/internal/core/widget"
	perr "tiba/internal/platform/errors"
	wsdom "tiba/internal/services/api/workspace/domain"
	wssvc "tiba/internal/services/api/workspace/service"
)

// pollEvery is how often render waits re-read workspace state
var pollEvery = 200 * time.Millisecond

// widgetEdit is an edit parsed from a flag
type widgetEdit struct {
	kind widget.Kind
	edit widget.Edit
}

// renderedWidget is one line of render output
type renderedWidget struct {
	Kind     widget.Kind    `json:"kind"`
	Phase    string         `json:"phase"`
	Artifact string         `json:"artifact,omitempty"`
	Links    *widget.Links  `json:"links,omitempty"`
	Exports  widget.Exports `json:"exports,omitzero"`
}

func newRenderCmd() *cobra.Command {
	var edits []widgetEdit
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Load a dataset, apply edits and print widget artifacts",
		Long: `Load an example or a local file into a fresh workspace, wait for the
initial render of every widget, then apply edits and print the artifacts.

Edits name a widget and a parameter or list, and are applied with one
request per edited widget no matter how many edits it received. Edits
run in the order they are given.

Examples:
  tiba render --example example1
  tiba render --example example2 --widget transitions --set transitions.min_edge_count=3
  tiba render --file run.csv --toggle barplot.subjects=f1 --only timeseries.subjects=f2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			up, err := uploadFromFlags(cmd)
			if err != nil {
				return err
			}
			kinds, err := kindsFromFlags(cmd)
			if err != nil {
				return err
			}
			wait, _ := cmd.Flags().GetDuration("wait")
			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()

			svc := wssvc.New(connect(cmd).ws, nil, wssvc.Config{MaxWorkspaces: 1})
			defer svc.Shutdown()

			out, err := render(ctx, svc, up, kinds, edits)
			if err != nil {
				return err
			}
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd, out)
			}
			for _, w := range out {
				fmt.Fprintf(cmd.OutOrStdout(), "%-13s %-8s %s\n", w.Kind, w.Phase, orDash(w.Artifact))
				if w.Links != nil && w.Links.Statistics != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%-13s %-8s %s\n", "", "stats", w.Links.Statistics)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("example", "", "Example dataset key (see tiba examples)")
	cmd.Flags().String("file", "", "Local dataset file to upload")
	cmd.Flags().String("name", "", "Dataset name (default: file name without extension)")
	cmd.Flags().StringSlice("widget", nil, "Widgets to report (default: all)")
	cmd.Flags().Var(editFlag{widget.OpSet, &edits}, "set", "Set a parameter: <widget>.<param>=<value>")
	cmd.Flags().Var(editFlag{widget.OpToggle, &edits}, "toggle", "Toggle a list member: <widget>.<list>=<id>")
	cmd.Flags().Var(editFlag{widget.OpOnly, &edits}, "only", "Select a single list member: <widget>.<list>=<id>")
	cmd.Flags().Var(editFlag{widget.OpSelectAll, &edits}, "all", "Select every member of a list: <widget>.<list>")
	return cmd
}

// render runs one dataset through a workspace and returns the settled widgets
func render(ctx context.Context, svc *wssvc.Svc, up dataset.Upload, kinds []widget.Kind, edits []widgetEdit) ([]renderedWidget, error) {
	st, err := svc.Create(ctx)
	if err != nil {
		return nil, err
	}
	id := st.ID
	if _, err := svc.LoadDataset(ctx, id, up); err != nil {
		return nil, err
	}
	if _, err := settle(ctx, svc, id, widget.Kinds()); err != nil {
		return nil, err
	}

	var touched []widget.Kind
	for _, e := range edits {
		if _, err := svc.Edit(ctx, id, e.kind, e.edit); err != nil {
			return nil, fmt.Errorf("%s: %w", e.kind, err)
		}
		if !slices.Contains(touched, e.kind) {
			touched = append(touched, e.kind)
		}
	}
	for _, k := range touched {
		if _, err := svc.Apply(ctx, id, k); err != nil {
			return nil, fmt.Errorf("apply %s: %w", k, err)
		}
	}
	if st, err = settle(ctx, svc, id, touched); err != nil {
		return nil, err
	}

	out := make([]renderedWidget, 0, len(kinds))
	for _, k := range kinds {
		w, _ := st.Widget(k)
		rw := renderedWidget{Kind: k, Phase: w.Phase.String(), Artifact: w.Artifact}
		if w.Artifact != "" {
			l, err := svc.Links(ctx, id, k)
			if err != nil {
				return nil, err
			}
			rw.Links, rw.Exports = &l.Links, l.Exports
		}
		out = append(out, rw)
	}
	return out, nil
}

// settle polls until the dataset is loaded and none of kinds has a request in flight
func settle(ctx context.Context, svc *wssvc.Svc, id string, kinds []widget.Kind) (wsdom.State, error) {
	t := time.NewTicker(pollEvery)
	defer t.Stop()
	for {
		st, err := svc.State(ctx, id)
		if err != nil {
			return st, err
		}
		if st.Validation.Status == wsdom.ValidationError {
			return st, rejected(st.Validation.Messages)
		}
		if !st.DatasetLoading && st.Validation.Status == wsdom.ValidationValid && idle(st, kinds) {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, fmt.Errorf("waiting for renders: %w", ctx.Err())
		case <-t.C:
		}
	}
}

func idle(st wsdom.State, kinds []widget.Kind) bool {
	for _, k := range kinds {
		if w, ok := st.Widget(k); ok && w.Pending {
			return false
		}
	}
	return true
}

func rejected(msgs []string) error {
	errs := make([]error, 0, len(msgs)+1)
	errs = append(errs, errors.New("dataset rejected"))
	for _, m := range msgs {
		errs = append(errs, errors.New("  "+m))
	}
	return errors.Join(errs...)
}

func uploadFromFlags(cmd *cobra.Command) (dataset.Upload, error) {
	example, _ := cmd.Flags().GetString("example")
	file, _ := cmd.Flags().GetString("file")
	name, _ := cmd.Flags().GetString("name")
	switch {
	case example != "" && file != "":
		return dataset.Upload{}, errors.New("use either --example or --file")
	case example != "":
		c, err := examples.Load()
		if err != nil {
			return dataset.Upload{}, err
		}
		return c.Upload(example)
	case file != "":
		return readUpload(file, name)
	}
	return dataset.Upload{}, errors.New("one of --example or --file is required")
}

func readUpload(path, name string) (dataset.Upload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return dataset.Upload{}, fmt.Errorf("read dataset: %w", err)
	}
	if len(b) == 0 {
		return dataset.Upload{}, perr.InvalidArgf("%s is empty", path)
	}
	base := filepath.Base(path)
	if name == "" {
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return dataset.Upload{Name: name, Filename: base, File: b}, nil
}

func kindsFromFlags(cmd *cobra.Command) ([]widget.Kind, error) {
	names, _ := cmd.Flags().GetStringSlice("widget")
	if len(names) == 0 {
		return widget.Kinds(), nil
	}
	kinds := make([]widget.Kind, 0, len(names))
	for _, n := range names {
		k, err := widget.ParseKind(strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// editFlag appends parsed edits to a list shared by --set, --toggle, --only and --all
// so edits run in command line order
type editFlag struct {
	op    widget.Op
	edits *[]widgetEdit
}

func (f editFlag) String() string { return "" }
func (f editFlag) Type() string   { return "edit" }

func (f editFlag) Set(v string) error {
	e, err := parseEdit(f.op, v)
	if err != nil {
		return err
	}
	*f.edits = append(*f.edits, e)
	return nil
}

// parseEdit reads <widget>.<target>[=<value>]
func parseEdit(op widget.Op, s string) (widgetEdit, error) {
	target, value, hasValue := strings.Cut(s, "=")
	ks, name, ok := strings.Cut(target, ".")
	if !ok || name == "" {
		return widgetEdit{}, errors.New("expected <widget>.<name>")
	}
	k, err := widget.ParseKind(ks)
	if err != nil {
		return widgetEdit{}, err
	}
	switch {
	case op == widget.OpSelectAll && hasValue:
		return widgetEdit{}, errors.New("select all takes no value")
	case op != widget.OpSelectAll && !hasValue:
		return widgetEdit{}, errors.New("missing =<value>")
	}

	e := widget.Edit{Op: op}
	if op == widget.OpSet {
		e.Param, e.Value = name, value
	} else {
		e.List, e.ID = name, value
	}
	return widgetEdit{kind: k, edit: e}, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
