package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tiba/internal/core/dataset"
	"tiba/internal/core/widget"
	perr "tiba/internal/platform/errors"
	"tiba/internal/services/api/workspace/domain"
)

type renderReply struct {
	artifact string
	err      error
}

type renderCall struct {
	req   widget.RenderRequest
	reply chan renderReply
}

// fakeBackend answers validation and domain calls from fields
// render calls block until the test replies on the call
type fakeBackend struct {
	mu          sync.Mutex
	report      dataset.ValidationReport
	validateErr error
	dom         dataset.Domain
	domErr      error

	calls chan renderCall
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		report: dataset.ValidationReport{Success: true},
		dom: dataset.Domain{
			IDs:        []string{"f1", "m1"},
			Behaviors:  []string{"bite", "chase"},
			Categories: []string{"agg"},
			Modifiers:  []string{"f1", "m1"},
		},
		calls: make(chan renderCall, 64),
	}
}

func (f *fakeBackend) Validate(context.Context, dataset.Upload) (dataset.ValidationReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.report, f.validateErr
}

func (f *fakeBackend) Domain(context.Context, dataset.Upload) (dataset.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dom, f.domErr
}

func (f *fakeBackend) Render(ctx context.Context, req widget.RenderRequest) (string, error) {
	c := renderCall{req: req, reply: make(chan renderReply, 1)}
	f.calls <- c
	select {
	case r := <-c.reply:
		return r.artifact, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type memLedger struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func (m *memLedger) Record(_ context.Context, e domain.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLedger) count(ev domain.LedgerEvent) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Event == ev {
			n++
		}
	}
	return n
}

var example = dataset.Upload{Name: "Lamprologus ocellatus", Example: "example3"}

func newTestSvc(t *testing.T, fb *fakeBackend, l domain.Ledger) *Svc {
	t.Helper()
	s := New(fb, l, Config{RenderTimeout: 5 * time.Second, DatasetTimeout: 5 * time.Second})
	t.Cleanup(s.Shutdown)
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func takeCalls(t *testing.T, fb *fakeBackend, n int) map[widget.Kind]renderCall {
	t.Helper()
	out := map[widget.Kind]renderCall{}
	for range n {
		select {
		case c := <-fb.calls:
			out[c.req.Kind] = c
		case <-time.After(3 * time.Second):
			t.Fatalf("got %d render calls, want %d", len(out), n)
		}
	}
	return out
}

func noCalls(t *testing.T, fb *fakeBackend) {
	t.Helper()
	select {
	case c := <-fb.calls:
		t.Fatalf("unexpected render call for %s", c.req.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func state(t *testing.T, s *Svc, id string) domain.State {
	t.Helper()
	st, err := s.State(context.Background(), id)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	return st
}

func widgetOf(t *testing.T, s *Svc, id string, k widget.Kind) domain.WidgetState {
	t.Helper()
	w, ok := state(t, s, id).Widget(k)
	if !ok {
		t.Fatalf("widget %s missing", k)
	}
	return w
}

// loaded creates a workspace, loads the example and settles every primed render
func loaded(t *testing.T, s *Svc, fb *fakeBackend) string {
	t.Helper()
	ctx := context.Background()
	st, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.LoadDataset(ctx, st.ID, example); err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	for k, c := range takeCalls(t, fb, len(widget.Kinds())) {
		c.reply <- renderReply{artifact: "media/" + string(k) + "-1.gv.svg"}
	}
	waitFor(t, "widgets clean", func() bool {
		for _, w := range state(t, s, st.ID).Widgets {
			if w.Phase != widget.Clean {
				return false
			}
		}
		return true
	})
	return st.ID
}

func TestLoadDataset_PrimesEveryWidget(t *testing.T) {
	fb := newFakeBackend()
	led := &memLedger{}
	s := newTestSvc(t, fb, led)
	ctx := context.Background()

	st, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.Validation.Status != domain.ValidationIdle || len(st.Widgets) != 0 {
		t.Fatalf("fresh workspace = %+v", st)
	}

	st, err = s.LoadDataset(ctx, st.ID, example)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if !st.DatasetLoading || st.Validation.Status != domain.ValidationValidating || st.Generation != 1 {
		t.Fatalf("loading state = %+v", st)
	}

	calls := takeCalls(t, fb, len(widget.Kinds()))
	mid := state(t, s, st.ID)
	if mid.DatasetLoading || mid.Domain == nil || mid.Domain.Generation != 1 {
		t.Fatalf("loaded state = %+v", mid)
	}
	for _, w := range mid.Widgets {
		if w.Phase != widget.Requesting || w.Dirty || !w.Visible {
			t.Fatalf("primed widget %s = %+v", w.Kind, w)
		}
	}

	for k, c := range calls {
		if c.req.Generation != 1 || c.req.Seq != 1 || c.req.ID == "" || c.req.Workspace != st.ID {
			t.Fatalf("request %s = %+v", k, c.req)
		}
		if got := c.req.Lists["id_list"]; k != widget.Timeseries && len(got) != 2 {
			t.Fatalf("%s id_list = %v, want full list", k, got)
		}
		c.reply <- renderReply{artifact: "media/" + string(k) + ".svg"}
	}
	waitFor(t, "artifacts", func() bool {
		for _, w := range state(t, s, st.ID).Widgets {
			if w.Phase != widget.Clean || w.Artifact == "" {
				return false
			}
		}
		return true
	})
	waitFor(t, "ledger", func() bool {
		return led.count(domain.EventDispatched) == 5 && led.count(domain.EventRendered) == 5
	})
}

func TestLoadDataset_ValidationFailureSendsNoRenders(t *testing.T) {
	fb := newFakeBackend()
	fb.report = dataset.ValidationReport{Messages: []string{"missing column Time", "missing column Subject"}}
	fb.domErr = perr.InvalidArgf("unparsable")
	s := newTestSvc(t, fb, nil)
	ctx := context.Background()

	st, _ := s.Create(ctx)
	if _, err := s.LoadDataset(ctx, st.ID, dataset.Upload{Name: "bad", Filename: "bad.csv", File: []byte("x")}); err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	waitFor(t, "validation error", func() bool {
		return state(t, s, st.ID).Validation.Status == domain.ValidationError
	})

	got := state(t, s, st.ID)
	if len(got.Validation.Messages) != 2 || got.Validation.Messages[1] != "missing column Subject" {
		t.Fatalf("messages = %v", got.Validation.Messages)
	}
	if got.DatasetLoading || got.Domain != nil || len(got.Widgets) != 0 {
		t.Fatalf("state after rejection = %+v", got)
	}
	noCalls(t, fb)

	if _, err := s.Edit(ctx, st.ID, widget.Barplot, widget.Edit{Op: widget.OpSelectAll, List: "subjects"}); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("edit without dataset: %v", err)
	}
}

func TestLoadDataset_BackendDownIsValidationError(t *testing.T) {
	fb := newFakeBackend()
	fb.validateErr = perr.Unavailablef("connection refused")
	s := newTestSvc(t, fb, nil)
	ctx := context.Background()

	st, _ := s.Create(ctx)
	_, _ = s.LoadDataset(ctx, st.ID, example)
	waitFor(t, "validation error", func() bool {
		v := state(t, s, st.ID).Validation
		return v.Status == domain.ValidationError && len(v.Messages) == 1
	})
	noCalls(t, fb)
}

func TestLoadDataset_RejectsEmptyUpload(t *testing.T) {
	s := newTestSvc(t, newFakeBackend(), nil)
	st, _ := s.Create(context.Background())
	if _, err := s.LoadDataset(context.Background(), st.ID, dataset.Upload{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestEdit_WhileLoadingIsRejected(t *testing.T) {
	fb := newFakeBackend()
	fb.mu.Lock() // hold validation until the edit has been attempted
	s := newTestSvc(t, fb, nil)
	ctx := context.Background()

	st, _ := s.Create(ctx)
	if _, err := s.LoadDataset(ctx, st.ID, example); err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	_, err := s.Edit(ctx, st.ID, widget.Interactions, widget.Edit{Op: widget.OpSet, Param: "min_edge_count", Value: 1.0})
	fb.mu.Unlock()
	if !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("want conflict while loading, got %v", err)
	}
	takeCalls(t, fb, len(widget.Kinds()))
}

func TestApply_GateAndEditDuringRequest(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSvc(t, fb, nil)
	ctx := context.Background()
	id := loaded(t, s, fb)

	if _, err := s.Apply(ctx, id, widget.Interactions); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("apply on clean widget: %v", err)
	}

	w, err := s.Edit(ctx, id, widget.Interactions, widget.Edit{Op: widget.OpSet, Param: "min_edge_count", Value: 3.0})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !w.Dirty || !w.CanApply {
		t.Fatalf("edited widget = %+v", w)
	}
	noCalls(t, fb)

	w, err = s.Apply(ctx, id, widget.Interactions)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !w.Pending || w.CanApply {
		t.Fatalf("applied widget = %+v", w)
	}
	if _, err := s.Apply(ctx, id, widget.Interactions); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("second apply while pending: %v", err)
	}

	c := takeCalls(t, fb, 1)[widget.Interactions]
	if c.req.Seq != 2 || c.req.Params["min_edge_count"] != 3 {
		t.Fatalf("request = %+v", c.req)
	}

	w, err = s.Edit(ctx, id, widget.Interactions, widget.Edit{Op: widget.OpToggle, List: "subjects", ID: "f1"})
	if err != nil {
		t.Fatalf("Edit during request: %v", err)
	}
	if w.Phase != widget.RequestingEdited {
		t.Fatalf("phase = %s", w.Phase)
	}

	c.reply <- renderReply{artifact: "media/interactions-2.gv.svg"}
	waitFor(t, "dirty after success", func() bool {
		w := widgetOf(t, s, id, widget.Interactions)
		return w.Phase == widget.Dirty && w.Artifact == "media/interactions-2.gv.svg"
	})
}

func TestRenderFailure_KeepsArtifact(t *testing.T) {
	fb := newFakeBackend()
	led := &memLedger{}
	s := newTestSvc(t, fb, led)
	ctx := context.Background()
	id := loaded(t, s, fb)

	before := widgetOf(t, s, id, widget.Barplot).Artifact
	if _, err := s.Edit(ctx, id, widget.Barplot, widget.Edit{Op: widget.OpSet, Param: "barplot_relative", Value: true}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if _, err := s.Apply(ctx, id, widget.Barplot); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	takeCalls(t, fb, 1)[widget.Barplot].reply <- renderReply{err: errors.New("boom")}

	waitFor(t, "failure settles", func() bool {
		w := widgetOf(t, s, id, widget.Barplot)
		return w.Phase == widget.Dirty && w.Artifact == before && w.CanApply
	})
	waitFor(t, "failed ledger row", func() bool { return led.count(domain.EventFailed) == 1 })
}

func TestReset_DropsStaleResults(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSvc(t, fb, nil)
	ctx := context.Background()

	st, _ := s.Create(ctx)
	_, _ = s.LoadDataset(ctx, st.ID, example)
	old := takeCalls(t, fb, len(widget.Kinds()))

	if _, err := s.LoadDataset(ctx, st.ID, dataset.Upload{Name: "run", Filename: "run.csv", File: []byte("t")}); err != nil {
		t.Fatalf("second LoadDataset: %v", err)
	}
	fresh := takeCalls(t, fb, len(widget.Kinds()))
	for k, c := range fresh {
		if c.req.Generation != 2 || c.req.Upload.Filename != "run.csv" {
			t.Fatalf("fresh request %s = %+v", k, c.req)
		}
		c.reply <- renderReply{artifact: "new/" + string(k)}
	}
	waitFor(t, "fresh artifacts", func() bool {
		for _, w := range state(t, s, st.ID).Widgets {
			if w.Artifact != "new/"+string(w.Kind) {
				return false
			}
		}
		return true
	})

	for k, c := range old {
		c.reply <- renderReply{artifact: "old/" + string(k)}
	}
	time.Sleep(50 * time.Millisecond)
	for _, w := range state(t, s, st.ID).Widgets {
		if w.Artifact != "new/"+string(w.Kind) || w.Phase != widget.Clean {
			t.Fatalf("stale result leaked into %s: %+v", w.Kind, w)
		}
	}
}

func TestEdit_Rejections(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSvc(t, fb, nil)
	ctx := context.Background()
	id := loaded(t, s, fb)

	tests := []struct {
		name string
		kind widget.Kind
		edit widget.Edit
		code perr.ErrorCode
	}{
		{"unknown id", widget.Interactions, widget.Edit{Op: widget.OpToggle, List: "subjects", ID: "zz"}, perr.ErrorCodeInvalidArgument},
		{"unknown param", widget.Barplot, widget.Edit{Op: widget.OpSet, Param: "nope", Value: 1.0}, perr.ErrorCodeInvalidArgument},
		{"out of range", widget.Transitions, widget.Edit{Op: widget.OpSet, Param: "color_hue", Value: 500.0}, perr.ErrorCodeInvalidArgument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Edit(ctx, id, tc.kind, tc.edit); !perr.IsCode(err, tc.code) {
				t.Fatalf("want code %d, got %v", tc.code, err)
			}
			if w := widgetOf(t, s, id, tc.kind); w.Dirty {
				t.Fatalf("rejected edit dirtied %s", tc.kind)
			}
		})
	}
}

func TestLinks(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSvc(t, fb, nil)
	ctx := context.Background()
	id := loaded(t, s, fb)

	out, err := s.Links(ctx, id, widget.Transitions)
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	if out.Links.GML != "media/transitions-1.gml" || out.Links.Statistics != "media/transitions-1-statistics.csv" {
		t.Fatalf("links = %+v", out.Links)
	}
	if out.Exports.SVG != "Lamprologus_ocellatus_transitions.svg" {
		t.Fatalf("exports = %+v", out.Exports)
	}

	fresh, _ := s.Create(ctx)
	if _, err := s.Links(ctx, fresh.ID, widget.Transitions); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("links without dataset: %v", err)
	}
}

func TestLinks_HiddenDuringReset(t *testing.T) {
	fb := newFakeBackend()
	s := newTestSvc(t, fb, nil)
	ctx := context.Background()
	id := loaded(t, s, fb)

	fb.mu.Lock() // hold validation of the second upload
	if _, err := s.LoadDataset(ctx, id, dataset.Upload{Name: "second run", Example: "example2"}); err != nil {
		fb.mu.Unlock()
		t.Fatalf("LoadDataset: %v", err)
	}
	out, err := s.Links(ctx, id, widget.Transitions)
	fb.mu.Unlock()
	if !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("links while loading = %+v, %v", out, err)
	}

	// the new generation starts without artifacts
	takeCalls(t, fb, len(widget.Kinds()))
	waitFor(t, "dataset loaded", func() bool { return !state(t, s, id).DatasetLoading })
	if _, err := s.Links(ctx, id, widget.Transitions); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("links before first render: %v", err)
	}
}

func TestLifecycle(t *testing.T) {
	s := New(newFakeBackend(), nil, Config{MaxWorkspaces: 2, IdleTTL: time.Minute})
	defer s.Shutdown()
	ctx := context.Background()

	a, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx); !perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
		t.Fatalf("limit: %v", err)
	}

	if err := s.Close(ctx, a.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.State(ctx, a.ID); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("state after close: %v", err)
	}
	if err := s.Close(ctx, a.ID); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("double close: %v", err)
	}

	now := time.Now()
	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	if n := s.sweep(); n != 1 || s.Len() != 0 {
		t.Fatalf("sweep evicted %d, live %d", n, s.Len())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(newFakeBackend(), nil, Config{SweepEvery: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := s.Create(ctx); err != nil {
		t.Fatalf("Create: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop")
	}
	if _, err := s.Create(context.Background()); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("create after shutdown: %v", err)
	}
}
