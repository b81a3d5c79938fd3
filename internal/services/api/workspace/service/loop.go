package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"tiba/internal/core/dataset"
	"tiba/internal/core/widget"
	perr "tiba/internal/platform/errors"
	"tiba/internal/platform/logger"
	"tiba/internal/services/api/workspace/domain"

	"github.com/google/uuid"
)

// message is anything the workspace loop handles
// handle always runs on the loop goroutine
type message interface{ handle(w *workspace) }

type reply[T any] struct {
	v   T
	err error
}

// workspace owns one dataset and its widgets
// every field below inbox is touched only by run
type workspace struct {
	id      string
	backend domain.Backend
	ledger  domain.Ledger
	cfg     Config
	now     func() time.Time
	log     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan message
	done   chan struct{}

	gen        dataset.Generation
	upload     dataset.Upload
	hasUpload  bool
	loading    bool
	validation domain.Validation
	dom        *dataset.Domain
	widgets    map[widget.Kind]*widget.Config
	updated    time.Time
}

func newWorkspace(parent context.Context, id string, s *Svc) *workspace {
	ctx, cancel := context.WithCancel(parent)
	w := &workspace{
		id:         id,
		backend:    s.backend,
		ledger:     s.ledger,
		cfg:        s.cfg,
		now:        s.now,
		ctx:        ctx,
		cancel:     cancel,
		inbox:      make(chan message, s.cfg.InboxSize),
		done:       make(chan struct{}),
		validation: domain.Validation{Status: domain.ValidationIdle},
		updated:    s.now(),
	}
	l := logger.Named("workspace").With().Str("workspace", id).Logger()
	w.log = &l
	return w
}

func (w *workspace) run() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return
		case m := <-w.inbox:
			m.handle(w)
		}
	}
}

// post delivers a completion; it is dropped once the loop has stopped
func (w *workspace) post(m message) {
	select {
	case w.inbox <- m:
	case <-w.done:
	}
}

// ask sends a command built around a reply channel and waits for the answer
func ask[T any](ctx context.Context, w *workspace, mk func(chan<- reply[T]) message) (T, error) {
	var zero T
	ch := make(chan reply[T], 1)
	select {
	case w.inbox <- mk(ch):
	case <-w.done:
		return zero, w.closedErr()
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case r := <-ch:
		return r.v, r.err
	case <-w.done:
		select {
		case r := <-ch:
			return r.v, r.err
		default:
			return zero, w.closedErr()
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (w *workspace) closedErr() error { return perr.NotFoundf("workspace %s is closed", w.id) }

// background returns a context detached from callers and bounded by d
func (w *workspace) background(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(w.ctx), d)
}

// commands

type stateCmd struct{ reply chan<- reply[domain.State] }

func (m stateCmd) handle(w *workspace) { m.reply <- reply[domain.State]{v: w.state()} }

type resetCmd struct {
	upload dataset.Upload
	reply  chan<- reply[domain.State]
}

func (m resetCmd) handle(w *workspace) {
	st, err := w.resetDataset(m.upload)
	m.reply <- reply[domain.State]{v: st, err: err}
}

type editCmd struct {
	kind  widget.Kind
	edit  widget.Edit
	reply chan<- reply[domain.WidgetState]
}

func (m editCmd) handle(w *workspace) {
	ws, err := w.edit(m.kind, m.edit)
	m.reply <- reply[domain.WidgetState]{v: ws, err: err}
}

type applyCmd struct {
	kind  widget.Kind
	reply chan<- reply[domain.WidgetState]
}

func (m applyCmd) handle(w *workspace) {
	ws, err := w.apply(m.kind)
	m.reply <- reply[domain.WidgetState]{v: ws, err: err}
}

type linksCmd struct {
	kind  widget.Kind
	reply chan<- reply[domain.LinksOutput]
}

func (m linksCmd) handle(w *workspace) {
	out, err := w.links(m.kind)
	m.reply <- reply[domain.LinksOutput]{v: out, err: err}
}

// completions

type datasetLoaded struct {
	gen     dataset.Generation
	report  dataset.ValidationReport
	dom     dataset.Domain
	domErr  error
	err     error
	elapsed time.Duration
}

func (m datasetLoaded) handle(w *workspace) { w.datasetLoaded(m) }

type renderDone struct {
	req      widget.RenderRequest
	artifact string
	err      error
	elapsed  time.Duration
}

func (m renderDone) handle(w *workspace) { w.renderDone(m) }

// handlers

func (w *workspace) resetDataset(up dataset.Upload) (domain.State, error) {
	if up.Zero() {
		return domain.State{}, perr.WithField(perr.InvalidArgf("upload is empty"), "upload")
	}
	w.gen++
	w.upload = up
	w.hasUpload = true
	w.dom = nil
	w.loading = true
	w.validation = domain.Validation{Status: domain.ValidationValidating}
	w.updated = w.now()

	gen := w.gen
	w.log.Info().Uint64("generation", uint64(gen)).Str("upload", uploadLabel(up)).Msg("dataset reset")
	go w.loadDataset(gen, up)
	return w.state(), nil
}

// loadDataset validates the upload and fetches its domain concurrently
// a domain failure does not cancel validation since validation messages win
func (w *workspace) loadDataset(gen dataset.Generation, up dataset.Upload) {
	ctx, cancel := w.background(w.cfg.DatasetTimeout)
	defer cancel()
	start := w.now()

	var (
		rep    dataset.ValidationReport
		dom    dataset.Domain
		domErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := w.backend.Validate(gctx, up)
		if err != nil {
			return perr.WithOp(err, "validate")
		}
		rep = r
		return nil
	})
	g.Go(func() error {
		dom, domErr = w.backend.Domain(gctx, up)
		return nil
	})
	err := g.Wait()
	w.post(datasetLoaded{gen: gen, report: rep, dom: dom, domErr: domErr, err: err, elapsed: w.now().Sub(start)})
}

func (w *workspace) datasetLoaded(m datasetLoaded) {
	if m.gen != w.gen {
		w.log.Debug().Uint64("generation", uint64(m.gen)).Msg("stale dataset load dropped")
		return
	}
	w.loading = false
	w.updated = w.now()

	var messages []string
	switch {
	case m.err != nil:
		messages = []string{m.err.Error()}
	case !m.report.Success:
		messages = m.report.Messages
		if len(messages) == 0 {
			messages = []string{"upload rejected by backend"}
		}
	case m.domErr != nil:
		messages = []string{m.domErr.Error()}
	}
	if messages != nil {
		w.widgets = nil
		w.validation = domain.Validation{Status: domain.ValidationError, Messages: messages}
		w.log.Warn().Strs("messages", messages).Dur("elapsed", m.elapsed).Msg("dataset rejected")
		return
	}

	dom := m.dom
	dom.Generation = m.gen
	w.dom = &dom
	w.validation = domain.Validation{Status: domain.ValidationValid, Messages: m.report.Messages}
	w.widgets = make(map[widget.Kind]*widget.Config, len(widget.Kinds()))
	for _, k := range widget.Kinds() {
		cfg := widget.Reset(k, dom)
		w.widgets[k] = cfg
		w.dispatch(cfg.Prime(w.upload))
	}
	w.log.Info().
		Int("ids", len(dom.IDs)).
		Int("behaviors", len(dom.Behaviors)).
		Int("categories", len(dom.Categories)).
		Dur("elapsed", m.elapsed).
		Msg("dataset loaded")
}

// active looks up a widget that accepts edits
func (w *workspace) active(kind widget.Kind) (*widget.Config, error) {
	switch {
	case w.loading:
		return nil, perr.Conflictf("dataset is loading")
	case w.dom == nil:
		return nil, perr.Conflictf("no dataset loaded")
	}
	cfg, ok := w.widgets[kind]
	if !ok {
		return nil, perr.NotFoundf("widget %s not found", kind)
	}
	return cfg, nil
}

func (w *workspace) edit(kind widget.Kind, e widget.Edit) (domain.WidgetState, error) {
	cfg, err := w.active(kind)
	if err != nil {
		return domain.WidgetState{}, err
	}
	if err := cfg.ApplyEdit(e, *w.dom); err != nil {
		return domain.WidgetState{}, err
	}
	w.updated = w.now()
	return w.widgetState(cfg), nil
}

func (w *workspace) apply(kind widget.Kind) (domain.WidgetState, error) {
	cfg, err := w.active(kind)
	if err != nil {
		return domain.WidgetState{}, err
	}
	req, err := cfg.Fire(w.upload)
	if err != nil {
		return domain.WidgetState{}, err
	}
	w.dispatch(req)
	w.updated = w.now()
	return w.widgetState(cfg), nil
}

// links is gated like edits, no files are served while a dataset loads
func (w *workspace) links(kind widget.Kind) (domain.LinksOutput, error) {
	cfg, err := w.active(kind)
	if err != nil {
		return domain.LinksOutput{}, err
	}
	l, err := widget.LinksFor(kind, cfg.Artifact)
	if err != nil {
		return domain.LinksOutput{}, err
	}
	name := w.upload.Name
	if name == "" {
		name = w.upload.Example
	}
	return domain.LinksOutput{
		Kind:    kind,
		Base:    w.cfg.ArtifactBase,
		Links:   l,
		Exports: widget.ExportNames(kind, name),
	}, nil
}

// dispatch sends one render request; the loop never waits for it
func (w *workspace) dispatch(req widget.RenderRequest) {
	req.ID = uuid.NewString()
	req.Workspace = w.id
	w.record(req, domain.EventDispatched, "", nil, 0)

	go func() {
		ctx, cancel := w.background(w.cfg.RenderTimeout)
		defer cancel()
		start := w.now()
		art, err := w.backend.Render(ctx, req)
		w.post(renderDone{req: req, artifact: art, err: err, elapsed: w.now().Sub(start)})
	}()
}

func (w *workspace) renderDone(m renderDone) {
	outcome := widget.Stale
	if cfg, ok := w.widgets[m.req.Kind]; ok && m.req.Generation == w.gen {
		outcome = cfg.Complete(m.req.Result(m.artifact, m.err))
	}
	ev := w.log.Debug()
	switch outcome {
	case widget.Applied:
		w.updated = w.now()
		w.record(m.req, domain.EventRendered, m.artifact, nil, m.elapsed)
	case widget.Failed:
		w.updated = w.now()
		ev = w.log.Warn().Err(m.err)
		w.record(m.req, domain.EventFailed, "", m.err, m.elapsed)
	default:
		w.record(m.req, domain.EventStale, m.artifact, m.err, m.elapsed)
	}
	ev.Str("kind", string(m.req.Kind)).
		Uint64("generation", uint64(m.req.Generation)).
		Uint64("seq", m.req.Seq).
		Str("outcome", outcome.String()).
		Dur("elapsed", m.elapsed).
		Msg("render complete")
}

// record writes a ledger row off the loop
func (w *workspace) record(req widget.RenderRequest, ev domain.LedgerEvent, artifact string, err error, elapsed time.Duration) {
	if w.ledger == nil {
		return
	}
	e := domain.LedgerEntry{
		RequestID:  req.ID,
		Workspace:  req.Workspace,
		Kind:       req.Kind,
		Generation: req.Generation,
		Seq:        req.Seq,
		Event:      ev,
		Artifact:   artifact,
		Latency:    elapsed,
		At:         w.now(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	go func() {
		ctx, cancel := w.background(w.cfg.LedgerTimeout)
		defer cancel()
		if err := w.ledger.Record(ctx, e); err != nil {
			w.log.Warn().Err(err).Str("request_id", e.RequestID).Msg("ledger write failed")
		}
	}()
}

func (w *workspace) visible() bool { return !w.loading && w.dom != nil }

func (w *workspace) widgetState(cfg *widget.Config) domain.WidgetState {
	return domain.WidgetState{View: cfg.View(), Visible: w.visible()}
}

func (w *workspace) state() domain.State {
	st := domain.State{
		ID:             w.id,
		Generation:     w.gen,
		DatasetLoading: w.loading,
		Validation: domain.Validation{
			Status:   w.validation.Status,
			Messages: append([]string(nil), w.validation.Messages...),
		},
		Widgets:   make([]domain.WidgetState, 0, len(w.widgets)),
		UpdatedAt: w.updated,
	}
	if w.hasUpload {
		st.Upload = &domain.UploadInfo{Name: w.upload.Name, Example: w.upload.Example}
	}
	if w.dom != nil {
		dom := *w.dom
		st.Domain = &dom
	}
	for _, k := range widget.Kinds() {
		if cfg, ok := w.widgets[k]; ok {
			st.Widgets = append(st.Widgets, w.widgetState(cfg))
		}
	}
	return st
}

func uploadLabel(up dataset.Upload) string {
	if up.IsExample() {
		return up.Example
	}
	if up.Filename != "" {
		return up.Filename
	}
	return up.Name
}
