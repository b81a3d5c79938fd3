// Package service holds compare sessions: two groups of transition networks and a distance query
package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tiba/internal/core/dataset"
	"tiba/internal/core/widget"
	perr "tiba/internal/platform/errors"
	"tiba/internal/platform/logger"
	pnet "tiba/internal/platform/net"
	"tiba/internal/services/api/compare/domain"

	"github.com/google/uuid"
)

// Service defines the compare service contract
type Service interface {
	domain.ServicePort
	domain.WorkerPort
}

// Config tunes session lifetimes and backend deadlines
type Config struct {
	MaxSessions int
	IdleTTL     time.Duration
	SweepEvery  time.Duration
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxSessions <= 0 {
		c.MaxSessions = 64
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 2 * time.Hour
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = time.Minute
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Minute
	}
	return c
}

// session is guarded by mu; backend calls run without holding it
type session struct {
	mu         sync.Mutex
	id         string
	groupA     []string
	groupB     []string
	settings   domain.Settings
	configured bool
	last       *domain.UploadOutcome
	result     *domain.Result
	updated    time.Time
	lastSeen   time.Time
}

// Svc implements the Service interface
type Svc struct {
	backend domain.Backend
	cfg     Config
	now     func() time.Time

	mu       sync.Mutex
	closed   bool
	sessions map[string]*session
}

// New creates a compare service
func New(backend domain.Backend, cfg Config) *Svc {
	if backend == nil {
		panic("compare.Service requires a non nil Backend")
	}
	return &Svc{
		backend:  backend,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		sessions: map[string]*session{},
	}
}

// Create opens an empty session with default settings
func (s *Svc) Create(ctx context.Context) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.State{}, perr.Unavailablef("compare service is shutting down")
	}
	if len(s.sessions) >= s.cfg.MaxSessions {
		return domain.State{}, perr.Newf(perr.ErrorCodeTooManyRequests, "compare session limit of %d reached", s.cfg.MaxSessions)
	}
	now := s.now()
	ss := &session{
		id:         uuid.NewString(),
		settings:   domain.DefaultSettings(),
		configured: true,
		updated:    now,
		lastSeen:   now,
	}
	s.sessions[ss.id] = ss
	logger.C(logger.WithRequest(ctx, pnet.RequestID(ctx), ss.id)).Info().Msg("compare session created")
	return ss.state(), nil
}

// State returns a session snapshot
func (s *Svc) State(_ context.Context, id string) (domain.State, error) {
	ss, err := s.get(id)
	if err != nil {
		return domain.State{}, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.state(), nil
}

// Close drops a session
func (s *Svc) Close(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return perr.NotFoundf("compare session %s not found", id)
	}
	delete(s.sessions, id)
	return nil
}

// AddDataset validates the upload and renders its transition network in parallel
// an accepted upload joins group A
func (s *Svc) AddDataset(ctx context.Context, id string, up dataset.Upload) (domain.State, error) {
	if up.Zero() {
		return domain.State{}, perr.WithField(perr.InvalidArgf("upload is empty"), "upload")
	}
	ss, err := s.get(id)
	if err != nil {
		return domain.State{}, err
	}
	log := logger.C(logger.WithRequest(ctx, pnet.RequestID(ctx), id)).With().Str("upload", label(up)).Logger()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var (
		rep       dataset.ValidationReport
		artifact  string
		renderErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.backend.Validate(gctx, up)
		if err != nil {
			return perr.WithOp(err, "validate")
		}
		rep = r
		return nil
	})
	g.Go(func() error {
		artifact, renderErr = s.backend.Render(gctx, networkRequest(id, up))
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.State{}, err
	}

	out := &domain.UploadOutcome{Name: label(up)}
	switch {
	case !rep.Success:
		out.Messages = rep.Messages
		if len(out.Messages) == 0 {
			out.Messages = []string{"upload rejected by backend"}
		}
	case renderErr != nil:
		out.Messages = []string{renderErr.Error()}
	default:
		links, err := widget.LinksFor(widget.Transitions, artifact)
		if err != nil {
			return domain.State{}, err
		}
		out.Accepted = true
		out.Entry = out.Name + "/" + links.GML
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.last = out
	ss.updated = s.now()
	if !out.Accepted {
		log.Warn().Strs("messages", out.Messages).Msg("compare upload rejected")
		return ss.state(), nil
	}
	if !slices.Contains(ss.groupA, out.Entry) && !slices.Contains(ss.groupB, out.Entry) {
		ss.groupA = append(ss.groupA, out.Entry)
		ss.configured = true
	}
	log.Info().Str("entry", out.Entry).Int("group_a", len(ss.groupA)).Msg("compare network added")
	return ss.state(), nil
}

// Switch toggles entry in both groups, moving it from one to the other
func (s *Svc) Switch(_ context.Context, id, entry string) (domain.State, error) {
	ss, err := s.get(id)
	if err != nil {
		return domain.State{}, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if !slices.Contains(ss.groupA, entry) && !slices.Contains(ss.groupB, entry) {
		return domain.State{}, perr.WithField(perr.NotFoundf("entry %q is not part of this session", entry), "entry")
	}
	ss.groupA = toggle(ss.groupA, entry)
	ss.groupB = toggle(ss.groupB, entry)
	ss.configured = true
	ss.updated = s.now()
	return ss.state(), nil
}

// Configure changes distance settings
func (s *Svc) Configure(_ context.Context, id string, in domain.SettingsInput) (domain.State, error) {
	ss, err := s.get(id)
	if err != nil {
		return domain.State{}, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.settings = in.Apply(ss.settings)
	ss.configured = true
	ss.updated = s.now()
	return ss.state(), nil
}

// Distances runs the distance query over both groups and keeps the result
func (s *Svc) Distances(ctx context.Context, id string) (domain.State, error) {
	ss, err := s.get(id)
	if err != nil {
		return domain.State{}, err
	}
	ss.mu.Lock()
	q := domain.Query{
		GroupA:   slices.Clone(ss.groupA),
		GroupB:   slices.Clone(ss.groupB),
		Settings: ss.settings,
	}
	ss.mu.Unlock()
	if len(q.GroupA)+len(q.GroupB) < 2 {
		return domain.State{}, perr.Conflictf("at least two networks are needed, have %d", len(q.GroupA)+len(q.GroupB))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	start := s.now()
	res, err := s.backend.Distances(ctx, q)
	if err != nil {
		return domain.State{}, perr.WithOp(err, "distances")
	}
	logger.C(ctx).Info().
		Str("session", id).
		Str("algorithm", string(q.Algorithm)).
		Int("networks", len(q.GroupA)+len(q.GroupB)).
		Dur("elapsed", s.now().Sub(start)).
		Msg("distances computed")

	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.result = &res
	ss.configured = false
	ss.updated = s.now()
	return ss.state(), nil
}

// Len reports the number of live sessions
func (s *Svc) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run evicts idle sessions until ctx is done
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("compare-janitor")
	ticker := time.NewTicker(s.cfg.SweepEvery)
	defer ticker.Stop()
	defer s.Shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				log.Info().Int("evicted", n).Int("live", s.Len()).Msg("idle compare sessions evicted")
			}
		}
	}
}

// Shutdown drops every session and refuses new ones
func (s *Svc) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	clear(s.sessions)
}

func (s *Svc) sweep() int {
	cutoff := s.now().Add(-s.cfg.IdleTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, ss := range s.sessions {
		if ss.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Svc) get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[id]
	if !ok {
		return nil, perr.NotFoundf("compare session %s not found", id)
	}
	ss.lastSeen = s.now()
	return ss, nil
}

func (ss *session) state() domain.State {
	st := domain.State{
		ID:         ss.id,
		GroupA:     slices.Clone(ss.groupA),
		GroupB:     slices.Clone(ss.groupB),
		Settings:   ss.settings,
		Configured: ss.configured,
		Result:     ss.result,
		UpdatedAt:  ss.updated,
	}
	if st.GroupA == nil {
		st.GroupA = []string{}
	}
	if st.GroupB == nil {
		st.GroupB = []string{}
	}
	if ss.last != nil {
		last := *ss.last
		st.LastUpload = &last
	}
	return st
}

// networkRequest is the standardized transition network used for comparisons:
// behaviors as nodes, edges weighted by relative succession frequency
func networkRequest(session string, up dataset.Upload) widget.RenderRequest {
	return widget.RenderRequest{
		ID:        uuid.NewString(),
		Workspace: session,
		Kind:      widget.Transitions,
		Upload:    up,
		Params:    map[string]any{"option": false, "normalized": true},
	}
}

func toggle(list []string, v string) []string {
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return append(list, v)
}

func label(up dataset.Upload) string {
	switch {
	case up.Name != "":
		return up.Name
	case up.Example != "":
		return up.Example
	}
	return up.Filename
}
