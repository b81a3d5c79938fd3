// Package service hosts workspaces, one event loop per workspace
package service

import (
	"context"
	"sync"
	"time"

	"tiba/internal/core/dataset"
	"tiba/internal/core/widget"
	perr "tiba/internal/platform/errors"
	"tiba/internal/platform/logger"
	pnet "tiba/internal/platform/net"
	"tiba/internal/services/api/workspace/domain"

	"github.com/google/uuid"
)

// Service defines the workspace service contract
type Service interface {
	domain.ServicePort
	domain.WorkerPort
}

// Config tunes workspace lifetimes and backend deadlines
type Config struct {
	MaxWorkspaces  int
	IdleTTL        time.Duration
	SweepEvery     time.Duration
	InboxSize      int
	RenderTimeout  time.Duration
	DatasetTimeout time.Duration
	LedgerTimeout  time.Duration
	ArtifactBase   string
}

func (c Config) withDefaults() Config {
	if c.MaxWorkspaces <= 0 {
		c.MaxWorkspaces = 256
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 2 * time.Hour
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = time.Minute
	}
	if c.InboxSize <= 0 {
		c.InboxSize = 16
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = 2 * time.Minute
	}
	if c.DatasetTimeout <= 0 {
		c.DatasetTimeout = time.Minute
	}
	if c.LedgerTimeout <= 0 {
		c.LedgerTimeout = 5 * time.Second
	}
	return c
}

type entry struct {
	ws       *workspace
	lastSeen time.Time
}

// Svc implements the Service interface
type Svc struct {
	backend domain.Backend
	ledger  domain.Ledger
	cfg     Config
	now     func() time.Time

	root context.Context
	stop context.CancelFunc

	mu     sync.Mutex
	spaces map[string]*entry
}

// New creates a workspace service; ledger may be nil
func New(backend domain.Backend, ledger domain.Ledger, cfg Config) *Svc {
	if backend == nil {
		panic("workspace.Service requires a non nil Backend")
	}
	root, stop := context.WithCancel(context.Background())
	return &Svc{
		backend: backend,
		ledger:  ledger,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		root:    root,
		stop:    stop,
		spaces:  map[string]*entry{},
	}
}

// Create starts a new empty workspace
func (s *Svc) Create(ctx context.Context) (domain.State, error) {
	s.mu.Lock()
	if len(s.spaces) >= s.cfg.MaxWorkspaces {
		s.mu.Unlock()
		return domain.State{}, perr.Newf(perr.ErrorCodeTooManyRequests, "workspace limit of %d reached", s.cfg.MaxWorkspaces)
	}
	if s.root.Err() != nil {
		s.mu.Unlock()
		return domain.State{}, perr.Unavailablef("workspace service is shutting down")
	}
	id := uuid.NewString()
	ws := newWorkspace(s.root, id, s)
	s.spaces[id] = &entry{ws: ws, lastSeen: s.now()}
	s.mu.Unlock()

	go ws.run()
	logger.C(logger.WithRequest(ctx, pnet.RequestID(ctx), id)).Info().Msg("workspace created")
	return ask(ctx, ws, func(ch chan<- reply[domain.State]) message { return stateCmd{reply: ch} })
}

// State returns a snapshot of the workspace
func (s *Svc) State(ctx context.Context, id string) (domain.State, error) {
	ws, err := s.get(id)
	if err != nil {
		return domain.State{}, err
	}
	return ask(ctx, ws, func(ch chan<- reply[domain.State]) message { return stateCmd{reply: ch} })
}

// Close stops the workspace loop and forgets it
func (s *Svc) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.spaces[id]
	delete(s.spaces, id)
	s.mu.Unlock()
	if !ok {
		return perr.NotFoundf("workspace %s not found", id)
	}
	e.ws.cancel()
	logger.C(logger.WithRequest(ctx, pnet.RequestID(ctx), id)).Info().Msg("workspace closed")
	return nil
}

// LoadDataset replaces the dataset of the workspace and starts validation
func (s *Svc) LoadDataset(ctx context.Context, id string, up dataset.Upload) (domain.State, error) {
	ws, err := s.get(id)
	if err != nil {
		return domain.State{}, err
	}
	return ask(ctx, ws, func(ch chan<- reply[domain.State]) message { return resetCmd{upload: up, reply: ch} })
}

// Edit applies one edit to a widget without rendering
func (s *Svc) Edit(ctx context.Context, id string, kind widget.Kind, e widget.Edit) (domain.WidgetState, error) {
	ws, err := s.get(id)
	if err != nil {
		return domain.WidgetState{}, err
	}
	return ask(ctx, ws, func(ch chan<- reply[domain.WidgetState]) message {
		return editCmd{kind: kind, edit: e, reply: ch}
	})
}

// Apply renders the widget if it has unapplied changes and nothing in flight
func (s *Svc) Apply(ctx context.Context, id string, kind widget.Kind) (domain.WidgetState, error) {
	ws, err := s.get(id)
	if err != nil {
		return domain.WidgetState{}, err
	}
	return ask(ctx, ws, func(ch chan<- reply[domain.WidgetState]) message { return applyCmd{kind: kind, reply: ch} })
}

// Links resolves the artifact download locations of a widget
func (s *Svc) Links(ctx context.Context, id string, kind widget.Kind) (domain.LinksOutput, error) {
	ws, err := s.get(id)
	if err != nil {
		return domain.LinksOutput{}, err
	}
	return ask(ctx, ws, func(ch chan<- reply[domain.LinksOutput]) message { return linksCmd{kind: kind, reply: ch} })
}

// Len returns the number of live workspaces
func (s *Svc) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spaces)
}

// Run evicts idle workspaces until ctx is done, then stops every workspace
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("workspace-janitor")
	ticker := time.NewTicker(s.cfg.SweepEvery)
	defer ticker.Stop()
	defer s.Shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				log.Info().Int("evicted", n).Int("live", s.Len()).Msg("idle workspaces evicted")
			}
		}
	}
}

// Shutdown stops every workspace loop
func (s *Svc) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
	clear(s.spaces)
}

// sweep drops workspaces not touched within IdleTTL
func (s *Svc) sweep() int {
	cutoff := s.now().Add(-s.cfg.IdleTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.spaces {
		if e.lastSeen.Before(cutoff) {
			e.ws.cancel()
			delete(s.spaces, id)
			n++
		}
	}
	return n
}

func (s *Svc) get(id string) (*workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.spaces[id]
	if !ok {
		return nil, perr.NotFoundf("workspace %s not found", id)
	}
	e.lastSeen = s.now()
	return e.ws, nil
}
