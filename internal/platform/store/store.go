// Package store opens the optional backends behind the render ledger
package store

import (
	"context"
	"errors"
	"fmt"

	"tiba/internal/platform/logger"
)

// Store holds whichever backends were enabled at Open
// a zero Store has no backends and closes cleanly
type Store struct {
	Log logger.Logger

	// PG is nil unless postgres is enabled
	PG Transactor

	// CH is nil unless clickhouse is enabled
	CH Clickhouse
}

// Row is a single scanned result
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a statement did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// Querier runs sql against postgres or an open transaction
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// Transactor is a Querier that can also run fn inside one transaction
// fn returning an error rolls the transaction back
type Transactor interface {
	Querier
	Tx(ctx context.Context, fn func(q Querier) error) error
}

// Clickhouse is the columnar seam; Insert takes rows as [][]any
type Clickhouse interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, data any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger reports readiness
type Pinger interface{ Ping(context.Context) error }

// Open connects the backends enabled in cfg
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Str("component", "store").Logger()

	if cfg.PG.Enabled {
		p, err := openPG(ctx, cfg.PG, s.Log)
		if err != nil {
			return nil, fmt.Errorf("store: postgres: %w", err)
		}
		s.PG = p
	}
	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg)
		if err != nil {
			s.closePG()
			return nil, fmt.Errorf("store: clickhouse: %w", err)
		}
		s.CH = c
	}
	s.Log.Info().Bool("pg", s.PG != nil).Bool("ch", s.CH != nil).Msg("store open")
	return s, nil
}

// Guard pings every open backend that can be pinged
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for name, b := range map[string]any{"pg": s.PG, "ch": s.CH} {
		p, ok := b.(Pinger)
		if !ok || p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every open backend
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.CH != nil {
		if err := s.CH.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, s.closePG())
	return errors.Join(errs...)
}

func (s *Store) closePG() error {
	if c, ok := s.PG.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
