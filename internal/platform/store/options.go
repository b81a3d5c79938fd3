package store

import (
	"tiba/internal/platform/logger"
)

// Option adjusts a Store before backends open
type Option func(*Store) error

// WithLogger sets the logger backends derive theirs from
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
