// Package logger holds the process root logger and derives request scoped
// children from context.
//
// The root is built once, either explicitly through Init or lazily from
// LOG_* variables on first use.
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tiba/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logger type every package passes around
type Logger = zerolog.Logger

// Options shape the root logger
type Options struct {
	Level  string
	Format string // console or json
	// Service is stamped on every line when set
	Service string
	Writer  io.Writer
	Caller  bool
	Fields  map[string]string
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE and LOG_CALLER
// it goes through raw so config can log without an import cycle
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:   env.Get("LEVEL", "info"),
		Format:  strings.ToLower(env.Get("FORMAT", "console")),
		Service: env.Get("SERVICE", ""),
		Caller:  env.GetBool("CALLER", false),
	}
}

var (
	once sync.Once
	root atomic.Pointer[Logger]
)

// Init builds the root logger; only the first call has any effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		w := opt.Writer
		if w == nil {
			w = os.Stdout
		}
		if opt.Format == "console" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		b := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp()
		if bi, ok := debug.ReadBuildInfo(); ok {
			b = b.Str("go_version", bi.GoVersion)
		}
		if opt.Service != "" {
			b = b.Str("service", opt.Service)
		}
		for k, v := range opt.Fields {
			b = b.Str(k, v)
		}
		if opt.Caller {
			b = b.Caller()
		}
		l := b.Logger()
		root.Store(&l)
	})
}

// Get returns the root logger, building it from the environment if needed
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// ParseLevel maps a level name to zerolog, unknown names mean info
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Named returns a child of the root tagged with component
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey int

const (
	requestKey ctxKey = iota
	workspaceKey
)

// WithRequest stores the request id and workspace on ctx; empty values are skipped
func WithRequest(ctx context.Context, reqID, workspace string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, requestKey, reqID)
	}
	if workspace != "" {
		ctx = context.WithValue(ctx, workspaceKey, workspace)
	}
	return ctx
}

// C returns the root logger with whatever WithRequest put on ctx
func C(ctx context.Context) *Logger {
	b := Get().With()
	if s, _ := ctx.Value(requestKey).(string); s != "" {
		b = b.Str("request_id", s)
	}
	if s, _ := ctx.Value(workspaceKey).(string); s != "" {
		b = b.Str("workspace", s)
	}
	l := b.Logger()
	return &l
}
