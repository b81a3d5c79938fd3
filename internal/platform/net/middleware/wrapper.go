// Package middleware wraps chi middleware behind plain net/http signatures
// and adds the access log and JSON panic recovery.
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"

	pstrings "tiba/internal/platform/strings"
)

// Middleware is the shape every constructor here returns
type Middleware = func(http.Handler) http.Handler

func RequestID() Middleware              { return chimw.RequestID }
func RealIP() Middleware                 { return chimw.RealIP }
func NoCache() Middleware                { return chimw.NoCache }
func RedirectSlashes() Middleware        { return chimw.RedirectSlashes }
func StripSlashes() Middleware           { return chimw.StripSlashes }
func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }
func Heartbeat(path string) Middleware   { return chimw.Heartbeat(path) }

// Compress gzips/deflates responses; level 0 picks the flate default
func Compress(level int) Middleware {
	if level == 0 {
		level = flate.DefaultCompression
	}
	return chimw.NewCompressor(level).Handler
}

// CORSOptions mirrors the subset of go-chi/cors the API sets. Empty lists fall back to defaults.
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Accept", "Content-Type", "X-Request-ID"}
	corsExposed = []string{"X-Request-ID"}
)

// CORS lets the widget page, served from another origin, post uploads and edits
func CORS(o CORSOptions) Middleware {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, corsMethods),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, corsHeaders),
		ExposedHeaders:   pstrings.IfEmpty(o.ExposedHeaders, corsExposed),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
