// Package http serves liveness, readiness and build info
package http

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"tiba/internal/core/version"
	"tiba/internal/modkit/httpkit"
)

// Pinger is anything the readiness probe can ping
type Pinger interface {
	Ping(context.Context) error
}

// Check is one dependency of readiness
// a nil Ping is reported as skipped
type Check struct {
	Name     string
	Required bool
	Ping     Pinger
}

// Deps are the handler dependencies
type Deps struct {
	Service   string
	StartedAt time.Time
	Checks    []Check
	// ProbeTimeout bounds every readiness ping, default 2s
	ProbeTimeout time.Duration
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.ProbeTimeout <= 0 {
		d.ProbeTimeout = 2 * time.Second
	}
	h := &handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

type handlers struct{ deps Deps }

// Readiness values
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFail     = "fail"
	StatusSkipped  = "skipped"
)

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"tiba-api"`
	Now     string `json:"now"     example:"2026-10-16T13:05:00Z"`
}

// CheckResult is the outcome of one dependency ping
type CheckResult struct {
	Name     string `json:"name"               example:"render"`
	Required bool   `json:"required"           example:"true"`
	Status   string `json:"status"             example:"ok"`
	Error    string `json:"error,omitempty"    example:"dial tcp 127.0.0.1:8000: connect: connection refused"`
	TookMS   int64  `json:"took_ms,omitempty"  example:"3"`
}

// ReadyResponse reports fail when a required check fails and degraded when an optional one does
type ReadyResponse struct {
	Status string        `json:"status" example:"ok"`
	Checks []CheckResult `json:"checks"`
}

// ServiceResponse is the uptime payload
type ServiceResponse struct {
	Name    string `json:"name"    example:"tiba-api"`
	Started string `json:"started" example:"2026-10-16T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.deps.Service, Now: time.Now().UTC().Format(time.RFC3339)}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness with dependency checks
// @Description The render backend is required; the ledger stores are optional
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok or degraded"
// @Failure 503 {object} ReadyResponse "a required dependency is down"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	res := make([]CheckResult, len(h.deps.Checks))
	g, ctx := errgroup.WithContext(r.Context())
	for i, c := range h.deps.Checks {
		out := CheckResult{Name: c.Name, Required: c.Required, Status: StatusSkipped}
		if c.Ping == nil {
			res[i] = out
			continue
		}
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, h.deps.ProbeTimeout)
			defer cancel()
			start := time.Now()
			err := c.Ping.Ping(pctx)
			out.TookMS = time.Since(start).Milliseconds()
			out.Status = StatusOK
			if err != nil {
				out.Status, out.Error = StatusFail, err.Error()
			}
			res[i] = out
			return nil
		})
	}
	_ = g.Wait()

	resp := ReadyResponse{Status: StatusOK, Checks: res}
	for _, c := range res {
		switch {
		case c.Status != StatusFail:
		case c.Required:
			resp.Status = StatusFail
		case resp.Status == StatusOK:
			resp.Status = StatusDegraded
		}
	}
	if resp.Status == StatusFail {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: resp}, nil
	}
	return resp, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(*http.Request) (any, error) {
	return version.Info(), nil
}

// @Summary Uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h *handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.Service,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(h.deps.StartedAt).Seconds()),
	}, nil
}
