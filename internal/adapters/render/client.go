// Package render provides the HTTP client for the rendering backend
//
// every call is a single multipart POST, there are no retries
// failures come back as perr coded errors so callers can decide what to surface
package render

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tiba/internal/core/dataset"
	perr "tiba/internal/platform/errors"
	"tiba/internal/platform/logger"
)

const (
	baseURLDefault = "http://127.0.0.1:8000/"
	defaultTimeout = 5 * time.Minute // distance queries are slow, callers bound renders tighter
	defaultUA      = "tiba-api"
	uploadField    = "upload"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// RatePerSec paces outbound calls, zero disables pacing
	RatePerSec float64
	Burst      int
}

// Client talks to the rendering backend
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if !strings.HasSuffix(o.BaseURL, "/") {
		o.BaseURL += "/"
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	var lim *rate.Limiter
	if o.RatePerSec > 0 {
		lim = rate.NewLimiter(rate.Limit(o.RatePerSec), max(1, o.Burst))
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: lim,
		log:     *logger.Named("render"),
		now:     time.Now,
	}
}

// BaseURL returns the backend root, artifact paths are relative to it
func (c *Client) BaseURL() string { return c.opts.BaseURL }

// Do posts fields and the upload part to path and returns the response on 200
// 204 means the backend could not parse the dataset
func (c *Client) Do(ctx context.Context, path string, fields map[string]string, up *dataset.Upload) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "render rate wait")
		}
	}

	body, ctype, err := encodeForm(fields, up)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "render encode form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+path, body)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "render new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Dur("latency", lat).Msg("render transport error")
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "render backend unreachable")
	}

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("render http response")

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusNoContent:
		_ = drainAndClose(resp.Body)
		return nil, ErrUnparsable
	case http.StatusTooManyRequests:
		_ = drainAndClose(resp.Body)
		return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "render backend rate limited")
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		_ = drainAndClose(resp.Body)
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "render backend unavailable (%d)", resp.StatusCode)
	default:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		code := perr.ErrorCodeUnknown
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			code = perr.ErrorCodeInvalidArgument
		}
		return nil, perr.Newf(code, "render unexpected status %d body %s", resp.StatusCode, strings.TrimSpace(string(tail)))
	}
}

// Ping checks the backend answers http at its base URL
// any status below 500 counts as reachable
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL, nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "render new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "render backend unreachable")
	}
	_ = drainAndClose(resp.Body)
	if resp.StatusCode >= 500 {
		return perr.Newf(perr.ErrorCodeUnavailable, "render backend unhealthy (%d)", resp.StatusCode)
	}
	return nil
}

// ErrUnparsable is returned when the backend answers 204 for a dataset it cannot read
var ErrUnparsable = perr.New(perr.ErrorCodeInvalidArgument, "dataset could not be parsed")

// encodeForm writes fields in key order followed by the upload part
func encodeForm(fields map[string]string, up *dataset.Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}

	if up != nil {
		switch {
		case up.IsExample():
			if err := w.WriteField(uploadField, up.Example); err != nil {
				return nil, "", err
			}
		case len(up.File) > 0:
			name := up.Filename
			if name == "" {
				name = "upload.csv"
			}
			part, err := w.CreateFormFile(uploadField, name)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(up.File); err != nil {
				return nil, "", err
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 64<<10))
	return rc.Close()
}
