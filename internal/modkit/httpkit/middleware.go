package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"tiba/internal/platform/net/middleware"
)

// CommonStack returns a baseline per module middleware slice
// main composes it with anything service specific
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 30 * time.Second}),

		// cross-origin, the widget page is served from elsewhere
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(5 * time.Minute), // compare queries block the request
	}
}
