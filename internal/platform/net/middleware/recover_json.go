package middleware

import (
	"net/http"
	"runtime/debug"

	perr "tiba/internal/platform/errors"
	"tiba/internal/platform/logger"
	pnet "tiba/internal/platform/net"
	phttp "tiba/internal/platform/net/http"
)

// RecoverJSON turns a panic into a 500 envelope and logs the stack.
// Mount it after RequestID so both carry the id.
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			switch v {
			case nil:
				return
			case http.ErrAbortHandler:
				panic(v)
			}
			id := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Str("request_id", id).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if id != "" {
				w.Header().Set("X-Request-ID", id)
			}
			wire := perr.WireFrom(perr.PanicErrf("panic recovered"))
			phttp.JSON(w, http.StatusInternalServerError, phttp.Envelope{
				StatusCode: http.StatusInternalServerError,
				Status:     http.StatusText(http.StatusInternalServerError),
				Code:       wire.Code,
				Error:      wire.Message,
				RequestID:  id,
			})
		}()
		next.ServeHTTP(w, r)
	})
}
