package middleware

import (
	"io"
	"net/http"
)

// leftover request bodies larger than this are not worth draining for
// the sake of connection reuse
const maxDrainBytes = 64 << 10

// DrainAndCloseRequest drains and closes the request body after the
// handler is done with it, so the connection can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil {
				return
			}
			_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
			_ = r.Body.Close()
		})
	}
}
