package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// ProcessTime reports how long a request took via the X-Process-Time
// response header, in seconds.
func ProcessTime() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&processTimeWriter{ResponseWriter: w, begin: time.Now()}, r)
		})
	}
}

// processTimeWriter stamps the header right before the status line
// goes out, headers are immutable after that.
type processTimeWriter struct {
	http.ResponseWriter
	begin       time.Time
	wroteHeader bool
}

func (w *processTimeWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		took := time.Since(w.begin).Seconds()
		w.Header().Set("X-Process-Time", strconv.FormatFloat(took, 'f', -1, 64))
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *processTimeWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
