package httputil

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// H2CHandler wraps a handler with h2c support so clients behind a
// TLS-terminating proxy can multiplex requests over unencrypted HTTP/2.
func H2CHandler(handler http.Handler) http.Handler {
	return h2c.NewHandler(handler, &http2.Server{
		MaxConcurrentStreams: 250,
		MaxReadFrameSize:     1 << 20,
		IdleTimeout:          5 * time.Minute,
	})
}
