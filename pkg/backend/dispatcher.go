// Package backend forwards admitted, gated requests to the concrete
// inference backend process already running for a loaded model. It does
// not start, stop, or own that process — an external Docker lifecycle
// manager does that — it only speaks HTTP to the port recorded for the
// model.
package backend

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/fairgate/scheduler/pkg/logging"
)

const (
	// readinessRetryInterval is the spacing between readiness polls.
	readinessRetryInterval = 500 * time.Millisecond
	// maximumReadinessPings bounds how long Dispatcher.Ready waits for a
	// freshly loaded backend before giving up, a single bounded budget
	// rather than the teacher's indefinite process-startup wait (there is
	// no process to wait on here, only a port that should already be
	// serving).
	maximumReadinessPings = 10
)

// Dispatcher is a bounded reverse proxy to a single backend port.
type Dispatcher struct {
	log   logging.Logger
	port  int32
	proxy *httputil.ReverseProxy
}

// New constructs a Dispatcher targeting 127.0.0.1:port.
func New(log logging.Logger, port int32) *Dispatcher {
	target := fmt.Sprintf("127.0.0.1:%d", port)

	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = "http"
			req.URL.Host = target
			req.Host = "localhost"
			req.URL.Path = trimToOpenAIRoot(req.URL.Path)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.WithError(err).WithField("backend_port", port).Warn("backend dispatch failed")
			http.Error(w, "backend unavailable", http.StatusBadGateway)
		},
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: dialTimeout}).DialContext,
		},
	}

	return &Dispatcher{log: log, port: port, proxy: proxy}
}

// trimToOpenAIRoot rewrites an inbound path like /v1/chat/completions to
// the backend's own /v1/... root, stripping any scheduler-specific prefix
// the HTTP layer may have added.
func trimToOpenAIRoot(path string) string {
	if idx := strings.Index(path, "/v1/"); idx >= 0 {
		return path[idx:]
	}
	return path
}

// ServeHTTP forwards the request to the backend.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.proxy.ServeHTTP(w, r)
}

// Ready polls the backend's /v1/models endpoint until it responds
// successfully or the readiness budget is exhausted, returning an error in
// the latter case. Call this once before the first dispatch to a model
// that just transitioned to loaded, to avoid handing a request to a
// backend that published its port slightly before it started accepting
// connections.
func (d *Dispatcher) Ready(ctx context.Context) error {
	client := &http.Client{Timeout: readinessRetryInterval}
	url := fmt.Sprintf("http://127.0.0.1:%d/v1/models", d.port)

	for attempt := 0; attempt < maximumReadinessPings; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err == nil {
			if resp, err := client.Do(req); err == nil {
				resp.Body.Close()
				if resp.StatusCode < 500 {
					return nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readinessRetryInterval):
		}
	}
	return fmt.Errorf("backend on port %d not ready after %d attempts", d.port, maximumReadinessPings)
}

// dialTimeout bounds the initial TCP handshake so a dead backend fails
// fast rather than hanging the caller for the default OS timeout.
const dialTimeout = 2 * time.Second
