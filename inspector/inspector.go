// Package inspector publishes snapshots of a running state machine to
// tooling over HTTP. The machine's goroutine captures and publishes; HTTP
// handlers only ever read the latest published snapshot, so the machine
// itself is never touched concurrently.
package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"facette.io/natsort"
	"github.com/amp-labs/tickfsm/logger"
	"github.com/amp-labs/tickfsm/statemachine"
	"github.com/amp-labs/tickfsm/statemachine/validator"
	"github.com/amp-labs/tickfsm/statemachine/visualizer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/atomic"
)

const (
	minGzipSize     = 512
	shutdownTimeout = 5 * time.Second
)

var (
	// ErrNoSnapshot is reported while nothing has been published yet.
	ErrNoSnapshot = errors.New("no snapshot published")
	// ErrServe is returned when the HTTP server fails.
	ErrServe = errors.New("inspector server failed")
)

// Inspector holds the latest published snapshot.
type Inspector struct {
	latest    atomic.Pointer[Snapshot]
	published *atomic.Uint64
}

// New creates an inspector with nothing published.
func New() *Inspector {
	return &Inspector{published: atomic.NewUint64(0)}
}

// Publish makes snap the latest snapshot. A nil snapshot is ignored.
func (i *Inspector) Publish(snap *Snapshot) {
	if snap == nil {
		return
	}

	i.latest.Store(snap)
	i.published.Inc()
}

// CaptureAndPublish captures m and publishes the result. Like Capture, it
// must run on the goroutine that ticks m.
func (i *Inspector) CaptureAndPublish(m *statemachine.Machine) *Snapshot {
	snap := Capture(m)
	i.Publish(snap)

	return snap
}

// Latest returns the latest snapshot, or nil.
func (i *Inspector) Latest() *Snapshot {
	return i.latest.Load()
}

// Published returns how many snapshots were published.
func (i *Inspector) Published() uint64 {
	return i.published.Load()
}

// Handler serves the latest snapshot:
//
//	GET /machine         the snapshot as JSON
//	GET /states          index and description of every state, natural order
//	GET /states/{index}  the GraphInfo of one state
//	GET /diagram         mermaid diagram; ?format=dot for Graphviz
//	GET /validate        lint findings
//	GET /metrics         Prometheus metrics
//	GET /healthz         liveness
func (i *Inspector) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})
	r.Get("/machine", i.withSnapshot(i.serveMachine))
	r.Get("/states", i.withSnapshot(i.serveStates))
	r.Get("/states/{index}", i.withSnapshot(i.serveState))
	r.Get("/diagram", i.withSnapshot(i.serveDiagram))
	r.Get("/validate", i.withSnapshot(i.serveValidation))
	r.Handle("/metrics", promhttp.Handler())

	gzip, err := gzhttp.NewWrapper(gzhttp.MinSize(minGzipSize))
	if err != nil {
		// Only reachable with invalid static options.
		panic(err)
	}

	return gzip(r)
}

type snapshotHandler func(w http.ResponseWriter, r *http.Request, snap *Snapshot)

func (i *Inspector) withSnapshot(next snapshotHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := i.Latest()
		if snap == nil {
			writeError(w, http.StatusServiceUnavailable, ErrNoSnapshot)

			return
		}

		next(w, r, snap)
	}
}

func (i *Inspector) serveMachine(w http.ResponseWriter, _ *http.Request, snap *Snapshot) {
	writeJSON(w, http.StatusOK, snap)
}

func (i *Inspector) serveStates(w http.ResponseWriter, _ *http.Request, snap *Snapshot) {
	states := make([]statemachine.StateInfo, 0, len(snap.States))
	for _, info := range snap.States {
		states = append(states, info.Selected)
	}

	sort.SliceStable(states, func(a, b int) bool {
		return natsort.Compare(states[a].Description, states[b].Description)
	})

	writeJSON(w, http.StatusOK, states)
}

func (i *Inspector) serveState(w http.ResponseWriter, r *http.Request, snap *Snapshot) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid state index: %w", err))

		return
	}

	info, err := snap.Inspect(index)
	if err != nil {
		writeError(w, http.StatusNotFound, err)

		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (i *Inspector) serveDiagram(w http.ResponseWriter, r *http.Request, snap *Snapshot) {
	opts := visualizer.DefaultOptions().WithFenced(false)

	var (
		diagram string
		err     error
	)

	switch r.URL.Query().Get("format") {
	case "", "mermaid":
		diagram, err = visualizer.GenerateMermaidWithOptions(snap, opts)
	case "dot":
		diagram, err = visualizer.GenerateDOT(snap, opts)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown diagram format %q", r.URL.Query().Get("format")))

		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(diagram))
}

func (i *Inspector) serveValidation(w http.ResponseWriter, _ *http.Request, snap *Snapshot) {
	result, err := validator.Validate(snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		slog.Warn("Failed to encode inspector response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// logRequests logs each request once it is served, at debug level for
// successes and warn for client or server errors.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if ww.Status() >= http.StatusBadRequest {
			level = slog.LevelWarn
		}

		logger.Get(r.Context()).Log(r.Context(), level, "Inspector request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// Serve runs an HTTP server for handler on addr until ctx is done, then
// shuts it down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: shutdownTimeout,
	}

	errCh := make(chan error, 1)

	go func() { errCh <- srv.ListenAndServe() }()

	slog.Info("Inspector listening", "addr", addr)

	var runErr error

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		runErr = errors.Join(srv.Shutdown(shutdownCtx), <-errCh)
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrServe, runErr)
	}

	return nil
}
