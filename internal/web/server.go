// Package web serves the report viewer over HTTP. The browser keeps the
// current report in its location hash; the page asks the server to render
// each hash it lands on.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/deltalens/internal/analyze"
	"github.com/blackwell-systems/deltalens/internal/report"
	"github.com/blackwell-systems/deltalens/internal/sheet"
	"github.com/blackwell-systems/deltalens/internal/view"
)

const (
	routeShell  = "/"
	routeView   = "/api/view"
	routeFilter = "/api/filter"
	routeCSV    = "/api/csv"
	routeModes  = "/api/modes"
	routeHealth = "/healthz"

	contentTypeHeader = "Content-Type"
	contentTypeHTML   = "text/html; charset=utf-8"
	contentTypeJSON   = "application/json; charset=utf-8"
	contentTypeCSV    = "text/csv; charset=utf-8"

	shutdownTimeout = 5 * time.Second
)

// Options describes the loaded sheet for the page header.
type Options struct {
	Info     sheet.Info
	LoadedAt time.Time
}

// Server renders reports for one resident data set.
type Server struct {
	data   *report.Data
	opts   Options
	log    zerolog.Logger
	shell  *template.Template
	report *template.Template
}

// reportView is the data the "report" template renders.
type reportView struct {
	Hash   string
	Blocks []blockView
	Map    *mapView
}

var funcMap = template.FuncMap{
	"sub": func(r reportView, body []blockView) reportView {
		return reportView{Hash: r.Hash, Blocks: body}
	},
}

// NewServer parses the page templates.
func NewServer(data *report.Data, opts Options, log zerolog.Logger) (*Server, error) {
	shell, err := template.New("shell").Parse(tmplShell)
	if err != nil {
		return nil, fmt.Errorf("parsing shell template: %w", err)
	}
	rep, err := template.New("report").Funcs(funcMap).Parse(tmplReport)
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	if opts.LoadedAt.IsZero() {
		opts.LoadedAt = time.Now()
	}
	return &Server{data: data, opts: opts, log: log, shell: shell, report: rep}, nil
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+routeShell+"{$}", s.handleShell)
	mux.HandleFunc("GET "+routeView, s.handleView)
	mux.HandleFunc("GET "+routeFilter, s.handleFilter)
	mux.HandleFunc("GET "+routeCSV, s.handleCSV)
	mux.HandleFunc("GET "+routeModes, s.handleModes)
	mux.HandleFunc("GET "+routeHealth, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return withRequestLog(s.log, mux)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("serving report viewer")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type shellData struct {
	Info     sheet.Info
	Changes  int
	LoadedAt string
	Zone     string
	Modes    []report.Descriptor
}

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	data := shellData{
		Info:     s.opts.Info,
		Changes:  s.data.Changelist.Len(),
		LoadedAt: s.opts.LoadedAt.In(s.data.Location).Format("Jan 2 15:04"),
		Zone:     s.data.Location.String(),
		Modes:    report.Descriptors(),
	}
	var buf bytes.Buffer
	if err := s.shell.Execute(&buf, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render shell failed")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set(contentTypeHeader, contentTypeHTML)
	_, _ = buf.WriteTo(w)
}

// viewResponse is one rendered report. A non-empty Error means the page
// must keep showing its previous report.
type viewResponse struct {
	Hash        string        `json:"hash,omitempty"`
	Kind        report.Kind   `json:"kind,omitempty"`
	Description string        `json:"description,omitempty"`
	Controls    view.Controls `json:"controls"`
	HTML        string        `json:"html,omitempty"`
	Downloads   []string      `json:"downloads,omitempty"`
	Error       string        `json:"error,omitempty"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	snap, err := view.Build(s.data, hash)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("hash", hash).Msg("render failed")
		writeJSON(r.Context(), w, statusFor(err), viewResponse{Error: err.Error()})
		return
	}

	html, err := s.renderReport(snap)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render report template failed")
		writeJSON(r.Context(), w, http.StatusInternalServerError, viewResponse{Error: "failed to render report"})
		return
	}

	resp := viewResponse{
		Hash:        snap.Hash,
		Kind:        snap.Mode.Kind(),
		Description: snap.Description,
		Controls:    snap.Controls,
		HTML:        html,
	}
	for _, t := range snap.Root.Tables() {
		if t.Download != "" {
			resp.Downloads = append(resp.Downloads, t.Download)
		}
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) renderReport(snap *view.Snapshot) (string, error) {
	var buf bytes.Buffer
	err := s.report.ExecuteTemplate(&buf, "report", reportView{
		Hash:   snap.Hash,
		Blocks: pageView(snap.Root),
		Map:    projectMap(snap.Map, snap.Hash),
	})
	return buf.String(), err
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	form := view.FilterForm{
		Mode:     q.Get("mode"),
		Ver:      q.Get("ver"),
		User:     q.Get("user"),
		UTCStart: q.Get("utcstart"),
		UTCEnd:   q.Get("utcend"),
	}
	hash, err := form.Hash(s.data.Location)
	if err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if _, err := report.Parse(hash); err != nil {
		writeJSON(r.Context(), w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"hash": hash})
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap, err := view.Build(s.data, q.Get("hash"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	idx, err := strconv.Atoi(q.Get("table"))
	if err != nil {
		idx = 0
	}
	tables := snap.Root.Tables()
	if idx < 0 || idx >= len(tables) {
		http.Error(w, "no such table", http.StatusNotFound)
		return
	}
	t := tables[idx]
	name := t.Download
	if name == "" {
		name = fmt.Sprintf("%s-%d.csv", snap.Mode.Kind(), idx)
	}
	w.Header().Set(contentTypeHeader, contentTypeCSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write([]byte(t.CSV()))
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, report.Descriptors())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, report.ErrUnknownMode),
		errors.Is(err, report.ErrMalformedHash),
		errors.Is(err, analyze.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, analyze.ErrVersionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("write json failed")
	}
}
