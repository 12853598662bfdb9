// Package web serves the local export page and its JSON API.
//
// # Routes
//
//	GET  /            → form with a playlist textarea (one URL or ID per line) and a format select
//	POST /export      → runs the batch and renders one SUCCESS/FAILED line per input
//	POST /api/export  → JSON {"playlists": [...], "format": "csv"} in, export manifest JSON out
//	GET  /healthz     → {"status": "ok"}
//
// # Concurrency
//
// Exports are serialized with a mutex. A request that arrives while another export is running is
// answered with 409 Conflict instead of queueing.
//
// # Sessions
//
// The remote session is opened on the first export through the configured [Connector] and reused afterwards.
// An unsupported format is rejected with 400 before any remote call.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/exportify/internal/formatter"
	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/server"
	"github.com/desertthunder/exportify/internal/services"
	"github.com/desertthunder/exportify/internal/shared"
	"github.com/desertthunder/exportify/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxBodyBytes = 1 << 20

// Connector opens an authenticated remote session.
type Connector func(ctx context.Context) (services.Session, error)

// Options configures exports started from the web page.
type Options struct {
	OutputDir     string
	DefaultFormat models.ExportFormat
	Fetch         tasks.FetchOpts
	Manifest      bool
}

// Handler serves the export page. It implements [server.Handler].
type Handler struct {
	engine  tasks.ExportEngine
	connect Connector
	opts    Options
	logger  *log.Logger
	tmpl    *template.Template

	mu      sync.Mutex
	session services.Session
}

var _ server.Handler = (*Handler)(nil)

// NewHandler parses the embedded templates and returns a ready [Handler].
func NewHandler(engine tasks.ExportEngine, connect Connector, opts Options, logger *log.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if !opts.DefaultFormat.Valid() {
		opts.DefaultFormat = models.FormatMarkdown
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Handler{
		engine:  engine,
		connect: connect,
		opts:    opts,
		logger:  logger,
		tmpl:    tmpl,
	}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *Handler) Routes() []server.Route {
	return []server.Route{
		{Method: http.MethodGet, Path: "/", Handler: http.HandlerFunc(h.index)},
		{Method: http.MethodPost, Path: "/export", Handler: http.HandlerFunc(h.exportForm)},
		{Method: http.MethodPost, Path: "/api/export", Handler: http.HandlerFunc(h.exportAPI)},
		{Method: http.MethodGet, Path: "/healthz", Handler: http.HandlerFunc(h.health)},
	}
}

type indexView struct {
	Formats   []models.ExportFormat
	Format    models.ExportFormat
	OutputDir string
	Input     string
	Error     string
}

type resultView struct {
	formatter.Manifest
	ManifestPath string
}

// exportRequest is the body of POST /api/export.
type exportRequest struct {
	Playlists []string `json:"playlists"`
	Format    string   `json:"format"`
}

type exportResponse struct {
	formatter.Manifest
	ManifestPath string `json:"manifest_path,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, http.StatusOK, "index", h.newIndexView("", h.opts.DefaultFormat, ""))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) exportForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "index", h.newIndexView("", h.opts.DefaultFormat, "Invalid form submission"))
		return
	}

	raw := r.FormValue("playlist_url")
	formatName := r.FormValue("format")

	report, err := h.run(r.Context(), services.SplitIdentifiers(raw), formatName)
	if err != nil {
		format, _ := models.ParseFormat(formatName)
		h.render(w, statusFor(err), "index", h.newIndexView(raw, format, err.Error()))
		return
	}

	view := resultView{Manifest: formatter.NewManifest(report, time.Now()), ManifestPath: report.ManifestPath}
	h.render(w, http.StatusOK, "result", view)
}

func (h *Handler) exportAPI(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	inputs := make([]string, 0, len(req.Playlists))
	for _, p := range req.Playlists {
		if p = strings.TrimSpace(p); p != "" {
			inputs = append(inputs, p)
		}
	}

	report, err := h.run(r.Context(), inputs, req.Format)
	if err != nil {
		h.writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, exportResponse{
		Manifest:     formatter.NewManifest(report, time.Now()),
		ManifestPath: report.ManifestPath,
	})
}

// run validates the request, then exports while holding the export lock.
func (h *Handler) run(ctx context.Context, inputs []string, formatName string) (*models.BatchReport, error) {
	if strings.TrimSpace(formatName) == "" {
		formatName = h.opts.DefaultFormat.String()
	}
	format, err := models.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one playlist URL or ID", shared.ErrMissingArgument)
	}

	if !h.mu.TryLock() {
		return nil, shared.ErrBusy
	}
	defer h.mu.Unlock()

	sess, err := h.sessionLocked(ctx)
	if err != nil {
		return nil, err
	}

	h.logger.Info("export requested", "inputs", len(inputs), "format", format)
	return h.engine.ExportMany(ctx, nil, sess, inputs, tasks.ExportOpts{
		OutputDir: h.opts.OutputDir,
		Format:    format,
		Fetch:     h.opts.Fetch,
		Manifest:  h.opts.Manifest,
	})
}

func (h *Handler) sessionLocked(ctx context.Context) (services.Session, error) {
	if h.session != nil {
		return h.session, nil
	}
	if h.connect == nil {
		return nil, fmt.Errorf("%w: no connector configured", shared.ErrNotAuthenticated)
	}

	sess, err := h.connect(ctx)
	if err != nil {
		h.logger.Error("failed to open session", "error", err)
		return nil, err
	}
	h.session = sess
	return sess, nil
}

func (h *Handler) newIndexView(input string, format models.ExportFormat, errMsg string) indexView {
	if !format.Valid() {
		format = h.opts.DefaultFormat
	}
	return indexView{
		Formats:   models.Formats(),
		Format:    format,
		OutputDir: h.opts.OutputDir,
		Input:     input,
		Error:     errMsg,
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("failed to render template", "template", name, "error", err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		h.logger.Error("failed to encode response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrUnsupportedFormat),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, shared.ErrAuthFailed), errors.Is(err, shared.ErrTransient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
