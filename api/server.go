// Package api provides the HTTP REST API server for dashcore.
//
// It serves statement summaries, table rows and pie wedge geometry computed
// by the aggregation core, and streams live statement snapshots over a
// WebSocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/dashcore/internal/aggregate"
	"github.com/seenimoa/dashcore/internal/config"
	"github.com/seenimoa/dashcore/internal/feed"
	"github.com/seenimoa/dashcore/internal/infra"
	"github.com/seenimoa/dashcore/internal/loader"
	"github.com/seenimoa/dashcore/internal/logging"
	"github.com/seenimoa/dashcore/internal/pie"
	"github.com/seenimoa/dashcore/internal/report"
	"github.com/seenimoa/dashcore/pkg/models"
	"github.com/seenimoa/dashcore/pkg/utils"
	"github.com/seenimoa/dashcore/web"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	dash    *models.Dashboard
	feed    *feed.Producer
	wsHub   *WSHub
	renders *infra.Cache[string]
	logger  *slog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
// A nil logger discards output.
func NewServer(cfg *config.Config, dash *models.Dashboard, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logging.WithComponent(logger, logging.ComponentHTTP)
	srv := &Server{
		cfg:     cfg,
		dash:    dash,
		wsHub:   NewWSHub(logger),
		renders: infra.NewCache[string](cfg.API.CacheTTL()),
		logger:  logger,
	}
	srv.router = srv.buildRouter()
	return srv
}

// SetFeed attaches the snapshot producer whose latest snapshot is served at
// /api/v1/snapshots/latest. Must be called before Serve.
func (s *Server) SetFeed(p *feed.Producer) {
	s.feed = p
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// PublishSnapshot broadcasts a feed snapshot to every WebSocket client.
// It is the feed.Sink used by the serve command.
func (s *Server) PublishSnapshot(snap feed.Snapshot) {
	s.wsHub.Broadcast(WSMessage{Type: MsgSnapshot, Data: newSnapshotView(snap)})
}

// Serve starts the HTTP server and the WebSocket hub and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// WebSocket (long-lived; outside the request timeout)
	r.Get("/ws", s.handleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/health", s.handleHealth)

		// Statements
		r.Get("/statements", s.handleStatements)
		r.Get("/statements/{id}/summary", s.handleSummary)
		r.Get("/statements/{id}/rows", s.handleRows)
		r.Get("/statements/{id}/report", s.handleReport)

		// Pies
		r.Get("/pies", s.handlePies)
		r.Get("/pies/{id}", s.handlePie)
		r.Get("/pies/{id}/svg", s.handlePieSVG)

		// Live feed
		r.Get("/snapshots/latest", s.handleLatestSnapshot)

		// Configuration
		r.Get("/config", s.handleGetConfig)
	})

	// Embedded dashboard page
	if s.cfg.API.ServeUI {
		s.mountUI(r, web.StaticFS())
	}

	return r
}

// mountUI serves the embedded dashboard page. Unknown paths fall back to
// index.html.
func (s *Server) mountUI(r chi.Router, staticFS fs.FS) {
	fileServer := http.FileServerFS(staticFS)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := staticFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, staticFS)
			return
		}
		f.Close()

		if rPath == "index.html" {
			w.Header().Set("Cache-Control", "no-cache")
		}
		fileServer.ServeHTTP(w, r)
	})
}

func serveIndexHTML(w http.ResponseWriter, staticFS fs.FS) {
	data, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		http.Error(w, "dashboard page not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ============================================================
// Response envelope
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"service":    "dashcore",
			"time":       time.Now().UTC().Format(time.RFC3339),
			"statements": len(s.dash.Statements),
			"pies":       len(s.dash.Pies),
			"ws_clients": s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handleStatements(w http.ResponseWriter, r *http.Request) {
	out := make([]StatementInfo, 0, len(s.dash.Statements))
	for _, st := range s.dash.Statements {
		out = append(out, newStatementInfo(st))
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	st, p, ok := s.statementAndPeriod(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    newSummaryView(aggregate.Summarize(st, p)),
	})
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	st, p, ok := s.statementAndPeriod(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: RowsView{
			StatementID: st.ID,
			Period:      st.Periods[p],
			PeriodIndex: p,
			Sections:    newSectionRowsViews(aggregate.Rows(st, p)),
		},
	})
}

// handleReport renders the statement report as HTML (default) or text.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	st, p, ok := s.statementAndPeriod(w, r)
	if !ok {
		return
	}

	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil || format == report.FormatPDF {
		writeError(w, http.StatusBadRequest, "format must be html or text")
		return
	}
	if r.URL.Query().Get("format") == "" {
		format = report.FormatHTML
	}

	cfg := s.reportConfig(p)
	if ds := s.dash.Pie(s.cfg.Dashboard.PieDataset); ds != nil {
		cfg.Pie = ds
	}

	contentType := "text/html; charset=utf-8"
	if format == report.FormatText {
		contentType = "text/plain; charset=utf-8"
	}
	key := fmt.Sprintf("report:%s:%d:%s", st.ID, p, format)
	body, hit, err := s.renders.GetOrCompute(key, func() (string, error) {
		if format == report.FormatText {
			return report.GenerateText(st, cfg)
		}
		return report.GenerateHTML(st, cfg)
	})
	if err != nil {
		s.logger.Error("report generation failed", logging.FieldStatement, st.ID, logging.FieldError, err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	writeRendered(w, contentType, body, hit)
}

func (s *Server) handlePies(w http.ResponseWriter, r *http.Request) {
	out := make([]PieInfo, 0, len(s.dash.Pies))
	for _, ds := range s.dash.Pies {
		out = append(out, PieInfo{
			ID:     ds.ID,
			Title:  ds.Title,
			Slices: len(ds.Slices),
			Total:  pie.Total(ds.Slices),
		})
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

func (s *Server) handlePie(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.pieDataset(w, r)
	if !ok {
		return
	}
	pc := s.cfg.Pie
	wedges := pie.Arcs(ds.Slices, pc.CenterX, pc.CenterY, pc.Radius)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: newPieView(ds, wedges, pc.Palette)})
}

func (s *Server) handlePieSVG(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.pieDataset(w, r)
	if !ok {
		return
	}
	svg, hit, _ := s.renders.GetOrCompute("pie:"+ds.ID, func() (string, error) {
		return report.PieChart(*ds, s.pieOptions()), nil
	})
	writeRendered(w, "image/svg+xml", svg, hit)
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		writeError(w, http.StatusNotFound, "live feed is disabled")
		return
	}
	snap, ok := s.feed.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no snapshot produced yet")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: newSnapshotView(snap)})
}

// ============================================================
// Helpers
// ============================================================

// statementAndPeriod resolves the {id} statement and the ?period query. The
// period defaults to dashboard.period; anything outside the statement's
// periods is rejected with 400.
func (s *Server) statementAndPeriod(w http.ResponseWriter, r *http.Request) (*models.Statement, int, bool) {
	st, err := loader.Statement(s.dash, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, 0, false
	}

	p := s.cfg.Dashboard.Period
	if raw := r.URL.Query().Get("period"); raw != "" {
		p, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "period must be an integer")
			return nil, 0, false
		}
	}
	if !aggregate.ValidPeriod(st, p) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("period %d out of range [0, %d]", p, len(st.Periods)-1))
		return nil, 0, false
	}
	return st, p, true
}

func (s *Server) pieDataset(w http.ResponseWriter, r *http.Request) (*models.PieDataset, bool) {
	ds, err := loader.Pie(s.dash, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return ds, true
}

func (s *Server) pieOptions() report.PieOptions {
	pc := s.cfg.Pie
	return report.PieOptions{
		CenterX: pc.CenterX,
		CenterY: pc.CenterY,
		Radius:  pc.Radius,
		Palette: pc.Palette,
	}
}

func (s *Server) reportConfig(p int) report.ReportConfig {
	cfg := report.DefaultReportConfig()
	cfg.Period = p
	cfg.Currency = s.cfg.Dashboard.Currency
	cfg.NumberStyle = utils.NumberStyle(s.cfg.Dashboard.NumberStyle)
	cfg.PieOpts = s.pieOptions()
	return cfg
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// writeRendered writes a cached or freshly rendered document. X-Cache
// reports which one it was.
func writeRendered(w http.ResponseWriter, contentType, body string, hit bool) {
	w.Header().Set("Content-Type", contentType)
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body)) //nolint:errcheck
}
