// Package httpapi exposes the detector over HTTP: dataset upload, the
// pattern catalog, detection runs, chart retrieval and a websocket feed
// for the dashboard.
package httpapi

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"example.com/candlestick-detector/internal/corpus"
	"example.com/candlestick-detector/internal/history"
	"example.com/candlestick-detector/internal/metrics"
	"example.com/candlestick-detector/internal/session"
)

//go:embed static/*
var staticFS embed.FS

// Version is stamped at build time via -ldflags.
var Version = "dev"

var startTime = time.Now()

// sessionCookie names the browser cookie that keys per-session state.
const sessionCookie = "detector_session"

// defaultMaxUploadBytes caps CSV uploads when the config does not say.
const defaultMaxUploadBytes = 10 << 20

// Server wires the HTTP surface to the application state.
type Server struct {
	Sessions       *session.Store
	Library        *corpus.Library
	Recorder       history.Recorder
	Metrics        *metrics.Metrics
	Hub            *Hub
	AllowedOrigins []string
	MaxUploadBytes int64
	Logger         zerolog.Logger

	upgrader websocket.Upgrader
}

// New assembles a server around the given state. The websocket hub is
// owned by the server and grows as dashboard clients connect.
func New(sessions *session.Store, library *corpus.Library, recorder history.Recorder, m *metrics.Metrics, logger zerolog.Logger) *Server {
	s := &Server{
		Sessions:       sessions,
		Library:        library,
		Recorder:       recorder,
		Metrics:        m,
		Hub:            NewHub(m, logger),
		AllowedOrigins: ParseAllowedOrigins(""),
		MaxUploadBytes: defaultMaxUploadBytes,
		Logger:         logger.With().Str("component", "httpapi").Logger(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}
	return s
}

// ParseAllowedOrigins splits a comma separated origin list. An empty
// input allows every origin.
func ParseAllowedOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{"*"}
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Handler builds the route table. All routes sit behind the CORS
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/patterns", s.handlePatterns)
	mux.HandleFunc("/api/examples", s.handleExamples)
	mux.HandleFunc("/api/load", s.handleLoad)
	mux.HandleFunc("/api/load/example", s.handleLoadExample)
	mux.HandleFunc("/api/detect", s.handleDetect)
	mux.HandleFunc("/api/chart", s.handleChart)
	mux.HandleFunc("/api/chart/interactive", s.handleChartInteractive)
	mux.HandleFunc("/api/session", s.handleSession)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/runtime", s.handleRuntime)
	mux.HandleFunc("/ws", s.handleWS)

	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics.Handler())
	}

	if staticContent, err := fs.Sub(staticFS, "static"); err == nil {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	}

	return s.cors(mux)
}

// cors echoes allowed origins and short-circuits preflight requests.
// Credentials are allowed because the session rides on a cookie.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// sessionID resolves the caller's session, minting a cookie on first
// contact. Every request that touches session state goes through here
// so the idle sweep sees recent activity.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" && len(c.Value) <= 64 {
		s.Sessions.Touch(c.Value)
		return c.Value
	}

	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.Sessions.Touch(id)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "dashboard assets missing")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"uptime": time.Since(startTime).Round(time.Second).String(),
	})
}

// RuntimeStats reports process health for the dashboard status pane.
type RuntimeStats struct {
	Version      string        `json:"version"`
	Uptime       string        `json:"uptime"`
	Goroutines   int           `json:"goroutines"`
	HeapAllocMB  float64       `json:"heap_alloc_mb"`
	SysMB        float64       `json:"sys_mb"`
	NumGC        uint32        `json:"num_gc"`
	Sessions     session.Stats `json:"sessions"`
	WSClients    int           `json:"ws_clients"`
	HistoryCount int           `json:"history_count"`
	ExampleFiles int           `json:"example_files"`
}

func (s *Server) handleRuntime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		Version:     Version,
		Uptime:      time.Since(startTime).Round(time.Second).String(),
		Goroutines:  runtime.NumGoroutine(),
		HeapAllocMB: float64(mem.HeapAlloc) / (1 << 20),
		SysMB:       float64(mem.Sys) / (1 << 20),
		NumGC:       mem.NumGC,
		Sessions:    s.Sessions.Stats(),
		WSClients:   s.Hub.ClientCount(),
	}
	if s.Recorder != nil {
		if n, err := s.Recorder.Count(); err == nil {
			stats.HistoryCount = n
		}
	}
	if s.Library != nil {
		stats.ExampleFiles = len(s.Library.List())
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.Logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.Hub.register(conn)
}
