package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"example.com/candlestick-detector/internal/corpus"
	"example.com/candlestick-detector/internal/history"
	"example.com/candlestick-detector/internal/ohlcv"
	"example.com/candlestick-detector/internal/pattern"
	"example.com/candlestick-detector/internal/render"
	"example.com/candlestick-detector/internal/session"
)

// PatternInfo is one catalog entry as presented to the dashboard.
type PatternInfo struct {
	Name        string `json:"name"`
	Direction   string `json:"direction"`
	Bars        int    `json:"bars"`
	Engine      string `json:"engine"`
	Description string `json:"description"`
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	names := pattern.Names()
	out := make([]PatternInfo, 0, len(names))
	for _, name := range names {
		info, ok := pattern.GetInfo(name)
		if !ok {
			continue
		}
		out = append(out, PatternInfo{
			Name:        string(name),
			Direction:   string(info.Direction),
			Bars:        info.Bars,
			Engine:      info.Source,
			Description: info.Description,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	files := []corpus.FileInfo{}
	if s.Library != nil {
		files = append(files, s.Library.List()...)
	}
	writeJSON(w, http.StatusOK, files)
}

// LoadResponse acknowledges a dataset becoming the session's working set.
type LoadResponse struct {
	Source string     `json:"source"`
	Rows   int        `json:"rows"`
	First  *time.Time `json:"first,omitempty"`
	Last   *time.Time `json:"last,omitempty"`
}

// adoptDataset installs the series as the session's working set and
// notifies listeners. Shared by the upload and example-load paths.
func (s *Server) adoptDataset(w http.ResponseWriter, id string, series *ohlcv.Series) {
	s.Sessions.SetSeries(id, series)
	if s.Metrics != nil {
		s.Metrics.UploadsTotal.Inc()
	}

	resp := LoadResponse{Source: series.Source, Rows: series.Len()}
	if series.Len() > 0 {
		first := series.Bars[0].Timestamp
		last := series.Bars[series.Len()-1].Timestamp
		resp.First, resp.Last = &first, &last
	}

	s.Hub.Broadcast("dataset", resp)
	s.Logger.Info().Str("source", series.Source).Int("rows", series.Len()).Msg("dataset loaded")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) loadFailed(w http.ResponseWriter, err error) {
	if s.Metrics != nil {
		s.Metrics.LoadErrorsTotal.Inc()
	}
	s.Logger.Warn().Err(err).Msg("dataset rejected")
	writeError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := s.sessionID(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.MaxUploadBytes); err != nil {
		s.loadFailed(w, fmt.Errorf("read upload: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.loadFailed(w, errors.New(`multipart field "file" is required`))
		return
	}
	defer file.Close()

	series, err := ohlcv.Load(file)
	if err != nil {
		s.loadFailed(w, err)
		return
	}

	series.Source = filepath.Base(header.Filename)
	if series.Source == "." || series.Source == "/" || series.Source == "" {
		series.Source = "upload.csv"
	}
	s.adoptDataset(w, id, series)
}

func (s *Server) handleLoadExample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := s.sessionID(w, r)

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if s.Library == nil {
		writeError(w, http.StatusServiceUnavailable, "example corpus not configured")
		return
	}

	series, err := s.Library.Load(req.Name)
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	s.adoptDataset(w, id, series)
}

// DetectRequest asks for one pattern over the loaded dataset, optionally
// narrowed to an inclusive row range.
type DetectRequest struct {
	Pattern string `json:"pattern"`
	Start   *int   `json:"start,omitempty"`
	End     *int   `json:"end,omitempty"`
}

// DetectResponse reports one detection cycle. Caption and Filename are
// only set when the pattern fired and a chart was rendered.
type DetectResponse struct {
	Pattern  string `json:"pattern"`
	Source   string `json:"source"`
	Found    bool   `json:"found"`
	Matches  []int  `json:"matches,omitempty"`
	Message  string `json:"message,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	Rows     int    `json:"rows"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := s.sessionID(w, r)

	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	name, ok := pattern.Lookup(req.Pattern)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown pattern %q", req.Pattern))
		return
	}

	series, ok := s.Sessions.Series(id)
	if !ok {
		writeError(w, http.StatusBadRequest, "no dataset loaded")
		return
	}

	start, end := 0, series.Len()-1
	if req.Start != nil {
		start = *req.Start
	}
	if req.End != nil {
		end = *req.End
	}
	if start < 0 {
		start = 0
	}
	if end > series.Len()-1 {
		end = series.Len() - 1
	}
	if series.Len() > 0 && start > end {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("start %d is past end %d", start, end))
		return
	}

	working := series
	if series.Len() > 0 && (start > 0 || end < series.Len()-1) {
		var err error
		working, err = series.Slice(start, end)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	detectStart := time.Now()
	result, err := pattern.Evaluate(working, name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.Metrics != nil {
		s.Metrics.ObserveDetection(string(name), result.Found, time.Since(detectStart).Seconds())
	}

	resp := DetectResponse{
		Pattern: string(name),
		Source:  series.Source,
		Found:   result.Found,
		Matches: result.Matches,
		Message: result.Message,
		Rows:    working.Len(),
		Start:   start,
		End:     end,
	}

	if result.Found {
		renderStart := time.Now()
		png, err := render.PNG(working, result.Marker, string(name))
		if err != nil {
			s.Logger.Error().Err(err).Str("pattern", string(name)).Msg("chart render failed")
			writeError(w, http.StatusInternalServerError, "render chart: "+err.Error())
			return
		}
		if s.Metrics != nil {
			s.Metrics.RenderDur.Observe(time.Since(renderStart).Seconds())
		}

		resp.Caption = fmt.Sprintf("%s Pattern Detected in: %s", name, series.Source)
		resp.Filename = fmt.Sprintf("%s_detected.png", name)
		s.Sessions.Remember(id, session.ChartState{
			PNG:        png,
			Caption:    resp.Caption,
			Filename:   resp.Filename,
			Pattern:    name,
			Bars:       working.Bars,
			Marker:     result.Marker,
			Matches:    len(result.Matches),
			RenderedAt: time.Now(),
		})
	}

	evt := history.NewEvent(series.Source, working.Len(), time.Since(detectStart), result)
	if s.Recorder != nil {
		if err := s.Recorder.Record(evt); err != nil {
			s.Logger.Warn().Err(err).Msg("record detection event")
		}
	}
	s.Hub.Broadcast("detection", evt)

	s.Logger.Info().
		Str("pattern", string(name)).
		Str("source", series.Source).
		Bool("found", result.Found).
		Int("matches", len(result.Matches)).
		Int("rows", working.Len()).
		Msg("detection completed")

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := s.sessionID(w, r)

	chart, ok := s.Sessions.Current(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no chart rendered yet")
		return
	}

	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", chart.Filename))
		if s.Metrics != nil {
			s.Metrics.DownloadsTotal.Inc()
		}
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(chart.PNG)))
	_, _ = w.Write(chart.PNG)
}

func (s *Server) handleChartInteractive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := s.sessionID(w, r)

	chart, ok := s.Sessions.Current(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no chart rendered yet")
		return
	}

	series := &ohlcv.Series{Bars: chart.Bars, Source: chart.Caption}
	html, err := render.InteractiveHTML(series, chart.Marker, string(chart.Pattern))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render interactive chart: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := s.sessionID(w, r)
	writeJSON(w, http.StatusOK, s.Sessions.Info(id))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, 500)
	}

	filter := ""
	if raw := r.URL.Query().Get("pattern"); raw != "" {
		name, ok := pattern.Lookup(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown pattern %q", raw))
			return
		}
		filter = string(name)
	}

	events := []history.Event{}
	if s.Recorder != nil {
		recent, err := s.Recorder.Recent(limit, filter)
		if err != nil {
			s.Logger.Error().Err(err).Msg("read detection history")
			writeError(w, http.StatusInternalServerError, "read history: "+err.Error())
			return
		}
		events = append(events, recent...)
	}
	writeJSON(w, http.StatusOK, events)
}
