package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"datepicker/internal/events"
	appLog "datepicker/internal/log"
	"datepicker/internal/picker"
	"datepicker/internal/script"
	"datepicker/internal/view"
)

// maxScript limits the body of a script request.
const maxScript = 64 << 10

// BasicAuth protects every endpoint except /health when both fields are set.
type BasicAuth struct {
	Username string
	Password string
}

// Server exposes one picker over HTTP: its state, its calendar pages, a
// script endpoint that drives it and its metrics.
//
// A picker is single-threaded; the server serializes every request that
// touches it.
type Server struct {
	mu  sync.Mutex
	p   *picker.Picker
	rec *events.Recorder

	auth     *BasicAuth
	gatherer prometheus.Gatherer
	mux      *http.ServeMux
}

// NewServer constructs a server for p. rec must be one of p's notifiers; it
// collects the events a script request produces. gatherer may be nil, in
// which case /metrics is not served.
func NewServer(p *picker.Picker, rec *events.Recorder, gatherer prometheus.Gatherer, auth *BasicAuth) *Server {
	s := &Server{
		p:        p,
		rec:      rec,
		auth:     auth,
		gatherer: gatherer,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled")
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	return s.auth != nil && s.auth.Username != "" && s.auth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.auth.Username
	password := s.auth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="datepicker", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/api/page", s.handlePage)
	s.mux.HandleFunc("/api/script", s.handleScript)
	if s.gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type stateResponse struct {
	ID          string   `json:"id"`
	Dates       []string `json:"dates"`
	Text        string   `json:"text"`
	ViewDate    string   `json:"view_date"`
	ViewMode    string   `json:"view_mode"`
	ShowingTime bool     `json:"showing_time"`
	Visible     bool     `json:"visible"`
	Format      string   `json:"format"`
}

// state must be called with s.mu held.
func (s *Server) state() stateResponse {
	st := stateResponse{
		ID:          s.p.ID(),
		Dates:       []string{},
		Text:        s.p.DateString(),
		ViewDate:    s.p.ViewDate().Time().Format(time.RFC3339),
		ViewMode:    s.p.ViewMode().String(),
		ShowingTime: s.p.ShowingTime(),
		Visible:     s.p.Visible(),
		Format:      s.p.ActualFormat(),
	}
	for _, d := range s.p.Dates() {
		st.Dates = append(st.Dates, d.Time().Format(time.RFC3339))
	}
	return st
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.mu.Lock()
	st := s.state()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

type cellResponse struct {
	Date     string `json:"date,omitempty"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
	Active   bool   `json:"active,omitempty"`
	Old      bool   `json:"old,omitempty"`
	New      bool   `json:"new,omitempty"`
	Today    bool   `json:"today,omitempty"`
	Weekend  bool   `json:"weekend,omitempty"`
	Blank    bool   `json:"blank,omitempty"`
}

type pageResponse struct {
	Mode         string         `json:"mode"`
	Title        string         `json:"title"`
	PrevDisabled bool           `json:"prev_disabled"`
	NextDisabled bool           `json:"next_disabled"`
	Weekdays     []string       `json:"weekdays,omitempty"`
	Weeks        []int          `json:"weeks,omitempty"`
	Cells        []cellResponse `json:"cells"`
}

func cells(in []view.Cell) []cellResponse {
	out := make([]cellResponse, 0, len(in))
	for _, c := range in {
		cr := cellResponse{
			Label:    c.Label,
			Disabled: c.Disabled,
			Active:   c.Active,
			Old:      c.Old,
			New:      c.New,
			Today:    c.Today,
			Weekend:  c.Weekend,
			Blank:    c.Blank,
		}
		if c.Value.Valid() {
			cr.Date = c.Value.Time().Format(time.RFC3339)
		}
		out = append(out, cr)
	}
	return out
}

// handlePage renders a calendar grid. ?mode= selects days, months, years,
// decades or hours, minutes, seconds; the default is the current grid.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = s.p.ViewMode().String()
	}
	resp := pageResponse{Mode: mode}
	var page view.Page
	switch mode {
	case "hours":
		resp.Cells = cells(s.p.HourCells())
	case "minutes":
		resp.Cells = cells(s.p.MinuteCells())
	case "seconds":
		resp.Cells = cells(s.p.SecondCells())
	default:
		m, err := view.ParseMode(mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		switch m {
		case view.Days:
			dp := s.p.DaysPage()
			page = dp.Page
			resp.Weekdays, resp.Weeks = dp.Weekdays, dp.Weeks
		case view.Months:
			page = s.p.MonthsPage()
		case view.Years:
			page = s.p.YearsPage()
		case view.Decades:
			page = s.p.DecadesPage()
		}
		resp.Title = page.Header.Title
		resp.PrevDisabled = page.Header.PrevDisabled
		resp.NextDisabled = page.Header.NextDisabled
		resp.Cells = cells(page.Cells)
	}
	writeJSON(w, http.StatusOK, resp)
}

type scriptResponse struct {
	Events []events.Line `json:"events"`
	Output string        `json:"output,omitempty"`
	State  stateResponse `json:"state"`
	Error  string        `json:"error,omitempty"`
}

// handleScript runs the request body as a script and returns the events it
// produced and the resulting state. A failing line stops the script with
// status 422; lines before it stay applied.
func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxScript))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec.Reset()
	var out bytes.Buffer
	runErr := script.Run(r.Context(), s.p, bytes.NewReader(body), &out)

	resp := scriptResponse{Events: []events.Line{}, Output: out.String(), State: s.state()}
	for _, e := range s.rec.Events() {
		resp.Events = append(resp.Events, events.NewLine(e))
	}
	status := http.StatusOK
	if runErr != nil {
		appLog.Error("script request failed", runErr, "picker_id", s.p.ID())
		resp.Error = runErr.Error()
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
