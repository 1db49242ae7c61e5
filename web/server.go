package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/NYTimes/gziphandler"

	"github.com/kilianp07/batteryform/core/form"
	"github.com/kilianp07/batteryform/core/logger"
	"github.com/kilianp07/batteryform/core/monitoring"
	"github.com/kilianp07/batteryform/web/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/form.html"))

// maxBodyBytes bounds form posts and API events.
const maxBodyBytes = 64 << 10

// Options configures the HTTP surface.
type Options struct {
	CookieName   string
	SecureCookie bool
	Gzip         bool
	// Metrics is mounted on MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
	Logger      logger.Logger
}

// Server renders the battery form and applies user events to the session
// controllers.
type Server struct {
	store *session.Store
	opts  Options
	log   logger.Logger
}

// NewServer creates a Server backed by store.
func NewServer(store *session.Store, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "form_session"
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Server{store: store, opts: opts, log: log}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /{$}", s.handlePost)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/events", s.handleEvent)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.opts.Metrics != nil {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.Metrics)
	}
	var h http.Handler = mux
	if s.opts.Gzip {
		h = gziphandler.GzipHandler(h)
	}
	return s.recoverer(h)
}

// pageData feeds templates/form.html.
type pageData struct {
	State            form.State
	SolarPanelsError string
	Success          bool
}

func newPageData(snap form.Snapshot) pageData {
	return pageData{
		State:            snap.State,
		SolarPanelsError: snap.Errors[form.FieldSolarPanels],
		Success:          snap.Success(),
	}
}

// snapshotResponse is the JSON form of a snapshot.
type snapshotResponse struct {
	form.Snapshot
	Success bool `json:"success"`
}

func (s *Server) cookieID(r *http.Request) string {
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// current returns the caller's snapshot without creating a session. Callers
// with no live session see the initial form.
func (s *Server) current(r *http.Request) form.Snapshot {
	sess, ok := s.store.Get(s.cookieID(r))
	if !ok {
		return form.Initial()
	}
	return sess.Do(func(c *form.Controller) form.Snapshot { return c.Snapshot() })
}

// session returns the caller's session, creating it on the first mutating
// request.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	sess, created := s.store.GetOrCreate(s.cookieID(r))
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     s.opts.CookieName,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			Secure:   s.opts.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, s.current(r))
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess := s.session(w, r)
	snap := sess.Do(func(c *form.Controller) form.Snapshot {
		var snap form.Snapshot
		for _, ev := range eventsFromPost(c.Snapshot().State, r.PostForm) {
			snap = c.Dispatch(r.Context(), ev)
		}
		return snap
	})
	s.render(w, snap)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.current(r)
	s.writeJSON(w, http.StatusOK, snapshotResponse{Snapshot: snap, Success: snap.Success()})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("decode event: %v", err)})
		return
	}
	ev, err := req.event()
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sess := s.session(w, r)
	snap := sess.Do(func(c *form.Controller) form.Snapshot { return c.Dispatch(r.Context(), ev) })
	s.writeJSON(w, http.StatusOK, snapshotResponse{Snapshot: snap, Success: snap.Success()})
}

func (s *Server) render(w http.ResponseWriter, snap form.Snapshot) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTmpl.Execute(w, newPageData(snap)); err != nil {
		s.log.Errorf("render form: %v", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("encode response: %v", err)
	}
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				monitoring.RecoverValue(v)
				s.log.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, v)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
