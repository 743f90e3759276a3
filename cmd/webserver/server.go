package main

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"quantummeadow"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionName  = "meadow-session"
	sessionIDKey = "id"
)

// HistoryStore lists recorded generations
type HistoryStore interface {
	GetGenerations(ctx context.Context, limit int) ([]quantummeadow.GenerationRecord, error)
	CountOutcomes(ctx context.Context) (map[string]int, error)
}

type Server struct {
	pool      *quantummeadow.SessionPool
	store     sessions.Store
	templates map[string]*template.Template
	history   HistoryStore
	origins   []string

	// loadCtx outlives the request that started a load
	loadCtx context.Context
	loads   sync.WaitGroup
}

// NewServer builds the quiz server. history may be nil.
func NewServer(loadCtx context.Context, pool *quantummeadow.SessionPool, store sessions.Store, history HistoryStore, origins []string) *Server {
	return &Server{
		pool:      pool,
		store:     store,
		templates: loadTemplates(),
		history:   history,
		origins:   origins,
		loadCtx:   loadCtx,
	}
}

// tierGlyphs draws the result tier icons
var tierGlyphs = map[string]string{
	quantummeadow.TierPerfect.Icon:   "\U0001F451",
	quantummeadow.TierExcellent.Icon: "\u2B50",
	quantummeadow.TierGood.Icon:      "\U0001F331",
	quantummeadow.TierStart.Icon:     "\U0001F343",
}

func loadTemplates() map[string]*template.Template {
	funcMap := template.FuncMap{
		"percent": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64) + "%"
		},
		"glyph": func(icon string) string {
			return tierGlyphs[icon]
		},
	}

	templates := make(map[string]*template.Template)
	for _, phase := range []quantummeadow.Phase{
		quantummeadow.PhaseStart,
		quantummeadow.PhaseLoading,
		quantummeadow.PhasePlaying,
		quantummeadow.PhaseFinished,
	} {
		name := string(phase)
		templates[name] = template.Must(template.New(name).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", "templates/"+name+".html"))
	}
	return templates
}

// Routes returns the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	if quantummeadow.Verbose() {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })

	r.Get("/", s.handleHome)
	r.Post("/quiz/begin", s.handleBegin)
	r.Post("/quiz/answer", s.handleAnswer)
	r.Post("/quiz/next", s.handleNext)
	r.Post("/quiz/restart", s.handleRestart)

	r.Route("/api", func(r chi.Router) {
		// Without configured origins the API stays same-origin only.
		if len(s.origins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   s.origins,
				AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders:   []string{"Content-Type"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		r.Get("/quiz", s.handleAPIQuiz)
		r.Post("/quiz/{action}", s.handleAPIAction)
		r.Get("/generations", s.handleGenerations)
	})
	return r
}

// Wait blocks until background loads have finished
func (s *Server) Wait() {
	s.loads.Wait()
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		next.ServeHTTP(w, r)
	})
}

// controller returns the quiz session of the requesting browser, issuing or
// renewing its session cookie.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) (*quantummeadow.Controller, error) {
	// A cookie that no longer decodes (e.g. after a secret change) yields a
	// fresh session along with the error; start over with it.
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		quantummeadow.VerboseLog("Discarding unreadable session cookie: %v", err)
	}

	id, ok := session.Values[sessionIDKey].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		session.Values[sessionIDKey] = id
		quantummeadow.VerboseLog("New session %s", id)
	}
	// Saved on every request so the cookie expires session_idle after the
	// last visit, matching the pool sweep.
	if err := session.Save(r, w); err != nil {
		return nil, err
	}
	return s.pool.Get(id), nil
}

// startLoad runs the fetch for a controller that just entered loading
func (s *Server) startLoad(ctrl *quantummeadow.Controller) {
	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		if err := ctrl.Load(s.loadCtx); err != nil {
			log.Printf("Failed to load quiz: %v", err)
		}
	}()
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(w, r)
	if err != nil {
		log.Printf("Session save error: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	view := newQuizView(ctrl.State())
	var buf bytes.Buffer
	if err := s.templates[string(view.Phase)].ExecuteTemplate(&buf, "base.html", view); err != nil {
		log.Printf("Template error in %s: %v", view.Phase, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	s.handleForm(w, r, func(ctrl *quantummeadow.Controller) {
		if ctrl.Begin() {
			s.startLoad(ctrl)
		}
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.handleForm(w, r, func(ctrl *quantummeadow.Controller) {
		if ctrl.Restart() {
			s.startLoad(ctrl)
		}
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.handleForm(w, r, func(ctrl *quantummeadow.Controller) {
		ctrl.Advance()
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	option, err := strconv.Atoi(r.FormValue("option"))
	if err != nil {
		http.Error(w, "Invalid option", http.StatusBadRequest)
		return
	}
	s.handleForm(w, r, func(ctrl *quantummeadow.Controller) {
		ctrl.Select(option)
	})
}

// handleForm applies a player action and redirects back to the quiz page.
// Actions that do not fit the current state are ignored.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request, action func(*quantummeadow.Controller)) {
	ctrl, err := s.controller(w, r)
	if err != nil {
		log.Printf("Session save error: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	action(ctrl)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type apiActionRequest struct {
	Option *int `json:"option"`
}

type apiActionResponse struct {
	Accepted bool     `json:"accepted"`
	Quiz     quizView `json:"quiz"`
}

func (s *Server) handleAPIQuiz(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.controller(w, r)
	if err != nil {
		log.Printf("Session save error: %v", err)
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, newQuizView(ctrl.State()))
}

func (s *Server) handleAPIAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	var req apiActionRequest
	if action == "answer" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Option == nil {
			http.Error(w, "option required", http.StatusBadRequest)
			return
		}
	}

	ctrl, err := s.controller(w, r)
	if err != nil {
		log.Printf("Session save error: %v", err)
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}

	var accepted bool
	switch action {
	case "begin":
		if accepted = ctrl.Begin(); accepted {
			s.startLoad(ctrl)
		}
	case "restart":
		if accepted = ctrl.Restart(); accepted {
			s.startLoad(ctrl)
		}
	case "answer":
		accepted = ctrl.Select(*req.Option)
	case "next":
		accepted = ctrl.Advance()
	default:
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, apiActionResponse{Accepted: accepted, Quiz: newQuizView(ctrl.State())})
}

type generationsResponse struct {
	Generations []quantummeadow.GenerationRecord `json:"generations"`
	Outcomes    map[string]int                   `json:"outcomes"`
}

func (s *Server) handleGenerations(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "generation history disabled", http.StatusNotFound)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 200)
	}

	records, err := s.history.GetGenerations(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to get generations: %v", err)
		http.Error(w, "failed to get generations", http.StatusInternalServerError)
		return
	}
	outcomes, err := s.history.CountOutcomes(r.Context())
	if err != nil {
		log.Printf("Failed to count outcomes: %v", err)
		http.Error(w, "failed to get generations", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []quantummeadow.GenerationRecord{}
	}
	writeJSON(w, http.StatusOK, generationsResponse{Generations: records, Outcomes: outcomes})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}
