// Package web is the presentation shell around the session manager: the job
// listings front page and the two request handlers that make up the redirect
// login flow. It holds no auth logic of its own; every decision is read from
// the session state and every transition goes through the flow controller.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jobport/jobport/pkg/authflow"
	"github.com/jobport/jobport/pkg/jobs"
	"github.com/jobport/jobport/pkg/logger"
	"github.com/jobport/jobport/pkg/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Handler serves the web shell.
type Handler struct {
	flow     *authflow.Controller
	sessions *session.State
	catalog  *jobs.Catalog
	log      *slog.Logger
	tmpl     *template.Template
}

// Option configures a Handler during construction.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// New creates the web handler.
func New(flow *authflow.Controller, sessions *session.State, catalog *jobs.Catalog, opts ...Option) *Handler {
	h := &Handler{
		flow:     flow,
		sessions: sessions,
		catalog:  catalog,
		log:      logger.Noop(),
		tmpl:     template.Must(template.ParseFS(templateFS, "templates/*.tmpl")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the application routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", h.home)
	r.Get("/login", h.login)
	r.Get("/auth/callback", h.callback)
	r.Post("/logout", h.logout)
	r.Get("/health", h.health)

	// Unknown paths go back to the front page, like the SPA catch-all route.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	return r
}

type homeData struct {
	Authenticated bool
	Approved      bool
	User          session.User
	Role          session.Role
	Status        session.Status
	Error         string
	Pages         [][]jobs.Job
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	data := homeData{
		Authenticated: h.sessions.IsAuthenticated(),
		Approved:      h.sessions.IsApproved(),
		Role:          h.sessions.UserRole(),
		Status:        h.sessions.UserStatus(),
		Error:         h.sessions.Err(),
	}
	if user, ok := h.sessions.CurrentUser(); ok {
		data.User = user
	}
	for n := 0; n < h.catalog.Pages(); n++ {
		data.Pages = append(data.Pages, h.catalog.Page(n))
	}

	h.render(w, "home.tmpl", data)
}

// login is the first leg of the redirect flow. On success the navigator has
// already sent the browser to the provider; on failure the error lives on the
// session state and the front page shows it.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	role := session.Role(r.URL.Query().Get("role"))

	nav := &redirectNavigator{w: w, r: r}
	if err := h.flow.InitiateLogin(r.Context(), nav, role); err != nil {
		h.log.Warn("login initiation failed",
			logger.Component("web"),
			logger.Role(role),
			logger.Error(err),
		)
		if !nav.navigated {
			http.Redirect(w, r, "/", http.StatusFound)
		}
		return
	}
}

// callback is the second leg, reached when the identity provider redirects
// back. It extracts the code, hands it to the flow controller, and on failure
// replaces the would-be spinner with the recorded error. No further branching.
func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	nav := &redirectNavigator{w: w, r: r}
	if err := h.flow.CompleteLogin(r.Context(), nav, code); err != nil {
		h.log.Warn("login completion failed",
			logger.Component("web"),
			logger.Error(err),
		)
		if !nav.navigated {
			h.render(w, "auth_error.tmpl", struct{ Error string }{Error: h.sessions.Err()})
		}
		return
	}
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Logout(r.Context()); err != nil {
		h.log.Warn("logout failed", logger.Component("web"), logger.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("template render failed",
			logger.Component("web"),
			slog.String("template", name),
			logger.Error(err),
		)
	}
}
