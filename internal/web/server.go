// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/mdhender/registro/internal/metrics"
	"github.com/mdhender/registro/internal/registration"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionName = "registro"

// Store is the subset of store.Store the handlers need.
type Store interface {
	Backend() string
	Insert(ctx context.Context, r registration.Registration) (int64, error)
	ListAll(ctx context.Context) ([]registration.Record, error)
	Ping(ctx context.Context) error
}

// Handler serves the registration pages.
type Handler struct {
	logger   *slog.Logger
	store    Store
	sessions sessions.Store
	metrics  *metrics.Metrics
	version  string

	formTemplate *template.Template
	listTemplate *template.Template
}

// NewHandler parses the embedded templates once and returns a Handler.
func NewHandler(
	store Store,
	sessionStore sessions.Store,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	version string) (*Handler, error) {
	funcs := template.FuncMap{
		"fecha": func(t time.Time) string { return t.Format(time.DateTime) },
	}

	formTmpl, err := template.New("registro.html").Funcs(funcs).
		ParseFS(templatesFS, "templates/base.html", "templates/registro.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse registro template: %w", err)
	}
	listTmpl, err := template.New("usu_registrados.html").Funcs(funcs).
		ParseFS(templatesFS, "templates/base.html", "templates/usu_registrados.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse usu_registrados template: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		logger:       logger,
		store:        store,
		sessions:     sessionStore,
		metrics:      metrics,
		version:      version,
		formTemplate: formTmpl,
		listTemplate: listTmpl,
	}, nil
}

// NewSessionStore returns the cookie store that carries flash messages.
// secure marks the cookie Secure, which browsers only send over HTTPS.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Register registers the page routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/registro", h.handleRegistroForm)
	r.Post("/registro", h.handleRegistroSubmit)
	r.Get("/usu_registrados", h.handleListado)
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
}

// NewRouter wires the middleware stack and all routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	h.Register(r)
	return r
}

// NewServer builds an HTTP server with sane defaults for this project.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
