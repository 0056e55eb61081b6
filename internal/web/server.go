// Package web serves the card browser page, its JSON API and a websocket
// stream of state changes.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/arcanaland/scrybe/internal/browser"
	"github.com/arcanaland/scrybe/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var assets embed.FS

const sessionCookie = "scrybe_session"

// Options configures a Server.
type Options struct {
	API        browser.API
	Catalog    *catalog.Catalog
	SessionTTL time.Duration
	Log        logrus.FieldLogger
}

// Server is the scrybe web UI server.
type Server struct {
	api      browser.API
	catalog  *catalog.Catalog
	log      logrus.FieldLogger
	sessions *Sessions
	page     *template.Template
	router   chi.Router
}

func NewServer(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}

	page, err := template.ParseFS(assets, "templates/index.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		api:     opts.API,
		catalog: opts.Catalog,
		log:     opts.Log,
		page:    page,
	}
	s.sessions = NewSessions(opts.SessionTTL, func() *browser.Browser {
		return browser.New(s.api, browser.WithCatalog(s.catalog), browser.WithLogger(s.log))
	}, s.log)
	s.router = s.setupRouter()
	return s, nil
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	staticFS, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.handleIndex)
	r.Post("/random", s.handleRandomForm)
	r.Post("/search", s.handleSearchForm)
	r.Post("/cards/{id}", s.handleLoadForm)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://*", "http://*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Origin", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Get("/state", s.handleState)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/random", s.handleRandomAPI)
		r.Post("/search", s.handleSearchAPI)
		r.Route("/cards/{id}", func(r chi.Router) {
			r.Post("/", s.handleLoadAPI)
			r.Get("/qr.png", s.handleQR)
		})
	})

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions exposes the session registry.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// session returns the caller's browser, creating a session and setting the
// cookie when the request carries none or an expired one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *browser.Browser {
	if b, ok := s.existingSession(r); ok {
		return b
	}

	id, b := s.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return b
}

// existingSession returns the browser named by the request's cookie, if
// that session is still live.
func (s *Server) existingSession(r *http.Request) (*browser.Browser, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.Get(c.Value)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and closes every session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.sessions.Run(sweepCtx)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		err = srv.Shutdown(shutdownCtx)
	}

	s.sessions.Close()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
