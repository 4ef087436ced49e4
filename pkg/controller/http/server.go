package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/teamsense-lab/argus/pkg/usecase"
	"github.com/teamsense-lab/argus/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

type Options func(*Server)

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/integrations/tracker", func(r chi.Router) {
		r.Post("/connect", s.connectHandler)
		r.Get("/callback", s.callbackHandler)
		r.Get("/status", s.statusHandler)
		r.Delete("/disconnect", s.disconnectHandler)
		r.Get("/teams", s.teamsHandler)
		r.Get("/workload", s.workloadHandler)

		r.Route("/mappings", func(r chi.Router) {
			r.Get("/", s.listMappingsHandler)
			r.Post("/", s.assignMappingHandler)
			r.Post("/automap", s.autoMapHandler)
			r.Post("/unmap", s.unmapHandler)
			r.Get("/resolve", s.resolveHandler)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
