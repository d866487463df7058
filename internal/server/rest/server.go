// Package rest exposes the enrollment and authentication services as a JSON
// HTTP API for browser clients.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/faceauth/internal/descriptor"
	"github.com/dmitrijs2005/faceauth/internal/logging"
	"github.com/dmitrijs2005/faceauth/internal/server/config"
	"github.com/dmitrijs2005/faceauth/internal/server/models"
	"github.com/dmitrijs2005/faceauth/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	shutdownTimeout = 5 * time.Second
	requestTimeout  = 30 * time.Second
	maxBodyBytes    = 1 << 20
)

// EnrollmentService is the part of services.EnrollmentService used here.
type EnrollmentService interface {
	Register(ctx context.Context, username string, d descriptor.Descriptor) (*models.User, error)
}

// AuthenticationService is the part of services.AuthenticationService used
// here.
type AuthenticationService interface {
	Login(ctx context.Context, d descriptor.Descriptor) (*services.LoginResult, error)
	WhoAmI(ctx context.Context, token string) (string, error)
}

type HTTPServer struct {
	address        string
	allowedOrigins []string
	modelsDir      string
	enrollment     EnrollmentService
	authentication AuthenticationService
	logger         logging.Logger
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, es EnrollmentService, as AuthenticationService) *HTTPServer {
	return &HTTPServer{
		address:        cfg.EndpointAddrHTTP,
		allowedOrigins: cfg.AllowedOrigins,
		modelsDir:      cfg.ModelsDir,
		enrollment:     es,
		authentication: as,
		logger:         l.With("module", "http_server"),
	}
}

// Router builds the chi router with middleware and all routes.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", s.handlePing)
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Get("/me", s.handleMe)

	if s.modelsDir != "" {
		r.Handle("/models/*", http.StripPrefix("/models/", http.FileServer(http.Dir(s.modelsDir))))
	}

	return r
}

// Run listens on the configured address and serves until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// requestLogger logs one line per request at debug level.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
