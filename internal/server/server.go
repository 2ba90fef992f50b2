package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/coursehub/coursehub-backend/internal/api"
	"github.com/coursehub/coursehub-backend/internal/config"
	"github.com/coursehub/coursehub-backend/internal/middlewares"
	"github.com/coursehub/coursehub-backend/internal/model"
)

type Server struct {
	router *chi.Mux
	cfg    *config.Config
	api    *api.API
	rdb    *redis.Client
}

// NewServer wires the router around an already-constructed API.
func NewServer(cfg *config.Config, a *api.API, rdb *redis.Client) *Server {
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		api:    a,
		rdb:    rdb,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Chi middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	origin := s.cfg.CORSOrigin
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	authRequired := middlewares.AuthMiddleware(s.api.JWTSecret)
	adminOnly := middlewares.RequireRole(string(model.RoleAdmin))
	coachOrAdmin := middlewares.RequireRole(string(model.RoleCoach), string(model.RoleAdmin))
	rateLimited := middlewares.RateLimitMiddleware(
		s.rdb,
		s.cfg.RateLimitRequests,
		time.Duration(s.cfg.RateLimitWindowS)*time.Second,
	)

	// Health check endpoint
	s.router.Get("/health", s.api.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	// Auth routes
	s.router.Route("/api/auth", func(r chi.Router) {
		r.Use(rateLimited)
		r.Post("/register", s.api.Register)
		r.Post("/login", s.api.Login)
		r.Post("/logout", s.api.Logout)
	})

	// Users routes group
	s.router.Route("/api/users", func(r chi.Router) {
		r.Use(authRequired)
		r.With(adminOnly).Get("/", s.api.ListUsers)
		r.Get("/{user_id}", s.api.GetUser)
		r.Patch("/{user_id}", s.api.UpdateUser)
		r.With(adminOnly).Delete("/{user_id}", s.api.DeleteUser)
	})

	// Videos routes group
	s.router.Route("/api/videos", func(r chi.Router) {
		// Webhooks are called by the object store and the transcoder
		// workers, not by browsers; they carry no session cookie.
		r.Post("/s3-webhook", s.api.HandleStorageWebhook)

		r.Group(func(r chi.Router) {
			r.Use(authRequired)
			r.With(coachOrAdmin).Post("/initialize-upload", s.api.InitializeUpload)
			r.Get("/completed", s.api.GetCompletedVideos)
			r.Get("/my", s.api.GetMyVideos)
			r.Get("/{video_id}", s.api.GetVideoByID)
			r.Get("/{video_id}/status", s.api.GetVideoStatus)
			r.With(coachOrAdmin).Delete("/{video_id}", s.api.DeleteVideo)
		})
	})

	s.router.Post("/api/transcoder/webhook", s.api.HandleTranscodeWebhook)

	// Courses routes group
	s.router.Route("/api/courses", func(r chi.Router) {
		r.Get("/", s.api.ListCourses)
		r.Get("/{course_id}", s.api.GetCourse)

		r.Group(func(r chi.Router) {
			r.Use(authRequired, coachOrAdmin)
			r.Post("/", s.api.CreateCourse)
			r.Patch("/{course_id}", s.api.UpdateCourse)
			r.Delete("/{course_id}", s.api.DeleteCourse)
			r.Post("/lessons", s.api.CreateLesson)
			r.Patch("/lessons/{lesson_id}", s.api.UpdateLesson)
			r.Delete("/lessons/{lesson_id}", s.api.DeleteLesson)
		})
	})

	// Categories routes group
	s.router.Route("/api/categories", func(r chi.Router) {
		r.Get("/", s.api.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(authRequired, adminOnly)
			r.Post("/", s.api.CreateCategory)
			r.Patch("/{category_id}", s.api.UpdateCategory)
			r.Delete("/{category_id}", s.api.DeleteCategory)
		})
	})

	// Coaches routes group
	s.router.Route("/api/coaches", func(r chi.Router) {
		r.Get("/", s.api.ListCoachProfiles)
		r.Get("/{user_id}", s.api.GetCoachProfile)

		r.Group(func(r chi.Router) {
			r.Use(authRequired, adminOnly)
			r.Post("/", s.api.CreateCoachProfile)
			r.Patch("/{user_id}", s.api.UpdateCoachProfile)
			r.Delete("/{user_id}", s.api.DeleteCoachProfile)
		})
	})

	// WebSocket endpoint for notifications. Clients identify themselves
	// with the userId query parameter on connect.
	s.router.Get("/ws/notifications", s.api.WebSocketHandler)
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}

	slog.Info("server stopped")
	return nil
}
