package http

import (
	"net/http"

	"github.com/Adnan2001Bin/task-management-application/internal/auth"
	"github.com/Adnan2001Bin/task-management-application/internal/config"
	"github.com/Adnan2001Bin/task-management-application/internal/httputil"
	"github.com/Adnan2001Bin/task-management-application/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, authHandler *auth.Handler, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Registration and authentication (public)
	r.Get("/check-username-unique", authHandler.CheckUsername)
	r.Post("/sign-up", authHandler.SignUp)
	r.Post("/sign-in", authHandler.SignIn)
	r.Post("/verify-code", authHandler.VerifyCode)
	r.Post("/resend-verification", authHandler.ResendVerification)

	// Protected routes (require a session token)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/me", authHandler.Me)
	})

	return r
}

// handleHealth is a simple health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
