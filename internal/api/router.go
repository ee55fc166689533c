package api

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/go-roster/internal/api/handlers"
	"github.com/hugh/go-roster/internal/api/middleware"
	"github.com/hugh/go-roster/internal/auth"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	Auth           auth.Authenticator
	Employees      handlers.EmployeeService
	Templates      handlers.Renderer
	StaticFS       fs.FS
	AllowedOrigins []string           // CORS allowed origins
	Limiter        middleware.Limiter // nil disables rate limiting
	CookieSecure   bool
	TrustProxy     bool // honour X-Forwarded-For/X-Real-IP from a trusted proxy
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	view := handlers.NewView(cfg.Templates, cfg.Logger, cfg.CookieSecure)
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.Auth, view)
	pageHandler := handlers.NewPageHandler(cfg.Employees, view)
	employeeHandler := handlers.NewEmployeeHandler(cfg.Employees, view)

	r.NotFound(pageHandler.NotFound)

	// Health endpoints (no auth, no csrf)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Static files
	if cfg.StaticFS != nil {
		fileServer := http.FileServer(http.FS(cfg.StaticFS))
		r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(cfg.CookieSecure))

		// Public pages
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.Auth))

			r.Get("/", pageHandler.Home)
			r.Get("/login", authHandler.LoginForm)
			r.Get("/register", authHandler.RegisterForm)

			r.Group(func(r chi.Router) {
				if cfg.Limiter != nil {
					r.Use(middleware.RateLimit(cfg.Limiter, cfg.Logger))
				}
				r.Post("/login", authHandler.Login)
				r.Post("/register", authHandler.Register)
			})
		})

		// Protected pages
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Auth))

			r.Get("/logout", authHandler.Logout)
			r.Get("/dashboard", pageHandler.Dashboard)
			r.Get("/add_new_employee", employeeHandler.NewForm)
			r.Post("/add_new_employee", employeeHandler.Create)
			r.Get("/update_employee/{id}", employeeHandler.EditForm)
			r.Post("/update_employee/{id}", employeeHandler.Update)
			r.Post("/delete_emp/{id}", employeeHandler.Delete)
			r.Get("/singleemployeeprofile/{id}", employeeHandler.Profile)
		})
	})

	return &Router{r}
}
