package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/folio/pkg/config"
	"github.com/wadjakorntonsri/folio/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, analyticsService ports.AnalyticsService, profileService ports.ProfileService, limiter *RateLimiter) http.Handler {
	ah := NewAnalyticsHandler(analyticsService, profileService, cfg.TrustProxyHeaders)
	ph := NewProfileHandler(profileService)
	mw := NewMiddleware(cfg)
	authHandler := NewAuthHandler(cfg)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.Handle("POST /track/{subject_key}", limiter.Middleware(ah.clients.addr, http.HandlerFunc(ah.Track)))
	mux.HandleFunc("GET /p/{username}", ph.GetPublic)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /api/v1/profile", ph.Create)
	protectedMux.HandleFunc("GET /api/v1/profile", ph.GetMine)
	protectedMux.HandleFunc("PUT /api/v1/profile", ph.Update)
	protectedMux.HandleFunc("DELETE /api/v1/profile", ph.Delete)
	protectedMux.HandleFunc("GET /api/v1/analytics/summary", ah.Summary)
	protectedMux.HandleFunc("GET /api/v1/analytics/detail", ah.Detail)

	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	return RequestLogger(mux)
}
