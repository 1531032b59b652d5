package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/folio/pkg/config"
)

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{
		JWTSecret: "testservlet",
	}
	mw := NewMiddleware(cfg)

	tests := []struct {
		name           string
		path           string
		cookieValue    string
		bearer         string
		expectedStatus int
		expectedEmail  string
	}{
		{
			name:           "No Token - API",
			path:           "/api/v1/profile",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "No Token - Browser",
			path:           "/dashboard",
			expectedStatus: http.StatusTemporaryRedirect,
		},
		{
			name:           "Invalid Cookie - API",
			path:           "/api/v1/profile",
			cookieValue:    "invalid",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid Cookie - API",
			path:           "/api/v1/profile",
			cookieValue:    signTestToken(t, jwt.SigningMethodHS256, cfg.JWTSecret, "test@example.com"),
			expectedStatus: http.StatusOK,
			expectedEmail:  "test@example.com",
		},
		{
			name:           "Valid Bearer - API",
			path:           "/api/v1/analytics/summary",
			bearer:         signTestToken(t, jwt.SigningMethodHS256, cfg.JWTSecret, "bearer@example.com"),
			expectedStatus: http.StatusOK,
			expectedEmail:  "bearer@example.com",
		},
		{
			name:           "Bearer Wins Over Cookie",
			path:           "/api/v1/profile",
			cookieValue:    "invalid",
			bearer:         signTestToken(t, jwt.SigningMethodHS256, cfg.JWTSecret, "bearer@example.com"),
			expectedStatus: http.StatusOK,
			expectedEmail:  "bearer@example.com",
		},
		{
			name:           "Bearer Wrong Algorithm",
			path:           "/api/v1/profile",
			bearer:         signTestToken(t, jwt.SigningMethodHS512, cfg.JWTSecret, "test@example.com"),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Bearer Wrong Secret",
			path:           "/api/v1/profile",
			bearer:         signTestToken(t, jwt.SigningMethodHS256, "other-secret", "test@example.com"),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Bearer Empty Subject",
			path:           "/api/v1/profile",
			bearer:         signTestToken(t, jwt.SigningMethodHS256, cfg.JWTSecret, ""),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: tt.cookieValue})
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}

			var gotEmail string
			rr := httptest.NewRecorder()
			handler := mw.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotEmail = UserEmail(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			handler.ServeHTTP(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					status, tt.expectedStatus)
			}
			if gotEmail != tt.expectedEmail {
				t.Errorf("user email in context: got %q want %q", gotEmail, tt.expectedEmail)
			}
		})
	}
}

func signTestToken(t *testing.T, method jwt.SigningMethod, secret, subject string) string {
	t.Helper()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	tokenString, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}
