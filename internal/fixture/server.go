package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"golang.org/x/crypto/bcrypt"
)

type contextKeyEmail struct{}

// adminEmail retrieves the authenticated operator from the request context.
func adminEmail(ctx context.Context) string {
	email, _ := ctx.Value(contextKeyEmail{}).(string)
	return email
}

// Server is the fixture backend. It holds no business state of its own;
// everything lives in the injected stores.
type Server struct {
	log     *slog.Logger
	admins  AdminStore
	devices DeviceStore
	tokens  TokenStore
	issuer  *TokenIssuer
}

func NewServer(log *slog.Logger, admins AdminStore, devices DeviceStore, tokens TokenStore, issuer *TokenIssuer) *Server {
	return &Server{
		log:     log,
		admins:  admins,
		devices: devices,
		tokens:  tokens,
		issuer:  issuer,
	}
}

// SeedAdmin registers an operator account with a bcrypt-hashed password.
// The trusted fingerprint stays unbound until the first login.
func (s *Server) SeedAdmin(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	return s.admins.Save(ctx, Admin{Email: email, PasswordHash: hash})
}

// Router wires all endpoints. Everything under /api/admin/devices requires a
// current bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(s.countRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/auth/change-password", s.handleChangePassword)
			r.Get("/devices/summary", s.handleSummary)
			r.Get("/devices", s.handleListDevices)
			r.Get("/devices/{deviceID}", s.handleGetDevice)
			r.Get("/devices/{deviceID}/logs", s.handleLocationLogs)
		})
	})

	return r
}

// requireAuth validates the bearer token and checks its id against the
// account's current one; anything older has been superseded.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := s.issuer.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		current, err := s.tokens.Current(r.Context(), claims.Email)
		if err != nil || current != claims.ID {
			writeError(w, http.StatusUnauthorized, "token superseded")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyEmail{}, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		class := strconv.Itoa(ww.Status()/100) + "xx"
		httpRequests.WithLabelValues(route, class).Inc()
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError keeps the error envelope uniform: {"error": "<message>"}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
