// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the word-chain backend.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, timeouts, JSON, CORS, metrics).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints: /game/* (see routes_game.go).
//   - Dictionary helpers: /chain/validate, /words/{word}/next.
//   - Daily challenge endpoints: /daily/* (see routes_daily.go).
//   - Identity: optional JWT bearer token, else an anonymous cookie.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Identity never rejects a request; guests get a stable anonymous ID.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchain/apps/go-server/internal/chain"
	"github.com/robalobadob/wordchain/apps/go-server/internal/daily"
	"github.com/robalobadob/wordchain/apps/go-server/internal/observe"
	"github.com/robalobadob/wordchain/apps/go-server/internal/scoring"
	"github.com/robalobadob/wordchain/apps/go-server/internal/store"
)

// Deps are the collaborators a Server needs. Daily and Results may be nil,
// in which case the /daily routes are not mounted.
type Deps struct {
	Sessions     store.Store
	Validator    *chain.Validator
	Daily        *daily.Publisher
	Results      *daily.Store
	Metrics      *observe.Metrics
	MetricsPage  http.Handler // served at /metrics when set
	Scoring      scoring.Config
	JWTSecret    string
	ClientOrigin string
	WordCount    int
}

// Server bundles the router and its dependencies.
type Server struct {
	r   *chi.Mux
	d   Deps
	now func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Metrics == nil {
		d.Metrics = observe.DefaultMetrics()
	}
	if d.ClientOrigin == "" {
		d.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), d: d, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(15 * time.Second))
	s.r.Use(observe.Middleware(d.Metrics))
	s.r.Use(jsonContentType)
	s.r.Use(cors(d.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordchain-go",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/word", "POST /chain/validate", "/daily"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "words": d.WordCount})
	})
	if d.MetricsPage != nil {
		s.r.Method(http.MethodGet, "/metrics", d.MetricsPage)
	}

	s.r.Post("/auth/guest", s.handleGuestToken)

	s.r.Group(func(r chi.Router) {
		r.Use(s.withIdentity)
		s.mountGame(r)
		s.mountDictionary(r)
		if d.Daily != nil && d.Results != nil {
			s.mountDaily(r)
		}
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Handler exposes the router (useful for tests and http.Server).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ identity -----------------------------------

const (
	anonCookieName = "wordchain_anon"
	tokenTTL       = 30 * 24 * time.Hour
)

type ctxIdentityKey struct{}

// identity is who the request plays as.
type identity struct {
	ID            string
	Authenticated bool
}

func identityFrom(ctx context.Context) identity {
	id, _ := ctx.Value(ctxIdentityKey{}).(identity)
	return id
}

// withIdentity resolves a bearer token if one verifies, otherwise the
// anonymous cookie, creating it when absent.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identity{}
		if sub, ok := s.verifyToken(bearer(r)); ok {
			id = identity{ID: "user:" + sub, Authenticated: true}
		} else {
			id.ID = "anon:" + ensureAnonID(w, r)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxIdentityKey{}, id)))
	})
}

func (s *Server) verifyToken(tok string) (string, bool) {
	if tok == "" || s.d.JWTSecret == "" {
		return "", false
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.d.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

// signToken issues an HS256 token for subject.
func signToken(secret, subject, name string, now time.Time) (string, time.Time, error) {
	exp := now.Add(tokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"name": name,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	})
	ss, err := t.SignedString([]byte(secret))
	return ss, exp, err
}

type guestReq struct {
	Name string `json:"name"`
}

// handleGuestToken issues a bearer token for a fresh guest identity so a
// player keeps the same leaderboard ID across devices.
func (s *Server) handleGuestToken(w http.ResponseWriter, r *http.Request) {
	if s.d.JWTSecret == "" {
		writeError(w, http.StatusNotImplemented, "tokens_disabled")
		return
	}
	var req guestReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	name := strings.TrimSpace(req.Name)
	if len(name) > 24 {
		writeError(w, http.StatusBadRequest, "name must be at most 24 characters")
		return
	}
	sub := uuid.NewString()
	tok, exp, err := signToken(s.d.JWTSecret, sub, name, s.now())
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "userId": "user:" + sub, "expiresAt": exp.UTC()})
}

// bearer extracts a bearer token from the Authorization header.
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return false
	}
	return true
}
