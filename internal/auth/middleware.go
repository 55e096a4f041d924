package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// Skipper allows callers to bypass authentication for specific requests.
type Skipper func(r *http.Request) bool

// Middleware enforces a bearer token carrying Scope on every request the skipper does
// not exempt.
type Middleware struct {
	Config  Config
	Scope   string
	Skipper Skipper
}

// NewMiddleware constructs a middleware requiring the recommendations scope and
// exempting probes and metrics.
func NewMiddleware(cfg Config) Middleware {
	return Middleware{Config: cfg, Scope: ScopeRecommendationsRead, Skipper: SkipPaths("/health", "/healthz", "/metrics")}
}

// SkipPaths exempts exact request paths.
func SkipPaths(paths ...string) Skipper {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.URL.Path]
		return ok
	}
}

// Wrap wraps an http.Handler with authentication.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || (m.Skipper != nil && m.Skipper(r)) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseRequest(r)
		if err != nil {
			deny(w, http.StatusUnauthorized, err)
			return
		}
		if m.Scope != "" && !claims.HasScope(m.Scope) {
			deny(w, http.StatusForbidden, ErrInsufficientScope)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrInvalidToken
	}
	return Parse(header[len("Bearer "):], m.Config)
}

func deny(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if errors.Is(err, ErrInvalidToken) {
		msg = ErrInvalidToken.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="recommender"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
