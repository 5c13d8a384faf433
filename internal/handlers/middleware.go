package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const LearnerContextKey ContextKey = "learner"

// learnerClaims is the token payload issued by the external auth
// service. The learner ID rides in the subject claim.
type learnerClaims struct {
	jwt.RegisteredClaims
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokenSecret []byte
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokenSecret string) *Middleware {
	return &Middleware{tokenSecret: []byte(tokenSecret)}
}

// RequireLearner is middleware that requires a valid bearer token and
// puts the learner ID on the request context.
func (m *Middleware) RequireLearner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing bearer token", "", nil)
			return
		}

		claims := &learnerClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.tokenSecret, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			respondWithError(w, http.StatusUnauthorized, "Invalid token", "token validation failed", err)
			return
		}

		ctx := context.WithValue(r.Context(), LearnerContextKey, claims.Subject)
		next(w, r.WithContext(ctx))
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// LearnerFromContext retrieves the learner ID from the request context.
func LearnerFromContext(ctx context.Context) string {
	learnerID, ok := ctx.Value(LearnerContextKey).(string)
	if !ok {
		return ""
	}
	return learnerID
}
