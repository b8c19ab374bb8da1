package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"

	"github.com/golang-jwt/jwt"
)

const SessionCookieName = "studyrooms-session"

const (
	subClaim  = "sub"
	nameClaim = "name"
	roleClaim = "role"
)

// AuthenticationMiddleware resolves the platform session cookie into a
// core.ContextSession. Account management lives in another service -
// this one only verifies the signed cookie it issues.
func AuthenticationMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				core.WriteUnauthorized(w, r, nil)
				return
			}

			session, err := VerifySessionToken(secret, cookie.Value)
			if err != nil {
				core.WriteUnauthorized(w, r, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(core.WithSession(r.Context(), session)))
		})
	}
}

func VerifySessionToken(secret, tokenString string) (core.ContextSession, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return core.ContextSession{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return core.ContextSession{}, fmt.Errorf("invalid session token")
	}

	userID, ok := claims[subClaim].(string)
	if !ok || userID == "" {
		return core.ContextSession{}, fmt.Errorf("session token missing subject")
	}

	session := core.ContextSession{UserID: userID}
	if name, ok := claims[nameClaim].(string); ok {
		session.DisplayName = name
	}
	if role, ok := claims[roleClaim].(string); ok {
		session.Role = role
	}

	return session, nil
}

// SignSessionToken mints a session cookie value. The auth service is
// the normal issuer - this is exported for test fixtures.
func SignSessionToken(secret string, session core.ContextSession, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		subClaim:  session.UserID,
		nameClaim: session.DisplayName,
		roleClaim: session.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})

	return token.SignedString([]byte(secret))
}
