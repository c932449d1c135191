package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/facegate/backend/internal/config"
	"github.com/facegate/backend/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionManager issues and validates the signed session cookie. The
// cookie is a JWT carrying identity and role; logout blacklists the token
// in Redis until its natural expiry.
type SessionManager struct {
	secret     []byte
	expiry     time.Duration
	cookieName string
	redis      *redis.Client
}

func NewSessionManager(cfg config.SessionConfig, redisClient *redis.Client) *SessionManager {
	return &SessionManager{
		secret:     []byte(cfg.SecretKey),
		expiry:     time.Duration(cfg.ExpiryHours) * time.Hour,
		cookieName: cfg.CookieName,
		redis:      redisClient,
	}
}

// Issue signs a session token and sets it as an HttpOnly cookie.
func (sm *SessionManager) Issue(w http.ResponseWriter, sess *models.Session) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   sess.UserID,
		"user_name": sess.UserName,
		"is_admin":  sess.IsAdmin,
		"jti":       uuid.NewString(),
		"exp":       time.Now().Add(sm.expiry).Unix(),
	})

	signed, err := token.SignedString(sm.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sm.expiry.Seconds()),
	})
	return nil
}

// FromRequest returns the session carried by the request cookie, or nil
// when the cookie is absent, invalid, expired, or blacklisted.
func (sm *SessionManager) FromRequest(r *http.Request) *models.Session {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return nil
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return sm.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	if sm.redis != nil {
		if jti, _ := claims["jti"].(string); jti != "" {
			n, err := sm.redis.Exists(r.Context(), blacklistKey(jti)).Result()
			if err == nil && n > 0 {
				return nil
			}
		}
	}

	userID, _ := claims["user_id"].(string)
	userName, _ := claims["user_name"].(string)
	isAdmin, _ := claims["is_admin"].(bool)
	return &models.Session{UserID: userID, UserName: userName, IsAdmin: isAdmin}
}

// Clear invalidates the current session token and expires the cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sm.cookieName); err == nil && sm.redis != nil {
		token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (any, error) {
			return sm.secret, nil
		})
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if jti, _ := claims["jti"].(string); jti != "" {
					if err := sm.redis.Set(r.Context(), blacklistKey(jti), "1", sm.expiry).Err(); err != nil {
						log.Printf("[SESSION] Failed to blacklist token: %v", err)
					}
				}
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}

// RequireUser gates user-level endpoints. Missing sessions get a
// structured negative response, not a transport error.
func (sm *SessionManager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sm.FromRequest(r)
		if sess == nil {
			respondDenied(w, "Not logged in")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

// RequireAdmin gates admin-only endpoints.
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sm.FromRequest(r)
		if sess == nil || !sess.IsAdmin {
			respondDenied(w, "Admin access required")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

func withSession(ctx context.Context, sess *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionFromContext returns the session injected by the auth middleware,
// or nil outside a gated handler.
func SessionFromContext(ctx context.Context) *models.Session {
	sess, _ := ctx.Value(sessionContextKey).(*models.Session)
	return sess
}

func respondDenied(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
