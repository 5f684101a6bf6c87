package middleware

import (
	"context"
	"net/http"
	"strings"

	"quizboard/internal/service"

	"github.com/gorilla/mux"
)

type contextKey string

const (
	HostIDKey   contextKey = "hostId"
	PlayerIDKey contextKey = "playerId"
	RoomCodeKey contextKey = "roomCode"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireHost accepts any host token, operator or room-scoped.
func (m *AuthMiddleware) RequireHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateHostToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), HostIDKey, claims.HostID)
		ctx = context.WithValue(ctx, RoomCodeKey, claims.RoomCode)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoomHost only lets through the host token issued for the {code}
// in the path.
func (m *AuthMiddleware) RequireRoomHost(next http.Handler) http.Handler {
	return m.RequireHost(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sameRoom(GetRoomCode(r.Context()), mux.Vars(r)["code"]) {
			http.Error(w, `{"error":"not the host of this room"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequirePlayer validates player JWT from Authorization header or query param
// and checks it belongs to the {code} in the path.
func (m *AuthMiddleware) RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidatePlayerToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}
		if code, ok := mux.Vars(r)["code"]; ok && !sameRoom(claims.RoomCode, code) {
			http.Error(w, `{"error":"token not valid for this room"}`, http.StatusForbidden)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, PlayerIDKey, claims.PlayerID)
		ctx = context.WithValue(ctx, RoomCodeKey, claims.RoomCode)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sameRoom(claimed, path string) bool {
	return claimed != "" && claimed == service.NormalizeCode(path)
}

// GetHostID extracts host ID from context
func GetHostID(ctx context.Context) string {
	if v, ok := ctx.Value(HostIDKey).(string); ok {
		return v
	}
	return ""
}

// GetPlayerID extracts player ID from context
func GetPlayerID(ctx context.Context) string {
	if v, ok := ctx.Value(PlayerIDKey).(string); ok {
		return v
	}
	return ""
}

// GetRoomCode extracts room code from context
func GetRoomCode(ctx context.Context) string {
	if v, ok := ctx.Value(RoomCodeKey).(string); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
