package rest

import (
	"net/http"

	"quizboard/internal/service"
	"quizboard/internal/transport/rest/handler"
	"quizboard/internal/transport/rest/middleware"
	"quizboard/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	QuizService handler.QuizService
	RoomService handler.RoomService
	HostService handler.HostService
	WSHandler   *ws.Handler
	PublicURL   string
	CORSOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	quizHandler := handler.NewQuizHandler(c.QuizService)
	roomHandler := handler.NewRoomHandler(c.RoomService, c.PublicURL)
	gameHandler := handler.NewGameHandler(c.HostService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/quizzes", quizHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/quizzes/{id}", quizHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}", roomHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/leaderboard", roomHandler.Leaderboard).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/qr", roomHandler.QR).Methods("GET", "OPTIONS")
	v1.HandleFunc("/docs/doc.json", handler.Docs).Methods("GET")

	// WebSocket route (token in query param, none for viewers)
	if c.WSHandler != nil {
		v1.HandleFunc("/ws/rooms/{code}", c.WSHandler.RoomWS).Methods("GET")
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Operator routes (any host token)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/quizzes", quizHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")

	// Room host routes (token issued for this room)
	roomHostRoutes := v1.NewRoute().Subrouter()
	roomHostRoutes.Use(authMW.RequireRoomHost)

	roomHostRoutes.HandleFunc("/rooms/{code}/state", roomHandler.UpdateState).Methods("PATCH", "OPTIONS")
	roomHostRoutes.HandleFunc("/rooms/{code}/questions/open", gameHandler.OpenQuestion).Methods("POST", "OPTIONS")
	roomHostRoutes.HandleFunc("/rooms/{code}/judge", gameHandler.Judge).Methods("POST", "OPTIONS")
	roomHostRoutes.HandleFunc("/rooms/{code}/questions/end", gameHandler.EndQuestion).Methods("POST", "OPTIONS")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/rooms/{code}/buzz", roomHandler.Buzz).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
