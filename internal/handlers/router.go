package handlers

import (
	"net/http"

	"github.com/omega-realm/worldserver/internal/account"
	"github.com/omega-realm/worldserver/internal/character"
	"github.com/omega-realm/worldserver/internal/leaderboard"
	"github.com/omega-realm/worldserver/internal/middleware"
	"github.com/omega-realm/worldserver/internal/world"
)

// Deps are the components behind the HTTP routes
type Deps struct {
	Accounts    *account.Directory
	Characters  *character.Store
	Leaderboard leaderboard.Board
	Reporter    world.Reporter
	// WebSocket serves /ws; nil leaves the route unregistered.
	WebSocket http.Handler
}

// NewRouter registers every route and wraps them in CORS
func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Accounts)
	characterHandler := NewCharacterHandler(d.Characters)
	leaderboardHandler := NewLeaderboardHandler(d.Leaderboard, d.Characters)
	statusHandler := NewStatusHandler(d.Reporter)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", Health)

	// Auth routes
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/login", authHandler.Login)

	// Character routes
	mux.HandleFunc("/api/characters", middleware.RequireSession(d.Accounts, characterHandler.GetCharacters))
	mux.HandleFunc("/api/characters/create", middleware.RequireSession(d.Accounts, characterHandler.CreateCharacter))

	mux.HandleFunc("/api/leaderboard", middleware.RequireSession(d.Accounts, leaderboardHandler.GetLeaderboard))
	mux.HandleFunc("/api/status", statusHandler.GetStatus)

	if d.WebSocket != nil {
		mux.Handle("/ws", d.WebSocket)
	}
	return middleware.CORS(mux)
}
