package handlers

import (
	"net/http"
	"strconv"

	"github.com/omega-realm/worldserver/internal/character"
	"github.com/omega-realm/worldserver/internal/leaderboard"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type LeaderboardHandler struct {
	board      leaderboard.Board
	characters *character.Store
}

func NewLeaderboardHandler(board leaderboard.Board, characters *character.Store) *LeaderboardHandler {
	return &LeaderboardHandler{board: board, characters: characters}
}

// LeaderboardResponse lists the top killers and the most killed
type LeaderboardResponse struct {
	TopKillers []leaderboard.Entry `json:"top_killers"`
	TopDeaths  []leaderboard.Entry `json:"top_deaths"`
}

// CharacterStatsResponse is one character's kill and death totals
type CharacterStatsResponse struct {
	leaderboard.Stats
	CharacterName string `json:"character_name"`
}

// GetLeaderboard handles GET /api/leaderboard?limit=N. With character_id
// it returns that character's totals instead of the rankings.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s := r.URL.Query().Get("character_id"); s != "" {
		h.characterStats(w, r, s)
		return
	}

	limit := int64(defaultLeaderboardLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	ctx := r.Context()
	killers, err := h.board.TopKillers(ctx, limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	deaths, err := h.board.TopDeaths(ctx, limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{
		TopKillers: h.named(killers),
		TopDeaths:  h.named(deaths),
	})
}

func (h *LeaderboardHandler) characterStats(w http.ResponseWriter, r *http.Request, raw string) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "character_id must be an integer")
		return
	}
	c, ok := h.characters.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Character not found")
		return
	}
	stats, err := h.board.Stats(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CharacterStatsResponse{Stats: stats, CharacterName: c.Name()})
}

func (h *LeaderboardHandler) named(entries []leaderboard.Entry) []leaderboard.Entry {
	for i := range entries {
		if c, ok := h.characters.Get(entries[i].CharacterID); ok {
			entries[i].CharacterName = c.Name()
		}
	}
	return entries
}
