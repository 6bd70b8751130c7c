package handlers

import (
	"net/http"

	"github.com/omega-realm/worldserver/internal/character"
	"github.com/omega-realm/worldserver/internal/middleware"
	"github.com/omega-realm/worldserver/internal/models"
)

type CharacterHandler struct {
	characters *character.Store
}

func NewCharacterHandler(characters *character.Store) *CharacterHandler {
	return &CharacterHandler{characters: characters}
}

// CreateCharacterRequest represents the request body for character creation
type CreateCharacterRequest struct {
	Name  string                `json:"name"`
	Class models.CharacterClass `json:"character_class"`
}

// CharacterSuccessResponse represents a success response with character data
type CharacterSuccessResponse struct {
	Message   string                `json:"message"`
	Character *models.CharacterData `json:"character"`
}

// GetCharacters returns the session account's characters
func (h *CharacterHandler) GetCharacters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	username, ok := middleware.Username(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	owned := h.characters.ListByOwner(username)
	out := make([]models.CharacterData, 0, len(owned))
	for _, c := range owned {
		out = append(out, c.Snapshot())
	}
	writeJSON(w, http.StatusOK, map[string]any{"characters": out})
}

// CreateCharacter creates a character for the session account
func (h *CharacterHandler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	username, ok := middleware.Username(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateCharacterRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.characters.Create(username, req.Name, req.Class)
	if err != nil {
		writeFailure(w, err)
		return
	}
	data := c.Snapshot()
	writeJSON(w, http.StatusCreated, CharacterSuccessResponse{Message: "Character created successfully", Character: &data})
}
