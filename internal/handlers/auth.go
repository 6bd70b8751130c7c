package handlers

import (
	"net/http"

	"github.com/omega-realm/worldserver/internal/account"
)

type AuthHandler struct {
	accounts *account.Directory
}

func NewAuthHandler(accounts *account.Directory) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Message  string `json:"message"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username"`
}

// Register handles account registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.accounts.Register(r.Context(), req.Username, req.Password, req.Email); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Message: "Account created successfully", Username: req.Username})
}

// Login handles account authentication and returns a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}
	token, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Login successful", Token: token, Username: req.Username})
}
