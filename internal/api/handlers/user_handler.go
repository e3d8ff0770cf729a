package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/avelks/todo-api-be/internal/auth"
	"github.com/avelks/todo-api-be/internal/services"
)

// UserHandler handles registration and login.
type UserHandler struct {
	service  services.UserServiceProvider
	tokens   *auth.TokenService
	eventSvc services.EventServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.TokenService, eventSvc services.EventServiceProvider) *UserHandler {
	return &UserHandler{service: service, tokens: tokens, eventSvc: eventSvc}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			writeFail(w, http.StatusConflict, services.ErrDuplicateEmail.Error())
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, http.StatusInternalServerError, "failed to register user: "+err.Error())
		return
	}

	if err := h.eventSvc.RecordEvent(r.Context(), user.ID, "user.register", "info", "Account created"); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record register event")
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"user_id": user.ID,
	})
}

// Login handles user authentication and token issuance. All failures look
// the same to the client.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeFail(w, http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	if err := h.eventSvc.RecordEvent(r.Context(), user.ID, "user.login", "info", "Logged in"); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record login event")
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"token":  token,
	})
}
