package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/salestracker/internal/auth"
	"github.com/prn-tf/salestracker/internal/domain"
	"github.com/prn-tf/salestracker/internal/metrics"
	"github.com/prn-tf/salestracker/internal/service"
)

// AuthHandler exposes the registration, login, token, and profile endpoints.
type AuthHandler struct {
	userService  *service.UserService
	tokenService *service.TokenService
	logger       zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService *service.UserService, tokenService *service.TokenService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
		logger:       logger.With().Str("handler", "auth").Logger(),
	}
}

// registerRequest is the POST /auth/register/ body.
type registerRequest struct {
	Email                string `json:"email"`
	Username             string `json:"username"`
	Password             string `json:"password"`
	ConfirmPassword      string `json:"confirm_password"`
	Company              string `json:"company"`
	PhoneNumber          string `json:"phone_number"`
	PlanType             string `json:"plan_type"`
	NewsletterSubscribed bool   `json:"newsletter_subscribed"`
}

// Register handles POST /auth/register/.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, ValidationErrors{"detail": {"Request body must be valid JSON."}})
		return
	}

	errs := ValidationErrors{}
	if req.Email == "" {
		errs.Add("email", "This field is required.")
	}
	if req.Username == "" {
		errs.Add("username", "This field is required.")
	}
	if req.Password == "" {
		errs.Add("password", "This field is required.")
	}
	if req.Password != req.ConfirmPassword {
		errs.Add("password", "Password fields didn't match.")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.userService.Register(r.Context(), service.RegisterInput{
		Email:                req.Email,
		Username:             req.Username,
		Password:             req.Password,
		Company:              req.Company,
		PhoneNumber:          req.PhoneNumber,
		PlanType:             req.PlanType,
		NewsletterSubscribed: req.NewsletterSubscribed,
	})
	if err != nil {
		h.writeRegisterError(w, err)
		return
	}

	tokens, err := h.tokenService.IssuePair(user)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue tokens after registration")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    user,
		"tokens":  tokens,
	})
}

// writeRegisterError maps registration failures onto field-keyed errors.
func (h *AuthHandler) writeRegisterError(w http.ResponseWriter, err error) {
	errs := ValidationErrors{}
	switch {
	case errors.Is(err, service.ErrEmailAlreadyExists):
		errs.Add("email", "A user with this email already exists.")
	case errors.Is(err, service.ErrUsernameAlreadyExists):
		errs.Add("username", "A user with this username already exists.")
	case errors.Is(err, service.ErrInvalidEmail):
		errs.Add("email", "Enter a valid email address.")
	case errors.Is(err, service.ErrInvalidUsername):
		errs.Add("username", "Username must be 3-150 characters.")
	case errors.Is(err, service.ErrPasswordTooWeak):
		errs.Add("password", err.Error())
	default:
		h.logger.Error().Err(err).Msg("registration failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeValidationErrors(w, errs)
}

// loginRequest is the POST /auth/login/ body.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login/.
// All authentication failures return the same generic 401 so the
// response never discloses which check failed.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, ValidationErrors{"detail": {"Request body must be valid JSON."}})
		return
	}

	errs := ValidationErrors{}
	if req.Email == "" {
		errs.Add("email", "This field is required.")
	}
	if req.Password == "" {
		errs.Add("password", "This field is required.")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.RecordAuthAttempt(false)
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	tokens, err := h.tokenService.IssuePair(user)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue tokens after login")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	metrics.RecordAuthAttempt(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
		"tokens":  tokens,
	})
}

// refreshRequest is the POST /auth/refresh/ body.
type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh handles POST /auth/refresh/: exchanges a valid refresh token
// for a fresh token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeValidationErrors(w, ValidationErrors{"refresh": {"This field is required."}})
		return
	}

	tokens, err := h.tokenService.Refresh(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "Token has expired")
			return
		}
		if errors.Is(err, service.ErrTokenInvalid) {
			writeError(w, http.StatusUnauthorized, "Token is invalid")
			return
		}
		h.logger.Error().Err(err).Msg("token refresh failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

// Verify handles POST /auth/verify/. The auth middleware has already
// validated the token; reaching this handler is the confirmation.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Token is valid")
}

// Profile handles GET /auth/profile/.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// Token outlived the account.
			writeError(w, http.StatusUnauthorized, "Token is invalid")
			return
		}
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load profile")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// currentUser loads the authenticated user for handlers that need the
// full identity, not just the ID.
func currentUser(r *http.Request, users *service.UserService) (*domain.User, error) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		return nil, service.ErrTokenInvalid
	}
	return users.GetByID(r.Context(), userID)
}
