package handlers

import (
	"errors"
	"net/http"

	"github.com/buildercircle/server/internal/api/middleware"
	"github.com/buildercircle/server/internal/api/respond"
	"github.com/buildercircle/server/internal/auth"
	"github.com/buildercircle/server/internal/domain/admins"
)

type AdminAuthHandler struct {
	Service *admins.Service
	Env     string
}

func NewAdminAuthHandler(service *admins.Service, env string) *AdminAuthHandler {
	return &AdminAuthHandler{Service: service, Env: env}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string        `json:"token"`
	Admin *admins.Admin `json:"admin"`
}

// Login authenticates an admin and mints a token. A successful login
// refunds its rate-limit token so only failed attempts burn the budget.
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	admin, token, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, admins.ErrInvalidCredentials) {
			respond.Error(w, r, http.StatusUnauthorized, respond.CodeInvalidLogin,
				"invalid email or password", err, h.Env)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}

	middleware.RefundLogin(r.Context())
	respond.Data(w, http.StatusOK, loginResponse{Token: token, Admin: admin})
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Register creates a new administrator. The route is superadmin-gated at
// the router.
func (h *AdminAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	admin, err := h.Service.Register(r.Context(), admins.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, admins.ErrEmailTaken) {
			respond.Error(w, r, http.StatusConflict, respond.CodeDuplicate,
				"email is already registered", err, h.Env)
			return
		}
		badRequest(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusCreated, admin)
}

// Profile returns the authenticated admin's own record.
func (h *AdminAuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, respond.CodeAuthRequired,
			"authorization required", nil, h.Env)
		return
	}

	admin, err := h.Service.GetByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, admins.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, respond.CodeAdminNotFound,
				"admin not found", err, h.Env)
			return
		}
		internalError(w, r, h.Env, err)
		return
	}
	respond.Data(w, http.StatusOK, admin)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the authenticated admin's password after
// verifying the current one.
func (h *AdminAuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, respond.CodeAuthRequired,
			"authorization required", nil, h.Env)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, h.Env, err)
		return
	}

	err := h.Service.ChangePassword(r.Context(), claims.Subject, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, admins.ErrInvalidCredentials):
			respond.Error(w, r, http.StatusUnauthorized, respond.CodeInvalidLogin,
				"current password is incorrect", err, h.Env)
		case errors.Is(err, admins.ErrNotFound):
			respond.Error(w, r, http.StatusNotFound, respond.CodeAdminNotFound,
				"admin not found", err, h.Env)
		case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
			badRequest(w, r, h.Env, err)
		default:
			internalError(w, r, h.Env, err)
		}
		return
	}
	respond.Message(w, http.StatusOK, "password updated")
}
