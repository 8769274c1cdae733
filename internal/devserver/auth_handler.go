package devserver

import (
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/common/security"
	"code_judge_cli/internal/devserver/store"
	"code_judge_cli/internal/domain/model"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	users *store.UserStore
}

func validateRegister(req model.RegisterRequest) []string {
	var fields []string
	if len(req.DisplayName) < 3 || len(req.DisplayName) > 32 {
		fields = append(fields, "displayname must be between 3 and 32 characters")
	}
	if len(req.Password) < 6 || len(req.Password) > 32 {
		fields = append(fields, "password must be between 6 and 32 characters")
	}
	if len(req.Email) < 6 || len(req.Email) > 50 || !strings.Contains(req.Email, "@") {
		fields = append(fields, "email must be a valid address")
	}
	return fields
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if fields := validateRegister(req); len(fields) > 0 {
		common.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation error", fields)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	// The first account on a fresh database becomes the administrator so the
	// instance is manageable without seeding.
	role := model.RoleUser
	total, err := h.users.Count(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if total == 0 {
		role = model.RoleAdmin
	}

	user := &model.User{
		DisplayName:    req.DisplayName,
		Email:          req.Email,
		HashedPassword: string(hashed),
		Role:           role,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	common.RespondWithJSON(w, http.StatusOK, model.RegisterResponse{
		UserID:      user.UserID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		common.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := security.GenerateToken(user.UserID, user.DisplayName, user.Email, user.Role)
	if err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate token: %v", err))
		return
	}

	common.RespondWithJSON(w, http.StatusOK, model.LoginResponse{
		Token:       token,
		UserID:      user.UserID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
	})
}
