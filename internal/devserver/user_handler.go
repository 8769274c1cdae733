package devserver

import (
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/devserver/store"
	"code_judge_cli/internal/domain/model"
	"encoding/json"
	"net/http"
	"strconv"
)

type UserHandler struct {
	users *store.UserStore
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	common.RespondWithJSON(w, http.StatusOK, model.MeResponse{
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
	})
}

func (h *UserHandler) updateRole(w http.ResponseWriter, r *http.Request) {
	role, _ := userRoleFromContext(r.Context())
	if role != model.RoleAdmin {
		common.RespondWithError(w, http.StatusForbidden, "Admin access required")
		return
	}

	var req model.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	switch req.Role {
	case model.RoleAdmin, model.RoleStaff, model.RoleUser:
	default:
		common.RespondWithError(w, http.StatusBadRequest, "Unknown role: "+req.Role)
		return
	}

	if err := h.users.UpdateRole(r.Context(), req.UserID, req.Role); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Role updated"})
}

func (h *UserHandler) pagination(w http.ResponseWriter, r *http.Request) {
	role, _ := userRoleFromContext(r.Context())
	if role != model.RoleAdmin {
		common.RespondWithError(w, http.StatusForbidden, "Admin access required")
		return
	}

	result, err := h.users.Paginate(r.Context(), parsePagination(r))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

// parsePagination reads the shared list-endpoint query parameters with the
// same defaults and bounds every resource uses.
func parsePagination(r *http.Request) model.PaginationQuery {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	order := q.Get("order")
	if order != model.OrderDesc {
		order = model.OrderAsc
	}

	challengeID, _ := strconv.ParseUint(q.Get("challenge_id"), 10, 64)
	userID, _ := strconv.ParseUint(q.Get("user_id"), 10, 64)

	return model.PaginationQuery{
		Page:        page,
		Limit:       limit,
		Sort:        q.Get("sort"),
		Order:       order,
		Search:      q.Get("search"),
		ChallengeID: uint(challengeID),
		UserID:      uint(userID),
	}
}
