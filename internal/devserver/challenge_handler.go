package devserver

import (
	"code_judge_cli/internal/app/policy"
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/devserver/store"
	"code_judge_cli/internal/domain/model"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type ChallengeHandler struct {
	challenges *store.ChallengeStore
}

func validateTestcases(testcases []model.TestcaseModify) []string {
	var fields []string
	for i, tc := range testcases {
		if tc.Action == model.ActionDelete {
			continue
		}
		if tc.Input == "" || len(tc.Input) > 1024 {
			fields = append(fields, fmt.Sprintf("testcase #%d: input is required and at most 1024 characters", i))
		}
		if tc.ExpectedOutput == "" || len(tc.ExpectedOutput) > 1024 {
			fields = append(fields, fmt.Sprintf("testcase #%d: expected_output is required and at most 1024 characters", i))
		}
		if tc.LimitMemory == 0 || tc.LimitTimeMs == 0 {
			fields = append(fields, fmt.Sprintf("testcase #%d: limits must be positive", i))
		}
	}
	return fields
}

func (h *ChallengeHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	role, _ := userRoleFromContext(r.Context())
	if !policy.CanCreateChallenge(role) {
		common.RespondWithError(w, http.StatusForbidden, "Admin or staff access required")
		return
	}

	var req model.ChallengeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if req.Name == "" || req.Description == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Name and description are required")
		return
	}
	if fields := validateTestcases(req.Testcases); len(fields) > 0 {
		common.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation error", fields)
		return
	}

	ch := &model.Challenge{Name: req.Name, Description: req.Description, UserID: userID}
	if err := h.challenges.Create(r.Context(), ch, req.Testcases); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	created, err := h.challenges.FindByID(r.Context(), ch.ChallengeID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, created)
}

func (h *ChallengeHandler) update(w http.ResponseWriter, r *http.Request) {
	role, _ := userRoleFromContext(r.Context())
	if !policy.CanEditChallenge(role) {
		common.RespondWithError(w, http.StatusForbidden, "Admin or staff access required")
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	var req model.ChallengeUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	req.ChallengeID = uint(id)
	if req.Name == "" || req.Description == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Name and description are required")
		return
	}
	if fields := validateTestcases(req.Testcases); len(fields) > 0 {
		common.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation error", fields)
		return
	}

	if err := h.challenges.ApplyBatch(r.Context(), req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge updated"})
}

func (h *ChallengeHandler) delete(w http.ResponseWriter, r *http.Request) {
	role, _ := userRoleFromContext(r.Context())
	if !policy.CanDeleteChallenge(role) {
		common.RespondWithError(w, http.StatusForbidden, "Admin or staff access required")
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}
	if err := h.challenges.Delete(r.Context(), uint(id)); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge deleted"})
}

func (h *ChallengeHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	ch, err := h.challenges.FindByID(r.Context(), uint(id))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, ch)
}

func (h *ChallengeHandler) pagination(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	result, err := h.challenges.Paginate(r.Context(), parsePagination(r), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
