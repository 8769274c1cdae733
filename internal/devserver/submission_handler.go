package devserver

import (
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/devserver/store"
	"code_judge_cli/internal/domain/model"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	challenges  *store.ChallengeStore
	submissions *store.SubmissionStore
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req model.SubmissionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if req.Language == "" || req.Code == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Language and code are required")
		return
	}

	ch, err := h.challenges.FindByID(r.Context(), req.ChallengeID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	sub := grade(ch, userID, req)
	if err := h.submissions.Create(r.Context(), sub); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}

// grade is the stand-in for the judge pipeline: a testcase passes iff the
// submitted source contains its expected output. Deterministic and obviously
// not a sandbox, which is all a local fixture needs.
func grade(ch *model.Challenge, userID uint, req model.SubmissionCreateRequest) *model.Submission {
	sub := &model.Submission{
		ChallengeID: ch.ChallengeID,
		UserID:      userID,
		Language:    req.Language,
		SourceCode:  req.Code,
		Status:      model.SubmissionStatusCorrect,
	}
	for _, tc := range ch.Testcases {
		row := model.SubmissionTestcase{
			ChallengeTestcaseID: tc.TestcaseID,
			Status:              model.SubmissionStatusCorrect,
			Output:              tc.ExpectedOutput,
		}
		if !strings.Contains(req.Code, tc.ExpectedOutput) {
			row.Status = model.SubmissionStatusWrong
			row.Output = ""
			row.Note = "output mismatch"
			sub.Status = model.SubmissionStatusWrong
		}
		sub.SubmissionTestcases = append(sub.SubmissionTestcases, row)
	}
	return sub
}

func (h *SubmissionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	sub, err := h.submissions.FindByID(r.Context(), uint(id))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) pagination(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	role, _ := userRoleFromContext(r.Context())

	q := parsePagination(r)
	// Plain users only ever see their own submissions.
	if role == model.RoleUser {
		q.UserID = userID
	}

	result, err := h.submissions.Paginate(r.Context(), q)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
