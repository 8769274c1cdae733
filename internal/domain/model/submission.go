package model

const (
	SubmissionStatusPending = "PENDING"
	SubmissionStatusCorrect = "CORRECT"
	SubmissionStatusWrong   = "WRONG"
)

type Submission struct {
	SubmissionID        uint                 `json:"submission_id"`
	ChallengeID         uint                 `json:"challenge_id"`
	Challenge           *Challenge           `json:"challenge,omitempty"`
	UserID              uint                 `json:"user_id"`
	User                *User                `json:"user,omitempty"`
	Language            string               `json:"language"`
	SourceCode          string               `json:"source_code"`
	Status              string               `json:"status"`
	SubmissionTestcases []SubmissionTestcase `json:"submission_testcases,omitempty"`
}

type SubmissionTestcase struct {
	SubmissionTestcaseID uint               `json:"submission_testcase_id"`
	Status               string             `json:"status"`
	Output               string             `json:"output"`
	SubmissionID         uint               `json:"submission_id"`
	ChallengeTestcaseID  uint               `json:"challenge_testcase_id"`
	ChallengeTestcase    *ChallengeTestcase `json:"challenge_testcase,omitempty"`
	Note                 string             `json:"note,omitempty"`
}

type SubmissionCreateRequest struct {
	ChallengeID uint   `json:"challenge_id"`
	Language    string `json:"language"`
	Code        string `json:"code"`
}
