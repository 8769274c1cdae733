package model

type TestcaseAction string

const (
	// ActionNone marks a server-loaded testcase the user has not touched yet.
	ActionNone   TestcaseAction = ""
	ActionCreate TestcaseAction = "create"
	ActionUpdate TestcaseAction = "update"
	ActionDelete TestcaseAction = "delete"
)

type Challenge struct {
	ChallengeID      uint                `json:"challenge_id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	UserID           uint                `json:"user_id"`
	User             *User               `json:"user,omitempty"`
	Testcases        []ChallengeTestcase `json:"testcases"`
	SubmissionStatus string              `json:"submission_status,omitempty"`
}

type ChallengeTestcase struct {
	TestcaseID     uint   `json:"testcase_id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	LimitMemory    uint   `json:"limit_memory"`
	LimitTimeMs    uint   `json:"limit_time_ms"`
	ChallengeID    uint   `json:"challenge_id"`
}

// TestcaseModify is one row of a batch mutation: the testcase values plus the
// intent the server should apply to them.
type TestcaseModify struct {
	TestcaseID     uint           `json:"testcase_id"`
	Input          string         `json:"input"`
	ExpectedOutput string         `json:"expected_output"`
	LimitMemory    uint           `json:"limit_memory"`
	LimitTimeMs    uint           `json:"limit_time_ms"`
	Action         TestcaseAction `json:"action"`
}

type ChallengeCreateRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Testcases   []TestcaseModify `json:"testcases"`
}

type ChallengeUpdateRequest struct {
	ChallengeID uint             `json:"challenge_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Testcases   []TestcaseModify `json:"testcases"`
}
