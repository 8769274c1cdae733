package devserver

import (
	"code_judge_cli/internal/client"
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/common/security"
	"code_judge_cli/internal/devserver/store"
	"code_judge_cli/internal/domain/model"
	"code_judge_cli/internal/platform/config"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

// env is one devserver instance plus a client whose bearer token the test
// controls, mirroring how the CLI wires the two together.
type env struct {
	api   *client.Client
	token string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	config.AppConfig = &config.Config{
		JWTKey: []byte("test-secret"),
		JWTExp: time.Hour,
	}
	security.InitJWT()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	router := NewRouter(store.NewUserStore(db), store.NewChallengeStore(db), store.NewSubmissionStore(db))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	e := &env{}
	e.api = client.New(server.URL, func() string { return e.token })
	return e
}

// registerAndLogin creates an account and switches the env's token to it.
func (e *env) registerAndLogin(t *testing.T, name, email string) *model.LoginResponse {
	t.Helper()
	ctx := context.Background()

	_, err := e.api.Register(ctx, model.RegisterRequest{
		Email: email, Password: "secret123", DisplayName: name,
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	res, err := e.api.Login(ctx, model.LoginRequest{Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("login %s: %v", name, err)
	}
	e.token = res.Token
	return res
}

func TestFirstRegisteredUserIsAdmin(t *testing.T) {
	e := newEnv(t)
	first := e.registerAndLogin(t, "alice", "alice@example.com")
	if first.Role != model.RoleAdmin {
		t.Errorf("first user role = %q, want ADMIN", first.Role)
	}

	second := e.registerAndLogin(t, "bob", "bob@example.com")
	if second.Role != model.RoleUser {
		t.Errorf("second user role = %q, want USER", second.Role)
	}
}

func TestMeValidatesToken(t *testing.T) {
	e := newEnv(t)
	login := e.registerAndLogin(t, "alice", "alice@example.com")

	me, err := e.api.Me(context.Background(), login.Token)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.DisplayName != "alice" || me.Role != model.RoleAdmin {
		t.Errorf("unexpected identity: %+v", me)
	}

	if _, err := e.api.Me(context.Background(), "garbage"); !errors.Is(err, common.ErrUnauthorized) {
		t.Errorf("bad token mapped to %v, want ErrUnauthorized", err)
	}
}

func TestChallengeBatchLifecycle(t *testing.T) {
	e := newEnv(t)
	e.registerAndLogin(t, "alice", "alice@example.com")
	ctx := context.Background()

	created, err := e.api.CreateChallenge(ctx, model.ChallengeCreateRequest{
		Name:        "Sum",
		Description: "Add two numbers",
		Testcases: []model.TestcaseModify{
			{Input: "1 2", ExpectedOutput: "3", LimitMemory: 1024, LimitTimeMs: 500, Action: model.ActionCreate},
			{Input: "2 3", ExpectedOutput: "5", LimitMemory: 1024, LimitTimeMs: 500, Action: model.ActionCreate},
		},
	})
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	if len(created.Testcases) != 2 {
		t.Fatalf("expected 2 testcases on created challenge, got %d", len(created.Testcases))
	}

	// One batch carrying all three intents at once.
	err = e.api.UpdateChallenge(ctx, model.ChallengeUpdateRequest{
		ChallengeID: created.ChallengeID,
		Name:        "Sum v2",
		Description: "Add two integers",
		Testcases: []model.TestcaseModify{
			{TestcaseID: created.Testcases[0].TestcaseID, Input: "10 20", ExpectedOutput: "30",
				LimitMemory: 2048, LimitTimeMs: 700, Action: model.ActionUpdate},
			{TestcaseID: created.Testcases[1].TestcaseID, Action: model.ActionDelete},
			{Input: "5 5", ExpectedOutput: "10", LimitMemory: 1024, LimitTimeMs: 500, Action: model.ActionCreate},
		},
	})
	if err != nil {
		t.Fatalf("UpdateChallenge: %v", err)
	}

	got, err := e.api.GetChallenge(ctx, created.ChallengeID)
	if err != nil {
		t.Fatalf("GetChallenge: %v", err)
	}
	if got.Name != "Sum v2" {
		t.Errorf("name = %q, want Sum v2", got.Name)
	}
	if len(got.Testcases) != 2 {
		t.Fatalf("expected 2 testcases after batch, got %d", len(got.Testcases))
	}
	if got.Testcases[0].Input != "10 20" || got.Testcases[0].ExpectedOutput != "30" {
		t.Errorf("updated testcase wrong: %+v", got.Testcases[0])
	}
	if got.Testcases[1].Input != "5 5" {
		t.Errorf("created testcase wrong: %+v", got.Testcases[1])
	}

	if err := e.api.DeleteChallenge(ctx, created.ChallengeID); err != nil {
		t.Fatalf("DeleteChallenge: %v", err)
	}
	if _, err := e.api.GetChallenge(ctx, created.ChallengeID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("deleted challenge fetch mapped to %v, want ErrNotFound", err)
	}
}

func TestChallengeValidationErrors(t *testing.T) {
	e := newEnv(t)
	e.registerAndLogin(t, "alice", "alice@example.com")

	_, err := e.api.CreateChallenge(context.Background(), model.ChallengeCreateRequest{
		Name:        "Broken",
		Description: "Missing testcase fields",
		Testcases: []model.TestcaseModify{
			{Input: "", ExpectedOutput: "", LimitMemory: 0, LimitTimeMs: 0, Action: model.ActionCreate},
		},
	})
	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Fields) == 0 {
		t.Error("expected per-field errors in validation response")
	}
}

func TestRoleGates(t *testing.T) {
	e := newEnv(t)
	admin := e.registerAndLogin(t, "alice", "alice@example.com")
	user := e.registerAndLogin(t, "bob", "bob@example.com")
	ctx := context.Background()

	// A plain user may neither author challenges nor see the user list.
	_, err := e.api.CreateChallenge(ctx, model.ChallengeCreateRequest{Name: "x", Description: "y"})
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("user create mapped to %v, want ErrForbidden", err)
	}
	_, err = client.FetchPage[model.User](ctx, e.api, "user", model.PaginationQuery{Page: 1, Limit: 10})
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("user listing mapped to %v, want ErrForbidden", err)
	}
	if err := e.api.UpdateUserRole(ctx, admin.UserID, model.RoleUser); !errors.Is(err, common.ErrForbidden) {
		t.Errorf("user role change mapped to %v, want ErrForbidden", err)
	}

	// Promoted to STAFF, bob gains authoring but not user management.
	e.token = admin.Token
	if err := e.api.UpdateUserRole(ctx, user.UserID, model.RoleStaff); err != nil {
		t.Fatalf("promote to staff: %v", err)
	}
	staff, err := e.api.Login(ctx, model.LoginRequest{Email: "bob@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("re-login: %v", err)
	}
	e.token = staff.Token

	if _, err := e.api.CreateChallenge(ctx, model.ChallengeCreateRequest{Name: "x", Description: "y"}); err != nil {
		t.Errorf("staff create failed: %v", err)
	}
	if err := e.api.UpdateUserRole(ctx, user.UserID, model.RoleAdmin); !errors.Is(err, common.ErrForbidden) {
		t.Errorf("staff role change mapped to %v, want ErrForbidden", err)
	}
}

func TestSubmissionGrading(t *testing.T) {
	e := newEnv(t)
	e.registerAndLogin(t, "alice", "alice@example.com")
	ctx := context.Background()

	created, err := e.api.CreateChallenge(ctx, model.ChallengeCreateRequest{
		Name:        "Echo",
		Description: "Print the answer",
		Testcases: []model.TestcaseModify{
			{Input: "x", ExpectedOutput: "42", LimitMemory: 1024, LimitTimeMs: 500, Action: model.ActionCreate},
		},
	})
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}

	correct, err := e.api.Submit(ctx, model.SubmissionCreateRequest{
		ChallengeID: created.ChallengeID, Language: "python", Code: `print("42")`,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if correct.Status != model.SubmissionStatusCorrect {
		t.Errorf("status = %q, want CORRECT", correct.Status)
	}

	wrong, err := e.api.Submit(ctx, model.SubmissionCreateRequest{
		ChallengeID: created.ChallengeID, Language: "python", Code: `print("nope")`,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if wrong.Status != model.SubmissionStatusWrong {
		t.Errorf("status = %q, want WRONG", wrong.Status)
	}

	fetched, err := e.api.GetSubmission(ctx, wrong.SubmissionID)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if len(fetched.SubmissionTestcases) != 1 {
		t.Fatalf("expected 1 testcase row, got %d", len(fetched.SubmissionTestcases))
	}
	if fetched.SubmissionTestcases[0].Status != model.SubmissionStatusWrong {
		t.Errorf("testcase status = %q, want WRONG", fetched.SubmissionTestcases[0].Status)
	}
}

func TestPaginationContract(t *testing.T) {
	e := newEnv(t)
	e.registerAndLogin(t, "alice", "alice@example.com")
	ctx := context.Background()

	for _, name := range []string{"Two Sum", "Three Sum", "Binary Search", "Graph Walk", "Sum Tree"} {
		_, err := e.api.CreateChallenge(ctx, model.ChallengeCreateRequest{
			Name: name, Description: "d",
			Testcases: []model.TestcaseModify{
				{Input: "i", ExpectedOutput: "o", LimitMemory: 1024, LimitTimeMs: 500, Action: model.ActionCreate},
			},
		})
		if err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
	}

	q := model.PaginationQuery{Page: 1, Limit: 2, Sort: "name", Order: model.OrderAsc, Search: "Sum"}
	result, err := client.FetchPage[model.Challenge](ctx, e.api, "challenge", q)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(result.Items) > q.Limit {
		t.Errorf("items.length %d exceeds limit %d", len(result.Items), q.Limit)
	}
	if result.Total != 3 {
		t.Errorf("total = %d, want 3 matches for %q", result.Total, q.Search)
	}

	// Second page carries the remainder; total stays the filtered count.
	q.Page = 2
	rest, err := client.FetchPage[model.Challenge](ctx, e.api, "challenge", q)
	if err != nil {
		t.Fatalf("FetchPage page 2: %v", err)
	}
	if len(rest.Items) != 1 || rest.Total != 3 {
		t.Errorf("page 2: items=%d total=%d, want 1/3", len(rest.Items), rest.Total)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	e := newEnv(t)
	e.registerAndLogin(t, "alice", "alice@example.com")
	e.token = ""

	_, err := client.FetchPage[model.Challenge](context.Background(), e.api, "challenge", model.PaginationQuery{Page: 1, Limit: 10})
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Errorf("anonymous list mapped to %v, want ErrUnauthorized", err)
	}
}
