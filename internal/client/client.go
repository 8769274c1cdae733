package client

import (
	"bytes"
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/domain/model"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// TokenSource supplies the current bearer token, or "" when no session exists.
// The session store is the usual implementation; the client never caches the
// value across calls.
type TokenSource func() string

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

func New(baseURL string, token TokenSource) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		token:   token,
	}
}

// do issues one request and decodes the response into out (when out is
// non-nil). Every failure comes back tagged with one of the common sentinels;
// do never panics and never returns a bare transport error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %v: %w", method, path, err, common.ErrUnavailable)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return decodeError(res)
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("client: decode response: %w", err)
		}
	}
	return nil
}

// decodeError turns a non-2xx response into a tagged error. A body carrying
// structured field errors becomes a ValidationError so callers can surface
// them per field.
func decodeError(res *http.Response) error {
	var body common.ErrorResponse
	_ = json.NewDecoder(res.Body).Decode(&body) // body may be empty or non-JSON

	if len(body.Errors) > 0 {
		return &common.ValidationError{Message: body.Message, Fields: body.Errors}
	}

	tag := common.ErrorFromHTTPStatus(res.StatusCode)
	if body.Message != "" {
		return fmt.Errorf("%s: %w", body.Message, tag)
	}
	return fmt.Errorf("unexpected status %d: %w", res.StatusCode, tag)
}

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	out := &model.LoginResponse{}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.RegisterResponse, error) {
	out := &model.RegisterResponse{}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, "", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Me validates an explicit candidate token. The session store calls this
// before committing a persisted token, so it cannot go through the ambient
// TokenSource.
func (c *Client) Me(ctx context.Context, token string) (*model.MeResponse, error) {
	out := &model.MeResponse{}
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, userID uint, role string) error {
	req := model.UpdateRoleRequest{UserID: userID, Role: role}
	return c.do(ctx, http.MethodPut, "/user/update/role", nil, c.token(), req, nil)
}

func (c *Client) GetChallenge(ctx context.Context, id uint) (*model.Challenge, error) {
	out := &model.Challenge{}
	path := "/challenge/get/" + strconv.FormatUint(uint64(id), 10)
	if err := c.do(ctx, http.MethodGet, path, nil, c.token(), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateChallenge(ctx context.Context, req model.ChallengeCreateRequest) (*model.Challenge, error) {
	out := &model.Challenge{}
	if err := c.do(ctx, http.MethodPost, "/challenge/create", nil, c.token(), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateChallenge(ctx context.Context, req model.ChallengeUpdateRequest) error {
	path := "/challenge/update/" + strconv.FormatUint(uint64(req.ChallengeID), 10)
	return c.do(ctx, http.MethodPut, path, nil, c.token(), req, nil)
}

func (c *Client) DeleteChallenge(ctx context.Context, id uint) error {
	path := "/challenge/delete/" + strconv.FormatUint(uint64(id), 10)
	return c.do(ctx, http.MethodDelete, path, nil, c.token(), nil, nil)
}

func (c *Client) Submit(ctx context.Context, req model.SubmissionCreateRequest) (*model.Submission, error) {
	out := &model.Submission{}
	if err := c.do(ctx, http.MethodPost, "/submission/submit", nil, c.token(), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSubmission(ctx context.Context, id uint) (*model.Submission, error) {
	out := &model.Submission{}
	path := "/submission/get/" + strconv.FormatUint(uint64(id), 10)
	if err := c.do(ctx, http.MethodGet, path, nil, c.token(), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchPage fetches one page of a paginated resource ("challenge", "user",
// "submission"). A package function rather than a method because methods
// cannot carry type parameters.
func FetchPage[T any](ctx context.Context, c *Client, resource string, q model.PaginationQuery) (*model.PaginationResult[T], error) {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))
	values.Set("sort", q.Sort)
	values.Set("order", q.Order)
	values.Set("search", q.Search)
	if q.ChallengeID != 0 {
		values.Set("challenge_id", strconv.FormatUint(uint64(q.ChallengeID), 10))
	}
	if q.UserID != 0 {
		values.Set("user_id", strconv.FormatUint(uint64(q.UserID), 10))
	}

	out := &model.PaginationResult[T]{}
	if err := c.do(ctx, http.MethodGet, "/"+resource+"/pagination", values, c.token(), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}
