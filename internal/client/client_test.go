package client

import (
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/domain/model"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(model.Challenge{ChallengeID: 1})
	}))
	defer server.Close()

	c := New(server.URL, func() string { return "tok-123" })
	if _, err := c.GetChallenge(context.Background(), 1); err != nil {
		t.Fatalf("GetChallenge: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("expected an X-Request-ID header")
	}
}

func TestFetchPageQueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/challenge/pagination" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if q.Get("page") != "2" || q.Get("limit") != "25" || q.Get("sort") != "name" ||
			q.Get("order") != "desc" || q.Get("search") != "two sum" {
			t.Errorf("unexpected query %v", q)
		}
		json.NewEncoder(w).Encode(model.PaginationResult[model.Challenge]{Total: 0, Items: []model.Challenge{}})
	}))
	defer server.Close()

	c := New(server.URL, func() string { return "t" })
	_, err := FetchPage[model.Challenge](context.Background(), c, "challenge", model.PaginationQuery{
		Page: 2, Limit: 25, Sort: "name", Order: "desc", Search: "two sum",
	})
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
}

func TestPaginationInvariant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.PaginationResult[model.User]{
			Total: 42,
			Items: []model.User{{UserID: 1}, {UserID: 2}, {UserID: 3}},
		})
	}))
	defer server.Close()

	c := New(server.URL, func() string { return "t" })
	q := model.PaginationQuery{Page: 1, Limit: 3}
	result, err := FetchPage[model.User](context.Background(), c, "user", q)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(result.Items) > q.Limit {
		t.Errorf("items.length %d exceeds limit %d", len(result.Items), q.Limit)
	}
	if result.Total < len(result.Items) {
		t.Errorf("total %d below items.length %d", result.Total, len(result.Items))
	}
}

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, common.ErrUnauthorized},
		{http.StatusForbidden, common.ErrForbidden},
		{http.StatusNotFound, common.ErrNotFound},
		{http.StatusConflict, common.ErrConflict},
		{http.StatusTeapot, common.ErrBadRequest},
		{http.StatusInternalServerError, common.ErrUnavailable},
	}
	for _, c := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			common.RespondWithError(w, c.status, "boom")
		}))
		cl := New(server.URL, func() string { return "t" })
		_, err := cl.GetChallenge(context.Background(), 1)
		server.Close()
		if !errors.Is(err, c.want) {
			t.Errorf("status %d mapped to %v, want %v", c.status, err, c.want)
		}
	}
}

func TestValidationErrorsSurfacedPerField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation error", []string{
			"testcase #0: input is required and at most 1024 characters",
		})
	}))
	defer server.Close()

	c := New(server.URL, func() string { return "t" })
	_, err := c.CreateChallenge(context.Background(), model.ChallengeCreateRequest{})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Fields) != 1 {
		t.Errorf("expected 1 field error, got %v", ve.Fields)
	}
}

func TestTransportFailureTagged(t *testing.T) {
	// Point at a server that is down.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := New(server.URL, func() string { return "t" })
	_, err := c.GetChallenge(context.Background(), 1)
	if !errors.Is(err, common.ErrUnavailable) {
		t.Errorf("transport failure mapped to %v, want ErrUnavailable", err)
	}
}

func TestMeUsesExplicitToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(model.MeResponse{DisplayName: "alice", Role: model.RoleUser})
	}))
	defer server.Close()

	// The ambient source has no token yet; a candidate token is validated
	// before any session exists.
	c := New(server.URL, func() string { return "" })
	me, err := c.Me(context.Background(), "candidate")
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer candidate" {
		t.Errorf("Authorization = %q, want Bearer candidate", gotAuth)
	}
	if me.DisplayName != "alice" {
		t.Errorf("unexpected body decode: %+v", me)
	}
}
