package query

import (
	"code_judge_cli/internal/domain/model"
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func testQuery() model.PaginationQuery {
	return model.PaginationQuery{Page: 1, Limit: 10, Sort: "id", Order: model.OrderAsc}
}

func TestSetSearchDebounceCoalesces(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context, q model.PaginationQuery) (*model.PaginationResult[int], error) {
		atomic.AddInt32(&calls, 1)
		return &model.PaginationResult[int]{Total: 1, Items: []int{1}}, nil
	}

	p := NewPager(fetch, testQuery(), 50*time.Millisecond)
	defer p.Stop()

	// A typing burst inside the window must collapse into one request with
	// the final value.
	p.SetSearch("a")
	p.SetSearch("ab")
	p.SetSearch("abc")

	select {
	case update := <-p.Updates():
		if update.Query.Search != "abc" {
			t.Errorf("expected search %q, got %q", "abc", update.Query.Search)
		}
	case <-time.After(time.Second):
		t.Fatal("no update after debounce window")
	}

	// Give any extra (erroneous) fetches time to land.
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", got)
	}
}

func TestNoFetchBeforeDebounceWindow(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context, q model.PaginationQuery) (*model.PaginationResult[int], error) {
		atomic.AddInt32(&calls, 1)
		return &model.PaginationResult[int]{}, nil
	}

	p := NewPager(fetch, testQuery(), 200*time.Millisecond)
	defer p.Stop()

	p.SetSearch("mid-burst")
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("fetch issued mid-burst: %d calls", got)
	}
}

func TestStaleResultRejected(t *testing.T) {
	q1Release := make(chan struct{})
	q1Started := make(chan struct{})
	fetch := func(ctx context.Context, q model.PaginationQuery) (*model.PaginationResult[int], error) {
		if q.Page == 1 {
			close(q1Started)
			<-q1Release
			return &model.PaginationResult[int]{Total: 1, Items: []int{1}}, nil
		}
		return &model.PaginationResult[int]{Total: 2, Items: []int{2}}, nil
	}

	p := NewPager(fetch, testQuery(), time.Millisecond)
	defer p.Stop()

	p.Refresh() // Q1, slow
	<-q1Started
	p.SetPage(2) // Q2, fast

	var got Update[int]
	select {
	case got = <-p.Updates():
	case <-time.After(time.Second):
		t.Fatal("no update for Q2")
	}
	if got.Query.Page != 2 {
		t.Fatalf("expected Q2's result first, got page %d", got.Query.Page)
	}

	// Let Q1 resolve late: its result must never surface.
	close(q1Release)
	select {
	case late := <-p.Updates():
		t.Errorf("stale Q1 result applied: %+v", late)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSupersededFetchIsCancelled(t *testing.T) {
	q1Ctx := make(chan context.Context, 1)
	q1Started := make(chan struct{})
	fetch := func(ctx context.Context, q model.PaginationQuery) (*model.PaginationResult[int], error) {
		if q.Page == 1 {
			q1Ctx <- ctx
			close(q1Started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &model.PaginationResult[int]{}, nil
	}

	p := NewPager(fetch, testQuery(), time.Millisecond)
	defer p.Stop()

	p.Refresh()
	<-q1Started
	p.SetPage(2)

	ctx := <-q1Ctx
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("superseded fetch context was not cancelled")
	}
}

func TestErrorsDeliveredAsUpdates(t *testing.T) {
	fetch := func(ctx context.Context, q model.PaginationQuery) (*model.PaginationResult[int], error) {
		return nil, context.DeadlineExceeded
	}

	p := NewPager(fetch, testQuery(), time.Millisecond)
	defer p.Stop()

	p.Refresh()
	select {
	case update := <-p.Updates():
		if update.Err == nil {
			t.Error("expected tagged error update")
		}
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}

func TestSearchResetsToFirstPage(t *testing.T) {
	fetch := func(ctx context.Context, q model.PaginationQuery) (*model.PaginationResult[int], error) {
		return &model.PaginationResult[int]{}, nil
	}

	p := NewPager(fetch, model.PaginationQuery{Page: 4, Limit: 10}, time.Millisecond)
	defer p.Stop()

	p.SetSearch("needle")
	select {
	case update := <-p.Updates():
		if update.Query.Page != 1 {
			t.Errorf("search kept page %d, want 1", update.Query.Page)
		}
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}
