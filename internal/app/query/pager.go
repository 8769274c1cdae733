package query

import (
	"code_judge_cli/internal/domain/model"
	"context"
	"sync"
	"time"
)

// FetchFunc loads one page of a resource. client.FetchPage curried over a
// resource name is the usual implementation.
type FetchFunc[T any] func(ctx context.Context, q model.PaginationQuery) (*model.PaginationResult[T], error)

// Update is one delivered fetch outcome, tagged with the query that produced
// it so consumers never have to reason about arrival order.
type Update[T any] struct {
	Query  model.PaginationQuery
	Result *model.PaginationResult[T]
	Err    error
}

// Pager keeps a paginated list view consistent with its query parameters.
// Page, limit and sort changes refetch immediately; search input is debounced.
// Only the most recently issued request may reach the updates channel: older
// in-flight requests are cancelled, and a late completion that raced the
// cancellation is dropped by sequence number.
type Pager[T any] struct {
	mu       sync.Mutex
	fetch    FetchFunc[T]
	query    model.PaginationQuery
	debounce time.Duration

	timer         *time.Timer
	pendingSearch string

	seq     uint64
	cancel  context.CancelFunc
	updates chan Update[T]
	stopped bool
}

func NewPager[T any](fetch FetchFunc[T], initial model.PaginationQuery, debounce time.Duration) *Pager[T] {
	return &Pager[T]{
		fetch:    fetch,
		query:    initial,
		debounce: debounce,
		updates:  make(chan Update[T], 16),
	}
}

// Updates delivers fetch outcomes. The channel is closed by Stop; consumers
// must keep draining it while the pager is live.
func (p *Pager[T]) Updates() <-chan Update[T] {
	return p.updates
}

func (p *Pager[T]) Query() model.PaginationQuery {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Refresh re-issues the current query, e.g. after the session token changes.
func (p *Pager[T]) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issueLocked()
}

func (p *Pager[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.Page = page
	p.issueLocked()
}

func (p *Pager[T]) SetLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.Limit = limit
	p.query.Page = 1
	p.issueLocked()
}

func (p *Pager[T]) SetSort(field, order string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.Sort = field
	p.query.Order = order
	p.issueLocked()
}

// SetSearch records the latest search input and arms the debounce timer.
// Rapid calls inside the window collapse into a single fetch carrying the
// final value; no request leaves mid-burst.
func (p *Pager[T]) SetSearch(search string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.pendingSearch = search
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, p.fireSearch)
}

func (p *Pager[T]) fireSearch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.query.Search = p.pendingSearch
	p.query.Page = 1
	p.issueLocked()
}

// issueLocked starts a fetch for the current query. Caller holds p.mu.
func (p *Pager[T]) issueLocked() {
	if p.stopped {
		return
	}
	p.seq++
	seq := p.seq

	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	q := p.query
	go p.run(ctx, seq, q)
}

func (p *Pager[T]) run(ctx context.Context, seq uint64, q model.PaginationQuery) {
	result, err := p.fetch(ctx, q)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || seq != p.seq {
		// A newer query was issued while this one was in flight.
		return
	}
	p.updates <- Update[T]{Query: q, Result: result, Err: err}
}

// Stop cancels any in-flight fetch and pending debounce, then closes the
// updates channel.
func (p *Pager[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
	}
	if p.cancel != nil {
		p.cancel()
	}
	close(p.updates)
}
