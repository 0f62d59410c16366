// Package pagination holds the incremental "load more" state of a list view.
package pagination

import (
	"context"
	"errors"
	"sync"

	"github.com/ziadkadry99/compatbrowse/internal/jsonapi"
	"github.com/ziadkadry99/compatbrowse/internal/model"
	"github.com/ziadkadry99/compatbrowse/internal/store"
)

// ErrNothingToLoad is reported by callers that asked for more records when
// the list is complete.
var ErrNothingToLoad = errors.New("no more records to load")

// Source loads one page of a typed collection. store.Repository implements it.
type Source[T model.Record] interface {
	Query(ctx context.Context, page int) (store.Page[T], error)
}

// State is a snapshot of a list's pagination state.
type State struct {
	CurrentPage int               `json:"current_page"`
	Pagination  *jsonapi.PageInfo `json:"pagination,omitempty"`
	LoadingMore bool              `json:"loading_more"`
	Loaded      int               `json:"loaded"`
}

// CanLoadMore reports whether the server has more records than are loaded.
func (s State) CanLoadMore() bool {
	return s.Pagination != nil && s.Pagination.Next != "" && s.Pagination.Count > s.Loaded
}

// Request is a page fetch started by LoadMore.
type Request struct {
	page  int
	done  chan struct{}
	err   error
	added int
}

func newRequest(page int) *Request {
	return &Request{page: page, done: make(chan struct{})}
}

// Page returns the page number being fetched.
func (r *Request) Page() int { return r.page }

// Done is closed when the fetch has finished.
func (r *Request) Done() <-chan struct{} { return r.done }

// Wait blocks until the fetch finishes or ctx is done.
func (r *Request) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the fetch error once Done is closed, nil before.
func (r *Request) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Added returns how many new records the fetch merged into the list.
func (r *Request) Added() int {
	select {
	case <-r.done:
		return r.added
	default:
		return 0
	}
}

// List accumulates the records of a paginated collection.
type List[T model.Record] struct {
	source Source[T]

	mu          sync.Mutex
	records     []T
	seen        map[string]struct{}
	currentPage int
	pagination  *jsonapi.PageInfo
	loadingMore bool
	inflight    *Request
	lastErr     error
}

// NewList returns an empty list on page 1.
func NewList[T model.Record](source Source[T]) *List[T] {
	return &List[T]{
		source:      source,
		seen:        make(map[string]struct{}),
		currentPage: 1,
	}
}

// Load replaces the list contents with the first page.
func (l *List[T]) Load(ctx context.Context) error {
	page, err := l.source.Query(ctx, 1)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
	l.seen = make(map[string]struct{})
	l.merge(page.Records)
	l.currentPage = 1
	l.lastErr = nil
	l.updatePagination(page.Pagination)
	return nil
}

// LoadThrough loads pages 1..n, stopping early when the server has no more.
func (l *List[T]) LoadThrough(ctx context.Context, n int) error {
	if err := l.Load(ctx); err != nil {
		return err
	}
	for l.CurrentPage() < n {
		req := l.LoadMore(ctx)
		if req == nil {
			return nil
		}
		if err := req.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// updatePagination stores the pagination the server reported with the
// page just loaded and clears the loading flag.
func (l *List[T]) updatePagination(info *jsonapi.PageInfo) {
	if info != nil {
		cp := *info
		info = &cp
	}
	l.pagination = info
	l.loadingMore = false
}

// CanLoadMore reports whether another page can be requested.
func (l *List[T]) CanLoadMore() bool {
	return l.State().CanLoadMore()
}

// LoadMore requests the next page in the background. It returns nil when
// there is nothing more to load, and the in-flight request when one is
// already running.
func (l *List[T]) LoadMore(ctx context.Context) *Request {
	l.mu.Lock()
	if l.inflight != nil {
		req := l.inflight
		l.mu.Unlock()
		return req
	}
	if !l.stateLocked().CanLoadMore() {
		l.mu.Unlock()
		return nil
	}
	l.currentPage++
	l.loadingMore = true
	req := newRequest(l.currentPage)
	l.inflight = req
	l.mu.Unlock()

	go l.fetch(ctx, req)
	return req
}

func (l *List[T]) fetch(ctx context.Context, req *Request) {
	page, err := l.source.Query(ctx, req.page)

	l.mu.Lock()
	if err != nil {
		if l.currentPage == req.page {
			l.currentPage--
		}
		l.loadingMore = false
		l.lastErr = err
		req.err = err
	} else {
		req.added = l.merge(page.Records)
		l.lastErr = nil
		l.updatePagination(page.Pagination)
	}
	l.inflight = nil
	l.mu.Unlock()

	close(req.done)
}

// merge appends records not seen before and returns how many were added.
func (l *List[T]) merge(records []T) int {
	added := 0
	for _, r := range records {
		id := r.RecordID()
		if _, dup := l.seen[id]; dup {
			continue
		}
		l.seen[id] = struct{}{}
		l.records = append(l.records, r)
		added++
	}
	return added
}

// ResetLoadMore moves the list back to page 1 without dropping records.
func (l *List[T]) ResetLoadMore() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentPage = 1
}

// Records returns a copy of the loaded records in arrival order.
func (l *List[T]) Records() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.records))
	copy(out, l.records)
	return out
}

// Since returns the records loaded after the first n.
func (l *List[T]) Since(n int) []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n >= len(l.records) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	out := make([]T, len(l.records)-n)
	copy(out, l.records[n:])
	return out
}

// CurrentPage returns the last page requested.
func (l *List[T]) CurrentPage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentPage
}

// LoadingMore reports whether a LoadMore fetch is in flight.
func (l *List[T]) LoadingMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadingMore
}

// LastError returns the error of the last failed fetch, cleared by the next
// successful one.
func (l *List[T]) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// State returns a snapshot of the pagination state.
func (l *List[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stateLocked()
}

func (l *List[T]) stateLocked() State {
	s := State{
		CurrentPage: l.currentPage,
		LoadingMore: l.loadingMore,
		Loaded:      len(l.records),
	}
	if l.pagination != nil {
		cp := *l.pagination
		s.Pagination = &cp
	}
	return s
}
