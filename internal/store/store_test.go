package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/compatbrowse/internal/jsonapi"
	"github.com/ziadkadry99/compatbrowse/internal/model"
)

// backend serves canned documents keyed by request URI and counts hits.
type backend struct {
	mu   sync.Mutex
	docs map[string]string
	hits map[string]int
}

func newBackend(t *testing.T, docs map[string]string) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{docs: docs, hits: make(map[string]int)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.URL.RequestURI()]++
		body, ok := b.docs[r.URL.RequestURI()]
		b.mu.Unlock()

		if r.Header.Get("Accept") != MediaType {
			http.Error(w, "bad accept header", http.StatusNotAcceptable)
			return
		}
		if body == "boom" {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", MediaType)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *backend) hitCount(uri string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[uri]
}

func newTestStore(t *testing.T, srv *httptest.Server, cacheSize int) *Store {
	t.Helper()
	client, err := NewClient(srv.URL, jsonapi.DefaultNamespace, 5*time.Second)
	require.NoError(t, err)
	s, err := New(client, jsonapi.NewRouteRegistry(), Config{Namespace: jsonapi.DefaultNamespace, CacheSize: cacheSize})
	require.NoError(t, err)
	return s
}

const browsersPage1 = `{
	"browsers": [
		{"id": "1", "slug": "firefox", "name": {"en": "Firefox"}, "note": null, "links": {"versions": ["10", "11"]}},
		{"id": "2", "slug": "chrome", "name": {"en": "Chrome"}, "note": null, "links": {"versions": []}}
	],
	"links": {"browsers.versions": {"type": "versions", "href": "http://testserver/api/v1/versions/{browsers.versions}"}},
	"meta": {"pagination": {"browsers": {"count": 3, "previous": null, "next": "http://testserver/api/v1/browsers?page=2"}}}
}`

const browsersPage2 = `{
	"browsers": [
		{"id": "3", "slug": "safari", "name": {"en": "Safari"}, "note": null, "links": {"versions": []}}
	],
	"links": {"browsers.versions": {"type": "versions", "href": "http://testserver/api/v1/versions/{browsers.versions}"}},
	"meta": {"pagination": {"browsers": {"count": 3, "previous": "http://testserver/api/v1/browsers", "next": null}}}
}`

const version10 = `{
	"versions": {"id": "10", "version": "34.0", "links": {"browser": "1", "supports": []}},
	"links": {"versions.browser": {"type": "browsers", "href": "http://testserver/api/v1/browsers/{versions.browser}"}}
}`

const version11 = `{
	"versions": {"id": "11", "version": "35.0", "links": {"browser": "1", "supports": []}},
	"links": {"versions.browser": {"type": "browsers", "href": "http://testserver/api/v1/browsers/{versions.browser}"}}
}`

func TestFindQueryPages(t *testing.T) {
	_, srv := newBackend(t, map[string]string{
		"/api/v1/browsers":        browsersPage1,
		"/api/v1/browsers?page=2": browsersPage2,
	})
	s := newTestStore(t, srv, 0)
	ctx := t.Context()

	first, err := s.FindAll(ctx, model.TypeBrowser)
	require.NoError(t, err)
	require.Len(t, first.Records, 2)
	require.NotNil(t, first.Pagination)
	assert.Equal(t, 3, first.Pagination.Count)
	assert.NotEmpty(t, first.Pagination.Next)

	route, ok := s.Routes().Lookup("version")
	require.True(t, ok)
	assert.Equal(t, "versions/{browsers.versions}", route)

	second, err := s.FindQuery(ctx, model.TypeBrowser, 2)
	require.NoError(t, err)
	require.Len(t, second.Records, 1)
	assert.Empty(t, second.Pagination.Next)

	_, ok = s.Peek(model.TypeBrowser, "3")
	assert.True(t, ok)
	assert.Equal(t, 3, s.Len())
}

func TestFindUsesCache(t *testing.T) {
	b, srv := newBackend(t, map[string]string{
		"/api/v1/browsers": browsersPage1,
	})
	s := newTestStore(t, srv, 0)
	ctx := t.Context()

	_, err := s.FindAll(ctx, model.TypeBrowser)
	require.NoError(t, err)

	r, err := s.Find(ctx, model.TypeBrowser, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", r.ID)
	assert.Equal(t, 0, b.hitCount("/api/v1/browsers/1"))
}

func TestFindManyResolvesThroughRoutes(t *testing.T) {
	b, srv := newBackend(t, map[string]string{
		"/api/v1/browsers":    browsersPage1,
		"/api/v1/versions/10": version10,
		"/api/v1/versions/11": version11,
	})
	s := newTestStore(t, srv, 0)
	ctx := t.Context()

	_, err := s.FindAll(ctx, model.TypeBrowser)
	require.NoError(t, err)

	related, err := s.FindMany(ctx, "version", []string{"11", "10"})
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, "11", related[0].ID)
	assert.Equal(t, "10", related[1].ID)

	_, err = s.FindMany(ctx, "version", []string{"10"})
	require.NoError(t, err)
	assert.Equal(t, 1, b.hitCount("/api/v1/versions/10"), "second lookup is served from cache")

	_, ok := s.Routes().Lookup("browser")
	assert.True(t, ok, "single resource responses register their links too")
}

func TestFindManyUnresolvedRoute(t *testing.T) {
	_, srv := newBackend(t, map[string]string{})
	s := newTestStore(t, srv, 0)

	_, err := s.FindMany(t.Context(), "section", []string{"1"})
	assert.ErrorIs(t, err, jsonapi.ErrUnresolvedRoute)
}

func TestFetchErrors(t *testing.T) {
	_, srv := newBackend(t, map[string]string{
		"/api/v1/maturities": "boom",
	})
	s := newTestStore(t, srv, 0)
	ctx := t.Context()

	_, err := s.Find(ctx, model.TypeBrowser, "99")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindAll(ctx, model.TypeMaturity)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.True(t, strings.HasSuffix(apiErr.URL, "/api/v1/maturities"))
}

func TestCacheEviction(t *testing.T) {
	_, srv := newBackend(t, map[string]string{
		"/api/v1/browsers":        browsersPage1,
		"/api/v1/browsers?page=2": browsersPage2,
	})
	s := newTestStore(t, srv, 2)
	ctx := t.Context()

	_, err := s.FindAll(ctx, model.TypeBrowser)
	require.NoError(t, err)
	_, err = s.FindQuery(ctx, model.TypeBrowser, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	_, ok := s.Peek(model.TypeBrowser, "1")
	assert.False(t, ok, "least recently used record is evicted")
}

func TestRepository(t *testing.T) {
	_, srv := newBackend(t, map[string]string{
		"/api/v1/browsers":    browsersPage1,
		"/api/v1/versions/10": version10,
		"/api/v1/versions/11": version11,
	})
	s := newTestStore(t, srv, 0)
	ctx := t.Context()

	browsers := NewRepository(s, model.BrowserKind)
	versions := NewRepository(s, model.VersionKind)

	page, err := browsers.Query(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "Firefox", page.Records[0].Name.Default())

	vs, err := versions.Related(ctx, page.Records[0].Versions)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "34.0", vs[0].Version)

	owner, ok, err := browsers.Owner(ctx, vs[0].Browser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "firefox", owner.Slug)

	_, err = browsers.Related(ctx, page.Records[0].Versions)
	assert.Error(t, err, "relation type must match the repository")
}

func TestClientURL(t *testing.T) {
	c, err := NewClient("http://example.com/compat/", "/api/v1/", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/compat/api/v1/browsers/1", c.URL("browsers/1", nil))

	_, err = NewClient("not a url", "api/v1", 0)
	assert.Error(t, err)
}

// slowFetcher serves browsersPage1 once release is closed.
type slowFetcher struct {
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func newSlowFetcher() *slowFetcher {
	return &slowFetcher{started: make(chan struct{}), release: make(chan struct{})}
}

func (f *slowFetcher) Fetch(ctx context.Context, _ string, _ url.Values) (*jsonapi.Document, error) {
	f.mu.Lock()
	f.calls++
	if f.calls == 1 {
		close(f.started)
	}
	f.mu.Unlock()

	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return jsonapi.Parse([]byte(browsersPage1))
}

func (f *slowFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// joinedContext closes joined the first time its Done channel is asked for,
// which fetch does only after it has joined the shared request.
type joinedContext struct {
	context.Context
	once   sync.Once
	joined chan struct{}
}

func (c *joinedContext) Done() <-chan struct{} {
	c.once.Do(func() { close(c.joined) })
	return c.Context.Done()
}

func TestSharedFetchOutlivesCancelledCaller(t *testing.T) {
	f := newSlowFetcher()
	s, err := New(f, nil, Config{Namespace: jsonapi.DefaultNamespace})
	require.NoError(t, err)

	ctxA, cancelA := context.WithCancel(t.Context())
	errA := make(chan error, 1)
	go func() {
		_, err := s.FindAll(ctxA, model.TypeBrowser)
		errA <- err
	}()
	<-f.started

	ctxB := &joinedContext{Context: context.Background(), joined: make(chan struct{})}
	type outcome struct {
		res *QueryResult
		err error
	}
	doneB := make(chan outcome, 1)
	go func() {
		res, err := s.FindAll(ctxB, model.TypeBrowser)
		doneB <- outcome{res, err}
	}()
	<-ctxB.joined

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(f.release)
	select {
	case got := <-doneB:
		require.NoError(t, got.err)
		assert.Len(t, got.res.Records, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, 1, f.callCount())
}

func TestSharedFetchTimeout(t *testing.T) {
	f := newSlowFetcher()
	s, err := New(f, nil, Config{Namespace: jsonapi.DefaultNamespace, FetchTimeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = s.FindAll(context.Background(), model.TypeBrowser)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
