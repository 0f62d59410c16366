// Package store is the client-side data layer: it fetches JSON-API documents,
// caches the records they carry and resolves relations through the relation
// route registry.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ziadkadry99/compatbrowse/internal/jsonapi"
)

// Config holds data layer settings.
type Config struct {
	Namespace string // API namespace stripped from relation routes
	CacheSize int    // maximum number of cached records
	Fanout    int    // concurrent fetches when hydrating a relation

	// FetchTimeout bounds a shared fetch. It runs apart from any one
	// caller's context, so this is what stops it.
	FetchTimeout time.Duration
}

// QueryResult is one page of a collection.
type QueryResult struct {
	Records    []jsonapi.Resource
	Pagination *jsonapi.PageInfo
}

// Store caches records by type and id.
type Store struct {
	fetcher   Fetcher
	extractor *jsonapi.Extractor
	records   *lru.Cache[string, jsonapi.Resource]
	fanout    int
	timeout   time.Duration

	group singleflight.Group
}

// New creates a store. routes is shared with anything else that needs to
// resolve relations.
func New(fetcher Fetcher, routes *jsonapi.RouteRegistry, cfg Config) (*Store, error) {
	if fetcher == nil {
		return nil, errors.New("store: fetcher is required")
	}
	if routes == nil {
		routes = jsonapi.NewRouteRegistry()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 4096
	}
	fanout := cfg.Fanout
	if fanout <= 0 {
		fanout = 4
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cache, err := lru.New[string, jsonapi.Resource](size)
	if err != nil {
		return nil, fmt.Errorf("creating record cache: %w", err)
	}

	return &Store{
		fetcher:   fetcher,
		extractor: jsonapi.NewExtractor(cfg.Namespace, routes),
		records:   cache,
		fanout:    fanout,
		timeout:   timeout,
	}, nil
}

// Routes returns the relation route registry.
func (s *Store) Routes() *jsonapi.RouteRegistry { return s.extractor.Routes() }

// Plural returns the plural path name for a type key.
func (s *Store) Plural(typeKey string) string { return s.extractor.Plural(typeKey) }

// FindAll loads the first page of a type.
func (s *Store) FindAll(ctx context.Context, typeKey string) (*QueryResult, error) {
	return s.FindQuery(ctx, typeKey, 1)
}

// FindQuery loads one page of a type. Page 1 is requested without a page
// parameter, like the first load of a list.
func (s *Store) FindQuery(ctx context.Context, typeKey string, page int) (*QueryResult, error) {
	plural := s.Plural(typeKey)
	var query url.Values
	if page > 1 {
		query = url.Values{"page": {strconv.Itoa(page)}}
	}

	doc, err := s.fetch(ctx, plural, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s page %d: %w", plural, page, err)
	}
	if !doc.Collection {
		return nil, fmt.Errorf("querying %s: %w: expected a collection", plural, jsonapi.ErrMalformedDocument)
	}

	result := &QueryResult{Records: doc.Data}
	if doc.Meta != nil {
		if info, ok := doc.Meta.PaginationFor(plural); ok {
			result.Pagination = &info
		}
	}
	return result, nil
}

// Find returns a record from the cache, fetching it when it is not cached.
func (s *Store) Find(ctx context.Context, typeKey, id string) (jsonapi.Resource, error) {
	if r, ok := s.Peek(typeKey, id); ok {
		return r, nil
	}

	plural := s.Plural(typeKey)
	doc, err := s.fetch(ctx, plural+"/"+url.PathEscape(id), nil)
	if err != nil {
		return jsonapi.Resource{}, fmt.Errorf("finding %s %s: %w", typeKey, id, err)
	}
	for _, r := range doc.Data {
		if r.ID == id {
			return r, nil
		}
	}
	return jsonapi.Resource{}, fmt.Errorf("finding %s %s: %w", typeKey, id, ErrNotFound)
}

// FindMany resolves related records by relation key, in the order of ids.
// Cached records are returned without a request; the others are fetched
// through the relation route registered for relationKey.
func (s *Store) FindMany(ctx context.Context, relationKey string, ids []string) ([]jsonapi.Resource, error) {
	out := make([]jsonapi.Resource, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)

	for i, id := range ids {
		if r, ok := s.Peek(relationKey, id); ok {
			out[i] = r
			continue
		}
		g.Go(func() error {
			path, err := s.Routes().Expand(relationKey, id)
			if err != nil {
				return err
			}
			doc, err := s.fetch(gctx, path, nil)
			if err != nil {
				return fmt.Errorf("resolving %s %s: %w", relationKey, id, err)
			}
			for _, r := range doc.Data {
				if r.ID == id {
					out[i] = r
					return nil
				}
			}
			return fmt.Errorf("resolving %s %s: %w", relationKey, id, ErrNotFound)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Peek returns a cached record without fetching.
func (s *Store) Peek(typeKey, id string) (jsonapi.Resource, bool) {
	return s.records.Get(cacheKey(typeKey, id))
}

// Len returns the number of cached records.
func (s *Store) Len() int { return s.records.Len() }

// fetch collapses identical in-flight requests and loads the response into
// the cache. The shared request is not tied to the caller that started it:
// each caller stops waiting when its own ctx is done.
func (s *Store) fetch(ctx context.Context, path string, query url.Values) (*jsonapi.Document, error) {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}

	ch := s.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		doc, err := s.fetcher.Fetch(fctx, path, query)
		if err != nil {
			return nil, err
		}
		s.push(doc)
		return doc, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*jsonapi.Document), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// push registers relation routes and caches every record.
func (s *Store) push(doc *jsonapi.Document) {
	if len(doc.Links) > 0 {
		if _, err := s.extractor.ExtractLinks(doc.Links); err != nil {
			log.Printf("store: %s links: %v", doc.Type, err)
		}
	}

	typeKey := s.extractor.TypeKey(doc.Type)
	for _, r := range doc.Data {
		s.records.Add(cacheKey(typeKey, r.ID), r)
	}
	for linkedType, linked := range doc.Linked {
		linkedKey := s.extractor.TypeKey(linkedType)
		for _, r := range linked {
			s.records.Add(cacheKey(linkedKey, r.ID), r)
		}
	}
}

func cacheKey(typeKey, id string) string {
	return typeKey + "/" + id
}
