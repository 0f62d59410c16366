package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ziadkadry99/compatbrowse/internal/db"
	"github.com/ziadkadry99/compatbrowse/internal/jsonapi"
	"github.com/ziadkadry99/compatbrowse/internal/store"
)

// Source serves a snapshot in the API's document shapes. It implements
// store.Fetcher, answering "<plural>", "<plural>?page=N" and
// "<plural>/<id>".
type Source struct {
	db       *db.DB
	snap     *Snapshot
	pageSize int
	links    map[string]map[string]json.RawMessage // plural -> relation key -> link
}

var _ store.Fetcher = (*Source)(nil)

// OpenSource serves the latest completed snapshot in d.
func OpenSource(ctx context.Context, d *db.DB, pageSize int) (*Source, error) {
	snap, err := Latest(ctx, d)
	if err != nil {
		return nil, err
	}
	return NewSource(ctx, d, snap, pageSize)
}

// NewSource serves the given snapshot, pageSize records per list page.
func NewSource(ctx context.Context, d *db.DB, snap *Snapshot, pageSize int) (*Source, error) {
	if pageSize < 1 {
		pageSize = 10
	}
	s := &Source{
		db:       d,
		snap:     snap,
		pageSize: pageSize,
		links:    make(map[string]map[string]json.RawMessage),
	}

	rows, err := d.QueryContext(ctx, `SELECT key, link FROM relation_links WHERE snapshot_id = ?`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("reading relation links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, link string
		if err := rows.Scan(&key, &link); err != nil {
			return nil, fmt.Errorf("scanning relation link: %w", err)
		}
		plural, _, _ := strings.Cut(key, ".")
		if s.links[plural] == nil {
			s.links[plural] = make(map[string]json.RawMessage)
		}
		s.links[plural][key] = json.RawMessage(link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading relation links: %w", err)
	}
	return s, nil
}

// Snapshot returns the snapshot being served.
func (s *Source) Snapshot() *Snapshot { return s.snap }

// Fetch implements store.Fetcher.
func (s *Source) Fetch(ctx context.Context, path string, query url.Values) (*jsonapi.Document, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	plural := parts[0]
	count, ok := s.snap.Counts[plural]
	if !ok {
		return nil, fmt.Errorf("snapshot %s: %w", path, store.ErrNotFound)
	}

	switch len(parts) {
	case 1:
		return s.page(ctx, plural, count, query.Get("page"))
	case 2:
		id, err := url.PathUnescape(parts[1])
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", path, store.ErrNotFound)
		}
		return s.record(ctx, plural, id)
	default:
		return nil, fmt.Errorf("snapshot %s: %w", path, store.ErrNotFound)
	}
}

func (s *Source) page(ctx context.Context, plural string, count int, pageParam string) (*jsonapi.Document, error) {
	page := 1
	if pageParam != "" {
		n, err := strconv.Atoi(pageParam)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("snapshot %s page %q: %w", plural, pageParam, store.ErrNotFound)
		}
		page = n
	}
	offset := (page - 1) * s.pageSize
	if page > 1 && offset >= count {
		return nil, fmt.Errorf("snapshot %s page %d: %w", plural, page, store.ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT body FROM resources
		WHERE snapshot_id = ? AND type = ?
		ORDER BY position
		LIMIT ? OFFSET ?`, s.snap.ID, plural, s.pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s page %d: %w", plural, page, err)
	}
	defer rows.Close()

	data := make([]jsonapi.Resource, 0, s.pageSize)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", plural, err)
		}
		var r jsonapi.Resource
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, fmt.Errorf("decoding stored %s: %w", plural, err)
		}
		data = append(data, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot %s page %d: %w", plural, page, err)
	}

	info := jsonapi.PageInfo{Count: count}
	if page*s.pageSize < count {
		info.Next = s.pageURL(plural, page+1)
	}
	if page > 1 {
		info.Previous = s.pageURL(plural, page-1)
	}

	return &jsonapi.Document{
		Type:       plural,
		Collection: true,
		Data:       data,
		Links:      s.links[plural],
		Meta:       &jsonapi.Meta{Pagination: map[string]jsonapi.PageInfo{plural: info}},
	}, nil
}

func (s *Source) record(ctx context.Context, plural, id string) (*jsonapi.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM resources WHERE snapshot_id = ? AND type = ? AND id = ?`,
		s.snap.ID, plural, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s/%s: %w", plural, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot %s/%s: %w", plural, id, err)
	}

	var r jsonapi.Resource
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("decoding stored %s %s: %w", plural, id, err)
	}
	return &jsonapi.Document{
		Type:  plural,
		Data:  []jsonapi.Resource{r},
		Links: s.links[plural],
	}, nil
}

// pageURL builds a list URL on the API the snapshot was taken from. Page 1
// carries no page parameter.
func (s *Source) pageURL(plural string, page int) string {
	parts := []string{strings.TrimSuffix(s.snap.Source, "/")}
	if ns := strings.Trim(s.snap.Namespace, "/"); ns != "" {
		parts = append(parts, ns)
	}
	parts = append(parts, plural)
	u := strings.Join(parts, "/")
	if page > 1 {
		u += "?page=" + strconv.Itoa(page)
	}
	return u
}
