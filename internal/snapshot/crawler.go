package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/compatbrowse/internal/db"
	"github.com/ziadkadry99/compatbrowse/internal/jsonapi"
	"github.com/ziadkadry99/compatbrowse/internal/progress"
	"github.com/ziadkadry99/compatbrowse/internal/store"
)

// maxCrawlPages stops a crawl whose next links never run out.
const maxCrawlPages = 10000

// ErrTooManyPages fails a crawl that reaches maxCrawlPages with a next link
// still set.
var ErrTooManyPages = errors.New("too many pages")

// Options configures a crawl.
type Options struct {
	Source      string // API base URL, recorded with the snapshot
	Namespace   string
	Concurrency int // resource types crawled at once
	Reporter    progress.Reporter
}

// Crawler walks every page of each resource type and stores the records.
type Crawler struct {
	fetcher  store.Fetcher
	db       *db.DB
	opts     Options
	maxPages int
}

// NewCrawler creates a crawler reading through f and writing to d.
func NewCrawler(f store.Fetcher, d *db.DB, opts Options) *Crawler {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.Nop{}
	}
	return &Crawler{fetcher: f, db: d, opts: opts, maxPages: maxCrawlPages}
}

// Run crawls the given plural type names into a new snapshot. A failed crawl
// is kept as a failed run and never served.
func (c *Crawler) Run(ctx context.Context, plurals []string) (*Snapshot, error) {
	snap := &Snapshot{
		ID:        uuid.NewString(),
		Source:    c.opts.Source,
		Namespace: c.opts.Namespace,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
		Counts:    make(map[string]int, len(plurals)),
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, source, namespace, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.Source, snap.Namespace, string(snap.Status), formatTime(snap.StartedAt))
	if err != nil {
		return nil, fmt.Errorf("creating snapshot: %w", err)
	}

	c.opts.Reporter.Start(len(plurals), "Crawling "+c.opts.Source)

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for _, plural := range plurals {
		g.Go(func() error {
			n, err := c.crawlType(gctx, snap.ID, plural)
			if err != nil {
				return fmt.Errorf("crawling %s: %w", plural, err)
			}
			mu.Lock()
			done++
			step := done
			snap.Counts[plural] = n
			mu.Unlock()
			c.opts.Reporter.Update(step, fmt.Sprintf("%s: %d records", plural, n))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ferr := c.finish(context.WithoutCancel(ctx), snap, err); ferr != nil {
			return nil, fmt.Errorf("%w (and marking the run failed: %v)", err, ferr)
		}
		c.opts.Reporter.Finish("Snapshot failed: " + err.Error())
		return nil, err
	}

	if err := c.finish(ctx, snap, nil); err != nil {
		return nil, err
	}
	c.opts.Reporter.Finish(fmt.Sprintf("Snapshot %s: %d records", snap.ID, snap.Total()))
	return snap, nil
}

// crawlType follows a type's next links from page 1 and returns how many
// records were stored.
func (c *Crawler) crawlType(ctx context.Context, id, plural string) (int, error) {
	position := 0
	for page := 1; ; page++ {
		var query url.Values
		if page > 1 {
			query = url.Values{"page": {strconv.Itoa(page)}}
		}
		doc, err := c.fetcher.Fetch(ctx, plural, query)
		if err != nil {
			return 0, err
		}
		if !doc.Collection || doc.Type != plural {
			return 0, fmt.Errorf("page %d: %w: expected a %s collection", page, jsonapi.ErrMalformedDocument, plural)
		}

		if err := c.storePage(ctx, id, position, doc); err != nil {
			return 0, fmt.Errorf("page %d: %w", page, err)
		}
		position += len(doc.Data)

		if doc.Meta == nil || len(doc.Data) == 0 {
			break
		}
		info, ok := doc.Meta.PaginationFor(plural)
		if !ok || info.Next == "" {
			break
		}
		if page >= c.maxPages {
			return 0, fmt.Errorf("%w: next link still set after page %d", ErrTooManyPages, page)
		}
	}

	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resources WHERE snapshot_id = ? AND type = ?`, id, plural).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO collections (snapshot_id, type, count) VALUES (?, ?, ?)`, id, plural, count)
	if err != nil {
		return 0, fmt.Errorf("recording collection: %w", err)
	}
	return count, nil
}

// storePage writes one page of records and the relation links that came
// with it. Records already stored from an earlier page keep their position.
func (c *Crawler) storePage(ctx context.Context, id string, position int, doc *jsonapi.Document) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	insert, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO resources (snapshot_id, type, id, position, body) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()

	for i, r := range doc.Data {
		body, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", doc.Type, r.ID, err)
		}
		if _, err := insert.ExecContext(ctx, id, doc.Type, r.ID, position+i, string(body)); err != nil {
			return fmt.Errorf("storing %s %s: %w", doc.Type, r.ID, err)
		}
	}

	for key, link := range doc.Links {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO relation_links (snapshot_id, key, link) VALUES (?, ?, ?)`,
			id, key, string(link))
		if err != nil {
			return fmt.Errorf("storing link %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// finish marks the run completed, or failed when cause is set.
func (c *Crawler) finish(ctx context.Context, snap *Snapshot, cause error) error {
	snap.FinishedAt = time.Now().UTC()
	snap.Status = StatusCompleted
	if cause != nil {
		snap.Status = StatusFailed
		snap.Error = cause.Error()
	}
	_, err := c.db.ExecContext(ctx,
		`UPDATE snapshots SET status = ?, finished_at = ?, error = ? WHERE id = ?`,
		string(snap.Status), formatTime(snap.FinishedAt), snap.Error, snap.ID)
	if err != nil {
		return fmt.Errorf("finishing snapshot %s: %w", snap.ID, err)
	}
	return nil
}
