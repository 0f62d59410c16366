// Package browse serves the HTML list and detail views of the compatibility
// catalog.
package browse

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/inflect"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/compatbrowse/internal/pagination"
	"github.com/ziadkadry99/compatbrowse/internal/presenter"
	"github.com/ziadkadry99/compatbrowse/internal/store"
)

// maxPages caps the ?page=N parameter of list views.
const maxPages = 50

// Config holds browse settings.
type Config struct {
	RootURL string // path prefix the handler is mounted under, e.g. "/browse"
}

// Handler serves the browse UI.
type Handler struct {
	store    *store.Store
	root     string
	tmpl     *template.Template
	sanitize *sanitizer
	upgrader websocket.Upgrader

	catalogs map[string]catalog // keyed by plural
	order    []catalog
}

// New creates the browse handler on top of s.
func New(s *store.Store, cfg Config) (*Handler, error) {
	san := newSanitizer()
	tmpl, err := parseTemplates(san)
	if err != nil {
		return nil, fmt.Errorf("parsing browse templates: %w", err)
	}

	h := &Handler{
		store:    s,
		root:     strings.TrimSuffix(cfg.RootURL, "/"),
		tmpl:     tmpl,
		sanitize: san,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		catalogs: make(map[string]catalog),
	}
	for _, c := range h.buildCatalogs() {
		h.catalogs[c.plural()] = c
		h.order = append(h.order, c)
	}
	return h, nil
}

// RegisterRoutes mounts the browse routes onto r. Links are generated under
// the configured root URL, so r should be mounted there.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/ws/{plural}", h.handleLive)
	r.Get("/{plural}", h.handleList)
	r.Get("/{plural}/{id:[0-9]+}", h.handleDetail)
}

// navItem is one entry of the navigation bar.
type navItem struct {
	Label  string
	Href   string
	Active bool
}

// base is shared by every page.
type base struct {
	Title string
	Root  string
	Nav   []navItem
}

type indexEntry struct {
	Label     string
	Href      string
	CountText string
	Err       bool
}

type indexPage struct {
	base
	Entries []indexEntry
}

type listPage struct {
	base
	Headers  []string
	Rows     []Row
	State    pagination.State
	NextPage int
	LiveURL  string
}

type detailPage struct {
	base
	ID       string
	Label    string
	ListHref string
	Fields   []presenter.Field
	Panels   []Panel
}

type errorPage struct {
	base
	Message string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries := make([]indexEntry, len(h.order))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(4)
	for i, c := range h.order {
		entries[i] = indexEntry{Label: label(c.plural()), Href: h.href(c.plural())}
		g.Go(func() error {
			res, err := h.store.FindAll(ctx, c.typeKey())
			if err != nil {
				log.Printf("browse: counting %s: %v", c.plural(), err)
				entries[i].Err = true
				return nil
			}
			count := len(res.Records)
			if res.Pagination != nil {
				count = res.Pagination.Count
			}
			entries[i].CountText = countText(count, c.plural())
			return nil
		})
	}
	// Failed counts are marked on their entry, so the group never errors.
	_ = g.Wait()

	h.render(w, http.StatusOK, "index", indexPage{
		base:    h.base("Browse", ""),
		Entries: entries,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	c, ok := h.catalogs[chi.URLParam(r, "plural")]
	if !ok {
		h.notFound(w, "No such resource type.")
		return
	}

	pages := parsePage(r.URL.Query().Get("page"))
	res, err := c.list(r.Context(), pages)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, http.StatusOK, "list", listPage{
		base:     h.base(label(c.plural()), c.plural()),
		Headers:  res.Headers,
		Rows:     res.Rows,
		State:    res.State,
		NextPage: res.State.CurrentPage + 1,
		LiveURL:  h.href("ws", c.plural()),
	})
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	c, ok := h.catalogs[chi.URLParam(r, "plural")]
	if !ok {
		h.notFound(w, "No such resource type.")
		return
	}

	id := chi.URLParam(r, "id")
	d, err := c.detail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, http.StatusOK, "detail", detailPage{
		base:     h.base(d.View.Title(), c.plural()),
		ID:       id,
		Label:    label(c.plural()),
		ListHref: h.href(c.plural()),
		Fields:   d.View.Details(),
		Panels:   d.Panels,
	})
}

// fail maps data layer errors to a status page. Nothing is written once the
// client has gone away.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		return
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.notFound(w, "The record does not exist.")
	default:
		log.Printf("browse: %s: %v", r.URL.Path, err)
		h.render(w, http.StatusBadGateway, "error", errorPage{
			base:    h.base("Backend error", ""),
			Message: "The compatibility API could not be reached or returned an error.",
		})
	}
}

func (h *Handler) notFound(w http.ResponseWriter, msg string) {
	h.render(w, http.StatusNotFound, "error", errorPage{
		base:    h.base("Not found", ""),
		Message: msg,
	})
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("browse: rendering %s: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (h *Handler) base(title, active string) base {
	nav := make([]navItem, 0, len(h.order))
	for _, c := range h.order {
		nav = append(nav, navItem{
			Label:  label(c.plural()),
			Href:   h.href(c.plural()),
			Active: c.plural() == active,
		})
	}
	return base{Title: title, Root: h.root, Nav: nav}
}

// href builds a path under the root URL.
func (h *Handler) href(parts ...string) string {
	return h.root + "/" + strings.Join(parts, "/")
}

// parsePage reads ?page=N, defaulting to 1 and capping at maxPages.
func parsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return min(n, maxPages)
}

// label turns a plural path name into a heading.
func label(plural string) string {
	return inflect.Capitalize(plural)
}

// countText renders a count of a type from its plural name.
func countText(count int, plural string) string {
	return presenter.CountText(count, label(inflect.Singularize(plural)), label(plural))
}
