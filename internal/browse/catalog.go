package browse

import (
	"context"
	"html/template"
	"log"
	"strconv"

	"github.com/ziadkadry99/compatbrowse/internal/model"
	"github.com/ziadkadry99/compatbrowse/internal/pagination"
	"github.com/ziadkadry99/compatbrowse/internal/presenter"
	"github.com/ziadkadry99/compatbrowse/internal/store"
)

// catalog serves the list and detail views of one resource type.
type catalog interface {
	typeKey() string
	plural() string
	list(ctx context.Context, pages int) (*listResult, error)
	detail(ctx context.Context, id string) (*detailResult, error)
	session() liveList
}

type listResult struct {
	Headers []string
	Rows    []Row
	State   pagination.State
}

type detailResult struct {
	View   presenter.View
	Panels []Panel
}

// Row is one record of a list view. Cells are sanitised.
type Row struct {
	ID    string          `json:"id"`
	Href  string          `json:"href"`
	Title string          `json:"title"`
	Cells []template.HTML `json:"cells"`
}

// Panel lists the records a detail page relates to.
type Panel struct {
	Title string
	Note  string
	Items []PanelItem
}

// PanelItem links to one related record.
type PanelItem struct {
	Href string
	Text string
}

type typedCatalog[T model.Record] struct {
	h      *Handler
	repo   *store.Repository[T]
	view   func(ctx context.Context, rec T) presenter.View
	panels func(ctx context.Context, rec T) []Panel
}

func (c *typedCatalog[T]) typeKey() string { return c.repo.Kind().Type }
func (c *typedCatalog[T]) plural() string  { return c.repo.Kind().Plural }

func (c *typedCatalog[T]) list(ctx context.Context, pages int) (*listResult, error) {
	l := pagination.NewList[T](c.repo)
	if err := l.LoadThrough(ctx, pages); err != nil {
		return nil, err
	}
	return &listResult{
		Headers: c.headers(ctx),
		Rows:    c.rows(ctx, l.Records()),
		State:   l.State(),
	}, nil
}

func (c *typedCatalog[T]) detail(ctx context.Context, id string) (*detailResult, error) {
	rec, err := c.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &detailResult{View: c.view(ctx, rec)}
	if c.panels != nil {
		d.Panels = c.panels(ctx, rec)
	}
	return d, nil
}

func (c *typedCatalog[T]) session() liveList {
	return &liveSession[T]{c: c, list: pagination.NewList[T](c.repo)}
}

// headers are the summary labels of an empty record.
func (c *typedCatalog[T]) headers(ctx context.Context) []string {
	var zero T
	fields := c.view(ctx, zero).Summary()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Label
	}
	return out
}

func (c *typedCatalog[T]) rows(ctx context.Context, recs []T) []Row {
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		v := c.view(ctx, rec)
		summary := v.Summary()
		cells := make([]template.HTML, len(summary))
		for i, f := range summary {
			cells[i] = c.h.sanitize.HTML(f.HTML)
		}
		rows = append(rows, Row{
			ID:    rec.RecordID(),
			Href:  c.h.href(c.plural(), rec.RecordID()),
			Title: v.Title(),
			Cells: cells,
		})
	}
	return rows
}

// relatedPanel hydrates a to-many relation. When hydration fails the panel
// still links every id.
func relatedPanel[R model.Record](ctx context.Context, h *Handler, title string, repo *store.Repository[R], rel model.HasMany, view func(R) presenter.View) Panel {
	p := Panel{Title: title + " (" + strconv.Itoa(presenter.RelatedCount(rel)) + ")"}
	if rel.Len() == 0 {
		return p
	}

	recs, err := repo.Related(ctx, rel)
	if err != nil {
		log.Printf("browse: loading %s %v: %v", rel.Type, rel.IDs, err)
		p.Note = "Related records could not be loaded."
		for _, id := range rel.IDs {
			p.Items = append(p.Items, PanelItem{Href: h.href(repo.Kind().Plural, id), Text: "#" + id})
		}
		return p
	}
	for _, rec := range recs {
		p.Items = append(p.Items, PanelItem{
			Href: h.href(repo.Kind().Plural, rec.RecordID()),
			Text: view(rec).Title(),
		})
	}
	return p
}

// ownerPanel hydrates a to-one relation.
func ownerPanel[R model.Record](ctx context.Context, h *Handler, title string, repo *store.Repository[R], rel model.BelongsTo, view func(R) presenter.View) Panel {
	p := Panel{Title: title}
	if !rel.IsSet() {
		return p
	}

	item := PanelItem{Href: h.href(repo.Kind().Plural, rel.ID), Text: "#" + rel.ID}
	rec, ok, err := repo.Owner(ctx, rel)
	switch {
	case err != nil:
		log.Printf("browse: loading %s %s: %v", rel.Type, rel.ID, err)
		p.Note = "The related record could not be loaded."
	case ok:
		item.Text = view(rec).Title()
	}
	p.Items = []PanelItem{item}
	return p
}

// ownerName returns the English name of a version's browser, or "" when it
// cannot be loaded.
func ownerName(ctx context.Context, repo *store.Repository[model.Browser], rel model.BelongsTo) string {
	b, ok, err := repo.Owner(ctx, rel)
	if err != nil {
		log.Printf("browse: loading browser %s: %v", rel.ID, err)
		return ""
	}
	if !ok {
		return ""
	}
	return b.Name.Default()
}

func (h *Handler) buildCatalogs() []catalog {
	browsers := store.NewRepository(h.store, model.BrowserKind)
	versions := store.NewRepository(h.store, model.VersionKind)
	features := store.NewRepository(h.store, model.FeatureKind)
	supports := store.NewRepository(h.store, model.SupportKind)
	specifications := store.NewRepository(h.store, model.SpecificationKind)
	maturities := store.NewRepository(h.store, model.MaturityKind)
	sections := store.NewRepository(h.store, model.SectionKind)

	browserView := func(b model.Browser) presenter.View { return presenter.NewBrowserView(b) }
	featureView := func(f model.Feature) presenter.View { return presenter.NewFeatureView(f) }
	supportView := func(s model.Support) presenter.View { return presenter.NewSupportView(s) }
	specView := func(s model.Specification) presenter.View { return presenter.NewSpecificationView(s) }
	maturityView := func(m model.Maturity) presenter.View { return presenter.NewMaturityView(m) }
	sectionView := func(s model.Section) presenter.View { return presenter.NewSectionView(s) }
	versionOf := func(browserName string) func(model.Version) presenter.View {
		return func(v model.Version) presenter.View { return presenter.NewVersionView(v, browserName) }
	}
	versionView := func(ctx context.Context, v model.Version) presenter.View {
		return presenter.NewVersionView(v, ownerName(ctx, browsers, v.Browser))
	}

	return []catalog{
		&typedCatalog[model.Browser]{
			h: h, repo: browsers,
			view: func(_ context.Context, b model.Browser) presenter.View { return browserView(b) },
			panels: func(ctx context.Context, b model.Browser) []Panel {
				return []Panel{
					relatedPanel(ctx, h, "Versions", versions, b.Versions, versionOf(b.Name.Default())),
				}
			},
		},
		&typedCatalog[model.Version]{
			h: h, repo: versions,
			view: versionView,
			panels: func(ctx context.Context, v model.Version) []Panel {
				return []Panel{
					ownerPanel(ctx, h, "Browser", browsers, v.Browser, browserView),
					relatedPanel(ctx, h, "Supports", supports, v.Supports, supportView),
				}
			},
		},
		&typedCatalog[model.Feature]{
			h: h, repo: features,
			view: func(_ context.Context, f model.Feature) presenter.View { return featureView(f) },
			panels: func(ctx context.Context, f model.Feature) []Panel {
				return []Panel{
					ownerPanel(ctx, h, "Parent", features, f.Parent, featureView),
					relatedPanel(ctx, h, "Children", features, f.Children, featureView),
					relatedPanel(ctx, h, "Supports", supports, f.Supports, supportView),
					relatedPanel(ctx, h, "Sections", sections, f.Sections, sectionView),
				}
			},
		},
		&typedCatalog[model.Support]{
			h: h, repo: supports,
			view: func(_ context.Context, s model.Support) presenter.View { return supportView(s) },
			panels: func(ctx context.Context, s model.Support) []Panel {
				return []Panel{
					ownerPanel(ctx, h, "Version", versions, s.Version, versionOf("")),
					ownerPanel(ctx, h, "Feature", features, s.Feature, featureView),
				}
			},
		},
		&typedCatalog[model.Specification]{
			h: h, repo: specifications,
			view: func(_ context.Context, s model.Specification) presenter.View { return specView(s) },
			panels: func(ctx context.Context, s model.Specification) []Panel {
				return []Panel{
					ownerPanel(ctx, h, "Maturity", maturities, s.Maturity, maturityView),
					relatedPanel(ctx, h, "Sections", sections, s.Sections, sectionView),
				}
			},
		},
		&typedCatalog[model.Maturity]{
			h: h, repo: maturities,
			view: func(_ context.Context, m model.Maturity) presenter.View { return maturityView(m) },
			panels: func(ctx context.Context, m model.Maturity) []Panel {
				return []Panel{
					relatedPanel(ctx, h, "Specifications", specifications, m.Specifications, specView),
				}
			},
		},
		&typedCatalog[model.Section]{
			h: h, repo: sections,
			view: func(_ context.Context, s model.Section) presenter.View { return sectionView(s) },
			panels: func(ctx context.Context, s model.Section) []Panel {
				return []Panel{
					ownerPanel(ctx, h, "Specification", specifications, s.Specification, specView),
					relatedPanel(ctx, h, "Features", features, s.Features, featureView),
				}
			},
		},
	}
}
