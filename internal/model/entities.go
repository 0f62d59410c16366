package model

import (
	"fmt"

	"github.com/ziadkadry99/compatbrowse/internal/jsonapi"
)

// Type keys, as produced by singularising the primary document key.
const (
	TypeBrowser       = "browser"
	TypeVersion       = "version"
	TypeFeature       = "feature"
	TypeSupport       = "support"
	TypeMaturity      = "maturity"
	TypeSpecification = "specification"
	TypeSection       = "section"
)

// Browser is a web browser, e.g. Firefox.
type Browser struct {
	ID       string
	Slug     string
	Name     Translation
	Note     Translation
	Versions HasMany
}

// RecordID implements Record.
func (b Browser) RecordID() string { return b.ID }

// Version is one release of a browser.
type Version struct {
	ID              string
	Browser         BelongsTo
	Version         string
	ReleaseDay      string
	RetirementDay   string
	Status          string
	ReleaseNotesURI Translation
	Note            Translation
	Order           int
	Supports        HasMany
}

// RecordID implements Record.
func (v Version) RecordID() string { return v.ID }

// Feature is a web platform feature, possibly nested under a parent.
type Feature struct {
	ID           string
	Slug         string
	MDNPath      string
	Experimental bool
	Standardized bool
	Stable       bool
	Obsolete     bool
	Name         Translation
	Parent       BelongsTo
	Children     HasMany
	Supports     HasMany
	Sections     HasMany
}

// RecordID implements Record.
func (f Feature) RecordID() string { return f.ID }

// Support records the support level of a feature in a browser version.
type Support struct {
	ID                 string
	Support            string
	Prefix             string
	PrefixMandatory    bool
	AlternateName      string
	AlternateMandatory bool
	RequiresConfig     string
	DefaultConfig      string
	Protected          bool
	Note               Translation
	Footnote           Translation
	Version            BelongsTo
	Feature            BelongsTo
}

// RecordID implements Record.
func (s Support) RecordID() string { return s.ID }

// Maturity is a specification status such as "Recommendation".
type Maturity struct {
	ID             string
	Slug           string
	Name           Translation
	Specifications HasMany
}

// RecordID implements Record.
func (m Maturity) RecordID() string { return m.ID }

// Specification is a standards document.
type Specification struct {
	ID       string
	Slug     string
	MDNKey   string
	Name     Translation
	URI      Translation
	Maturity BelongsTo
	Sections HasMany
}

// RecordID implements Record.
func (s Specification) RecordID() string { return s.ID }

// Section is a part of a specification that defines features.
type Section struct {
	ID            string
	Number        Translation
	Name          Translation
	Subpath       Translation
	Note          Translation
	Specification BelongsTo
	Features      HasMany
}

// RecordID implements Record.
func (s Section) RecordID() string { return s.ID }

// Record is implemented by every entity.
type Record interface {
	RecordID() string
}

// decoder reads attributes from a resource and keeps the first error.
type decoder struct {
	r   jsonapi.Resource
	err error
}

func (d *decoder) attr(name string, v any) {
	if d.err != nil {
		return
	}
	d.err = d.r.Attr(name, v)
}

func (d *decoder) belongsTo(name, typeKey string) BelongsTo {
	return BelongsTo{Type: typeKey, ID: d.r.LinkID(name)}
}

func (d *decoder) hasMany(name, typeKey string) HasMany {
	return HasMany{Type: typeKey, IDs: d.r.LinkIDs(name)}
}

func (d *decoder) done(typeKey string) error {
	if d.err != nil {
		return fmt.Errorf("decoding %s %s: %w", typeKey, d.r.ID, d.err)
	}
	return nil
}

// DecodeBrowser builds a Browser from a resource.
func DecodeBrowser(r jsonapi.Resource) (Browser, error) {
	d := &decoder{r: r}
	b := Browser{ID: r.ID}
	d.attr("slug", &b.Slug)
	d.attr("name", &b.Name)
	d.attr("note", &b.Note)
	b.Versions = d.hasMany("versions", TypeVersion)
	return b, d.done(TypeBrowser)
}

// DecodeVersion builds a Version from a resource.
func DecodeVersion(r jsonapi.Resource) (Version, error) {
	d := &decoder{r: r}
	v := Version{ID: r.ID}
	d.attr("version", &v.Version)
	d.attr("release_day", &v.ReleaseDay)
	d.attr("retirement_day", &v.RetirementDay)
	d.attr("status", &v.Status)
	d.attr("release_notes_uri", &v.ReleaseNotesURI)
	d.attr("note", &v.Note)
	d.attr("order", &v.Order)
	v.Browser = d.belongsTo("browser", TypeBrowser)
	v.Supports = d.hasMany("supports", TypeSupport)
	return v, d.done(TypeVersion)
}

// DecodeFeature builds a Feature from a resource.
func DecodeFeature(r jsonapi.Resource) (Feature, error) {
	d := &decoder{r: r}
	f := Feature{ID: r.ID}
	d.attr("slug", &f.Slug)
	d.attr("mdn_path", &f.MDNPath)
	d.attr("experimental", &f.Experimental)
	d.attr("standardized", &f.Standardized)
	d.attr("stable", &f.Stable)
	d.attr("obsolete", &f.Obsolete)
	d.attr("name", &f.Name)
	f.Parent = d.belongsTo("parent", TypeFeature)
	f.Children = d.hasMany("children", TypeFeature)
	f.Supports = d.hasMany("supports", TypeSupport)
	f.Sections = d.hasMany("sections", TypeSection)
	return f, d.done(TypeFeature)
}

// DecodeSupport builds a Support from a resource.
func DecodeSupport(r jsonapi.Resource) (Support, error) {
	d := &decoder{r: r}
	s := Support{ID: r.ID}
	d.attr("support", &s.Support)
	d.attr("prefix", &s.Prefix)
	d.attr("prefix_mandatory", &s.PrefixMandatory)
	d.attr("alternate_name", &s.AlternateName)
	d.attr("alternate_mandatory", &s.AlternateMandatory)
	d.attr("requires_config", &s.RequiresConfig)
	d.attr("default_config", &s.DefaultConfig)
	d.attr("protected", &s.Protected)
	d.attr("note", &s.Note)
	d.attr("footnote", &s.Footnote)
	s.Version = d.belongsTo("version", TypeVersion)
	s.Feature = d.belongsTo("feature", TypeFeature)
	return s, d.done(TypeSupport)
}

// DecodeMaturity builds a Maturity from a resource.
func DecodeMaturity(r jsonapi.Resource) (Maturity, error) {
	d := &decoder{r: r}
	m := Maturity{ID: r.ID}
	d.attr("slug", &m.Slug)
	d.attr("name", &m.Name)
	m.Specifications = d.hasMany("specifications", TypeSpecification)
	return m, d.done(TypeMaturity)
}

// DecodeSpecification builds a Specification from a resource.
func DecodeSpecification(r jsonapi.Resource) (Specification, error) {
	d := &decoder{r: r}
	s := Specification{ID: r.ID}
	d.attr("slug", &s.Slug)
	d.attr("mdn_key", &s.MDNKey)
	d.attr("name", &s.Name)
	d.attr("uri", &s.URI)
	s.Maturity = d.belongsTo("maturity", TypeMaturity)
	s.Sections = d.hasMany("sections", TypeSection)
	return s, d.done(TypeSpecification)
}

// DecodeSection builds a Section from a resource.
func DecodeSection(r jsonapi.Resource) (Section, error) {
	d := &decoder{r: r}
	s := Section{ID: r.ID}
	d.attr("number", &s.Number)
	d.attr("name", &s.Name)
	d.attr("subpath", &s.Subpath)
	d.attr("note", &s.Note)
	s.Specification = d.belongsTo("specification", TypeSpecification)
	s.Features = d.hasMany("features", TypeFeature)
	return s, d.done(TypeSection)
}
