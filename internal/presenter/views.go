package presenter

import (
	"github.com/ziadkadry99/compatbrowse/internal/model"
)

// Field is one labelled HTML fragment of a view.
type Field struct {
	Label string
	HTML  string
}

// View is the display form of one record. Views are built once from an
// immutable record, so every derived value is computed up front.
type View interface {
	RecordID() string
	// Title is plain text naming the record.
	Title() string
	// Summary holds the list columns.
	Summary() []Field
	// Details holds every field shown on the detail page.
	Details() []Field
}

// BrowserView presents a browser.
type BrowserView struct {
	model.Browser
	NameArray        []LangValue
	NameDefaultHTML  string
	NameListHTML     string
	NoteArray        []LangValue
	NoteDefaultHTML  string
	NoteListHTML     string
	VersionCount     int
	VersionCountText string
}

// NewBrowserView builds the view of b.
func NewBrowserView(b model.Browser) *BrowserView {
	v := &BrowserView{Browser: b}
	v.NameArray = TranslationArray(b.Name)
	v.NameDefaultHTML = TranslationDefaultHTML(b.Name)
	v.NameListHTML = TranslationListHTML(v.NameArray)
	v.NoteArray = TranslationArray(b.Note)
	v.NoteDefaultHTML = TranslationDefaultHTML(b.Note)
	v.NoteListHTML = TranslationListHTML(v.NoteArray)
	v.VersionCount = RelatedCount(b.Versions)
	v.VersionCountText = CountText(v.VersionCount, "Version")
	return v
}

func (v *BrowserView) Title() string { return textOr(v.Name.Default(), v.Slug) }

func (v *BrowserView) Summary() []Field {
	return []Field{
		{"Slug", v.Slug},
		{"Name", v.NameDefaultHTML},
		{"Versions", v.VersionCountText},
	}
}

func (v *BrowserView) Details() []Field {
	return []Field{
		{"Slug", v.Slug},
		{"Name", v.NameListHTML},
		{"Note", v.NoteListHTML},
		{"Versions", v.VersionCountText},
	}
}

// VersionView presents a browser version.
type VersionView struct {
	model.Version
	BrowserName                string
	VersionHTML                string
	FullVersionHTML            string
	ReleaseDayHTML             string
	RetirementDayHTML          string
	FeatureCount               int
	FeatureCountText           string
	ReleaseNotesURIArray       []LangValue
	ReleaseNotesURIDefaultHTML string
	ReleaseNotesURIListHTML    string
	NoteArray                  []LangValue
	NoteDefaultHTML            string
	NoteListHTML               string
}

// NewVersionView builds the view of v. browserName is the English name of
// the owning browser, empty when it is not loaded.
func NewVersionView(ver model.Version, browserName string) *VersionView {
	v := &VersionView{Version: ver, BrowserName: browserName}
	v.VersionHTML = VersionHTML(ver.Version)
	v.FullVersionHTML = FullVersionHTML(browserName, ver.Version)
	v.ReleaseDayHTML = OptionalHTML(ver.ReleaseDay)
	v.RetirementDayHTML = OptionalHTML(ver.RetirementDay)
	v.FeatureCount = RelatedCount(ver.Supports)
	v.FeatureCountText = CountText(v.FeatureCount, "Feature")
	v.ReleaseNotesURIArray = TranslationArray(ver.ReleaseNotesURI)
	v.ReleaseNotesURIDefaultHTML = TranslationDefaultHTML(ver.ReleaseNotesURI)
	v.ReleaseNotesURIListHTML = TranslationListHTML(v.ReleaseNotesURIArray)
	v.NoteArray = TranslationArray(ver.Note)
	v.NoteDefaultHTML = TranslationDefaultHTML(ver.Note)
	v.NoteListHTML = TranslationListHTML(v.NoteArray)
	return v
}

func (v *VersionView) Title() string {
	return textOr(joinNonEmpty(v.BrowserName, v.Version.Version), "Version "+v.ID)
}

func (v *VersionView) Summary() []Field {
	return []Field{
		{"Version", v.FullVersionHTML},
		{"Status", OptionalHTML(v.Status)},
		{"Release day", v.ReleaseDayHTML},
		{"Features", v.FeatureCountText},
	}
}

func (v *VersionView) Details() []Field {
	return []Field{
		{"Version", v.VersionHTML},
		{"Status", OptionalHTML(v.Status)},
		{"Release day", v.ReleaseDayHTML},
		{"Retirement day", v.RetirementDayHTML},
		{"Release notes", v.ReleaseNotesURIListHTML},
		{"Note", v.NoteListHTML},
		{"Features", v.FeatureCountText},
	}
}

// FeatureView presents a feature.
type FeatureView struct {
	model.Feature
	FlagsHTML        string
	MDNLinkHTML      string
	NameArray        []LangValue
	NameDefaultHTML  string
	NameListHTML     string
	VersionCount     int
	VersionCountText string
	ChildCountText   string
}

// NewFeatureView builds the view of f.
func NewFeatureView(f model.Feature) *FeatureView {
	v := &FeatureView{Feature: f}
	v.FlagsHTML = FlagsHTML(f)
	v.MDNLinkHTML = MDNLinkHTML(f.MDNPath)
	v.NameArray = TranslationArray(f.Name)
	v.NameDefaultHTML = TranslationDefaultHTML(f.Name)
	v.NameListHTML = TranslationListHTML(v.NameArray)
	v.VersionCount = RelatedCount(f.Supports)
	v.VersionCountText = CountText(v.VersionCount, "Version")
	v.ChildCountText = CountText(RelatedCount(f.Children), "Child", "Children")
	return v
}

func (v *FeatureView) Title() string { return textOr(v.Name.Default(), v.Slug) }

func (v *FeatureView) Summary() []Field {
	return []Field{
		{"Slug", v.Slug},
		{"Name", v.NameDefaultHTML},
		{"Flags", v.FlagsHTML},
		{"Versions", v.VersionCountText},
	}
}

func (v *FeatureView) Details() []Field {
	return []Field{
		{"Slug", v.Slug},
		{"Name", v.NameListHTML},
		{"MDN", v.MDNLinkHTML},
		{"Flags", v.FlagsHTML},
		{"Children", v.ChildCountText},
		{"Versions", v.VersionCountText},
	}
}

// SupportView presents the support of a feature in a browser version.
type SupportView struct {
	model.Support
	PrefixHTML          string
	AlternateNameHTML   string
	RequiredConfigHTML  string
	NoteArray           []LangValue
	NoteDefaultHTML     string
	NoteListHTML        string
	FootnoteArray       []LangValue
	FootnoteDefaultHTML string
	FootnoteListHTML    string
}

// NewSupportView builds the view of s.
func NewSupportView(s model.Support) *SupportView {
	v := &SupportView{Support: s}
	v.PrefixHTML = PrefixHTML(s.Prefix, s.PrefixMandatory)
	v.AlternateNameHTML = AlternateNameHTML(s.AlternateName, s.AlternateMandatory)
	v.RequiredConfigHTML = RequiredConfigHTML(s.RequiresConfig, s.DefaultConfig)
	v.NoteArray = TranslationArray(s.Note)
	v.NoteDefaultHTML = TranslationDefaultHTML(s.Note)
	v.NoteListHTML = TranslationListHTML(v.NoteArray)
	v.FootnoteArray = TranslationArray(s.Footnote)
	v.FootnoteDefaultHTML = TranslationDefaultHTML(s.Footnote)
	v.FootnoteListHTML = TranslationListHTML(v.FootnoteArray)
	return v
}

func (v *SupportView) Title() string { return "Support " + v.ID }

func (v *SupportView) Summary() []Field {
	return []Field{
		{"Support", OptionalHTML(v.Support.Support)},
		{"Prefix", v.PrefixHTML},
		{"Alternate name", v.AlternateNameHTML},
		{"Config", v.RequiredConfigHTML},
	}
}

func (v *SupportView) Details() []Field {
	protected := "no"
	if v.Protected {
		protected = "yes"
	}
	return []Field{
		{"Support", OptionalHTML(v.Support.Support)},
		{"Prefix", v.PrefixHTML},
		{"Alternate name", v.AlternateNameHTML},
		{"Requires config", v.RequiredConfigHTML},
		{"Protected", protected},
		{"Note", v.NoteListHTML},
		{"Footnote", v.FootnoteListHTML},
	}
}

// SpecificationView presents a specification.
type SpecificationView struct {
	model.Specification
	NameArray        []LangValue
	NameDefaultHTML  string
	NameListHTML     string
	URIArray         []LangValue
	URIDefaultHTML   string
	URIListHTML      string
	SectionCount     int
	SectionCountText string
}

// NewSpecificationView builds the view of s.
func NewSpecificationView(s model.Specification) *SpecificationView {
	v := &SpecificationView{Specification: s}
	v.NameArray = TranslationArray(s.Name)
	v.NameDefaultHTML = TranslationDefaultHTML(s.Name)
	v.NameListHTML = TranslationListHTML(v.NameArray)
	v.URIArray = TranslationArray(s.URI)
	v.URIDefaultHTML = URIDefaultHTML(s.URI, s.Name)
	v.URIListHTML = URIListHTML(s.URI, s.Name)
	v.SectionCount = RelatedCount(s.Sections)
	v.SectionCountText = CountText(v.SectionCount, "Section")
	return v
}

func (v *SpecificationView) Title() string { return textOr(v.Name.Default(), v.Slug) }

func (v *SpecificationView) Summary() []Field {
	return []Field{
		{"Slug", v.Slug},
		{"Name", v.URIDefaultHTML},
		{"Sections", v.SectionCountText},
	}
}

func (v *SpecificationView) Details() []Field {
	return []Field{
		{"Slug", v.Slug},
		{"MDN key", OptionalHTML(v.MDNKey)},
		{"Name", v.NameListHTML},
		{"URI", v.URIListHTML},
		{"Sections", v.SectionCountText},
	}
}

// MaturityView presents a specification maturity level.
type MaturityView struct {
	model.Maturity
	NameArray       []LangValue
	NameDefaultHTML string
	NameListHTML    string
	SpecCount       int
	SpecCountText   string
}

// NewMaturityView builds the view of m.
func NewMaturityView(m model.Maturity) *MaturityView {
	v := &MaturityView{Maturity: m}
	v.NameArray = TranslationArray(m.Name)
	v.NameDefaultHTML = TranslationDefaultHTML(m.Name)
	v.NameListHTML = TranslationListHTML(v.NameArray)
	v.SpecCount = RelatedCount(m.Specifications)
	v.SpecCountText = CountText(v.SpecCount, "Specification")
	return v
}

func (v *MaturityView) Title() string { return textOr(v.Name.Default(), v.Slug) }

func (v *MaturityView) Summary() []Field {
	return []Field{
		{"Slug", v.Slug},
		{"Name", v.NameDefaultHTML},
		{"Specifications", v.SpecCountText},
	}
}

func (v *MaturityView) Details() []Field {
	return []Field{
		{"Slug", v.Slug},
		{"Name", v.NameListHTML},
		{"Specifications", v.SpecCountText},
	}
}

// SectionView presents a section of a specification.
type SectionView struct {
	model.Section
	NumberDefaultHTML  string
	NameDefaultHTML    string
	NameListHTML       string
	SubpathDefaultHTML string
	NoteListHTML       string
	FeatureCount       int
	FeatureCountText   string
}

// NewSectionView builds the view of s.
func NewSectionView(s model.Section) *SectionView {
	v := &SectionView{Section: s}
	v.NumberDefaultHTML = TranslationDefaultHTML(s.Number)
	v.NameDefaultHTML = TranslationDefaultHTML(s.Name)
	v.NameListHTML = TranslationListHTML(TranslationArray(s.Name))
	v.SubpathDefaultHTML = TranslationDefaultHTML(s.Subpath)
	v.NoteListHTML = TranslationListHTML(TranslationArray(s.Note))
	v.FeatureCount = RelatedCount(s.Features)
	v.FeatureCountText = CountText(v.FeatureCount, "Feature")
	return v
}

func (v *SectionView) Title() string {
	return textOr(joinNonEmpty(v.Number.Default(), v.Name.Default()), "Section "+v.ID)
}

func (v *SectionView) Summary() []Field {
	return []Field{
		{"Number", v.NumberDefaultHTML},
		{"Name", v.NameDefaultHTML},
		{"Features", v.FeatureCountText},
	}
}

func (v *SectionView) Details() []Field {
	return []Field{
		{"Number", v.NumberDefaultHTML},
		{"Name", v.NameListHTML},
		{"Subpath", v.SubpathDefaultHTML},
		{"Note", v.NoteListHTML},
		{"Features", v.FeatureCountText},
	}
}

func textOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
