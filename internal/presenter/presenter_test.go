package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ziadkadry99/compatbrowse/internal/model"
)

func TestCountText(t *testing.T) {
	assert.Equal(t, "1 Version", CountText(1, "Version"))
	assert.Equal(t, "3 Versions", CountText(3, "Version"))
	assert.Equal(t, "0 Versions", CountText(0, "Version"))
	assert.Equal(t, "2 Children", CountText(2, "Child", "Children"))
	assert.Equal(t, "1 Child", CountText(1, "Child", "Children"))
}

func TestRelatedCountUsesIDs(t *testing.T) {
	rel := model.HasMany{Type: model.TypeVersion, IDs: []string{"1", "2", "3"}}
	assert.Equal(t, 3, RelatedCount(rel))
	assert.Equal(t, 0, RelatedCount(model.HasMany{}))
}

func TestOptionalHTML(t *testing.T) {
	assert.Equal(t, "<em>none</em>", OptionalHTML(""))
	assert.Equal(t, "2015-01-13", OptionalHTML("2015-01-13"))
}

func TestTranslationDefaultHTML(t *testing.T) {
	assert.Equal(t, "<em>none</em>", TranslationDefaultHTML(model.Translation{}))
	assert.Equal(t, "<code>display</code>", TranslationDefaultHTML(model.Plain("display")))
	assert.Equal(t, "Firefox", TranslationDefaultHTML(model.Localized(map[string]string{"en": "Firefox", "fr": "Firefox FR"})))
	assert.Equal(t, "", TranslationDefaultHTML(model.Localized(map[string]string{"fr": "seulement"})), "no fallback to other languages")
}

func TestTranslationArray(t *testing.T) {
	got := TranslationArray(model.Localized(map[string]string{"en": "E", "fr": "F", "de": "D"}))
	assert.Equal(t, []LangValue{{"en", "E"}, {"de", "D"}, {"fr", "F"}}, got)

	got = TranslationArray(model.Localized(map[string]string{"fr": "F", "es": "S"}))
	assert.Equal(t, []LangValue{{"es", "S"}, {"fr", "F"}}, got)

	for name, tr := range map[string]model.Translation{
		"absent": {},
		"plain":  model.Plain("video"),
		"empty":  model.Localized(nil),
	} {
		t.Run(name, func(t *testing.T) {
			items := TranslationArray(tr)
			assert.NotNil(t, items)
			assert.Empty(t, items)
			assert.Equal(t, "<em>none</em>", TranslationListHTML(items))
		})
	}
}

func TestTranslationListHTML(t *testing.T) {
	html := TranslationListHTML([]LangValue{{"en", "Firefox"}, {"es", "Firefox ES"}})
	assert.Equal(t, "<ul><li>en: Firefox</li><li>es: Firefox ES</li></ul>", html)
}

func TestFlagsHTML(t *testing.T) {
	html := FlagsHTML(model.Feature{Experimental: true, Standardized: false, Stable: true, Obsolete: false})
	assert.Contains(t, html, "experimental")
	assert.Contains(t, html, "not standardized")
	assert.NotContains(t, html, "not stable")
	assert.NotContains(t, html, "obsolete")
	assert.Equal(t, "<b>experimental</b>, <b>not standardized</b>", html)

	assert.Equal(t, "<em>none</em>", FlagsHTML(model.Feature{Standardized: true, Stable: true}))
	assert.Equal(t,
		"<b>experimental</b>, <b>not stable</b>, <b>not standardized</b>, <b>obsolete</b>",
		FlagsHTML(model.Feature{Experimental: true, Obsolete: true}))
}

func TestMDNLinkHTML(t *testing.T) {
	assert.Equal(t, "<em>no link</em>", MDNLinkHTML(""))
	assert.Equal(t,
		`<a href="https://developer.mozilla.org/Web/CSS/display#Browser_compatibility">Web/CSS/display</a>`,
		MDNLinkHTML("Web/CSS/display"))
}

func TestSupportHTML(t *testing.T) {
	assert.Equal(t, "<em>none</em>", PrefixHTML("", true))
	assert.Equal(t, "<code>-moz-</code> (required)", PrefixHTML("-moz-", true))
	assert.Equal(t, "<code>-moz-</code> (optional)", PrefixHTML("-moz-", false))
	assert.Equal(t, "<code>mozRTC</code> (required)", AlternateNameHTML("mozRTC", true))

	assert.Equal(t, "<em>none</em>", RequiredConfigHTML("", "x"))
	assert.Equal(t, "<code>flag=1</code> (<em>default config</em>)", RequiredConfigHTML("flag=1", "flag=1"))
	assert.Equal(t, "<code>flag=1</code> (default is <code>flag=0</code>)", RequiredConfigHTML("flag=1", "flag=0"))
}

func TestVersionHTML(t *testing.T) {
	assert.Equal(t, "<em>unspecified</em>", VersionHTML(""))
	assert.Equal(t, "35.0", VersionHTML("35.0"))
	assert.Equal(t, "Firefox 35.0", FullVersionHTML("Firefox", "35.0"))
	assert.Equal(t, "Firefox (<em>unspecified version</em>)", FullVersionHTML("Firefox", ""))
	assert.Equal(t, "35.0", FullVersionHTML("", "35.0"))
}

func TestURIHTML(t *testing.T) {
	uri := model.Localized(map[string]string{"en": "http://example.com/en", "fr": "http://example.com/fr", "de": "http://example.com/de"})
	name := model.Localized(map[string]string{"en": "Spec", "fr": "Spec FR"})

	assert.Equal(t, `<a href="http://example.com/en">Spec</a>`, URIDefaultHTML(uri, name))
	assert.Equal(t,
		`<ul><li>en: <a href="http://example.com/en">Spec</a></li>`+
			`<li>de: <a href="http://example.com/de">(Spec)</a></li>`+
			`<li>fr: <a href="http://example.com/fr">Spec FR</a></li></ul>`,
		URIListHTML(uri, name))

	assert.Equal(t, "<em>none</em>", URIDefaultHTML(model.Translation{}, name))
	assert.Equal(t, "<em>none</em>", URIListHTML(model.Translation{}, name))
}

func TestViews(t *testing.T) {
	b := NewBrowserView(model.Browser{
		ID: "1", Slug: "firefox",
		Name:     model.Localized(map[string]string{"en": "Firefox"}),
		Versions: model.HasMany{Type: model.TypeVersion, IDs: []string{"1"}},
	})
	assert.Equal(t, "Firefox", b.Title())
	assert.Equal(t, "1 Version", b.VersionCountText)
	assert.Equal(t, "<em>none</em>", b.NoteListHTML)
	assert.Equal(t, "1", b.RecordID())

	v := NewVersionView(model.Version{
		ID: "3", Version: "35.0",
		Supports: model.HasMany{Type: model.TypeSupport, IDs: []string{"1", "2"}},
	}, "Firefox")
	assert.Equal(t, "Firefox 35.0", v.Title())
	assert.Equal(t, "2 Features", v.FeatureCountText)
	assert.Equal(t, "<em>none</em>", v.RetirementDayHTML)

	f := NewFeatureView(model.Feature{ID: "8", Slug: "web-css-display", Stable: true, Standardized: true})
	assert.Equal(t, "web-css-display", f.Title(), "falls back to the slug")
	assert.Equal(t, "0 Versions", f.VersionCountText)

	m := NewMaturityView(model.Maturity{ID: "2", Specifications: model.HasMany{IDs: []string{"5"}}})
	assert.Equal(t, "1 Specification", m.SpecCountText)

	spec := NewSpecificationView(model.Specification{ID: "5", Sections: model.HasMany{IDs: []string{"1", "2"}}})
	assert.Equal(t, "2 Sections", spec.SectionCountText)

	sec := NewSectionView(model.Section{ID: "4", Number: model.Localized(map[string]string{"en": "2"}), Name: model.Localized(map[string]string{"en": "Box"})})
	assert.Equal(t, "2 Box", sec.Title())
	assert.Equal(t, "0 Features", sec.FeatureCountText)

	s := NewSupportView(model.Support{ID: "9", Support: "yes", Prefix: "-webkit-"})
	assert.Equal(t, "Support 9", s.Title())
	assert.Equal(t, "<code>-webkit-</code> (optional)", s.PrefixHTML)

	for _, view := range []View{b, v, f, m, spec, sec, s} {
		assert.NotEmpty(t, view.Summary())
		assert.GreaterOrEqual(t, len(view.Details()), len(view.Summary())-1)
	}
}
