package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/compatbrowse/internal/jsonapi"
)

func resource(t *testing.T, src string) jsonapi.Resource {
	t.Helper()
	var r jsonapi.Resource
	require.NoError(t, json.Unmarshal([]byte(src), &r))
	return r
}

func TestTranslationVariants(t *testing.T) {
	var absent, plain, localized Translation
	require.NoError(t, json.Unmarshal([]byte(`null`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`"<code>video</code>"`), &plain))
	require.NoError(t, json.Unmarshal([]byte(`{"en": "Firefox", "fr": "Firefox FR"}`), &localized))

	assert.True(t, absent.IsAbsent())
	assert.True(t, plain.IsPlain())
	assert.True(t, localized.IsLocalized())

	v, ok := plain.PlainValue()
	assert.True(t, ok)
	assert.Equal(t, "<code>video</code>", v)
	assert.Equal(t, "Firefox", localized.Default())
	assert.Equal(t, []string{"en", "fr"}, localized.Langs())

	_, ok = localized.Lang("de")
	assert.False(t, ok)

	var bad Translation
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestTranslationMarshal(t *testing.T) {
	for _, src := range []string{`null`, `"plain"`, `{"en":"E","fr":"F"}`} {
		var tr Translation
		require.NoError(t, json.Unmarshal([]byte(src), &tr))
		out, err := json.Marshal(tr)
		require.NoError(t, err)
		assert.JSONEq(t, src, string(out))
	}
}

func TestLocalizedCopiesMap(t *testing.T) {
	m := map[string]string{"en": "E"}
	tr := Localized(m)
	m["en"] = "changed"
	assert.Equal(t, "E", tr.Default())
}

func TestDecodeBrowser(t *testing.T) {
	b, err := DecodeBrowser(resource(t, `{
		"id": "1", "slug": "firefox", "name": {"en": "Firefox"}, "note": null,
		"links": {"history": ["10"], "history_current": "10", "versions": ["3", "4", "5"]}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "1", b.ID)
	assert.Equal(t, "firefox", b.Slug)
	assert.Equal(t, "Firefox", b.Name.Default())
	assert.True(t, b.Note.IsAbsent())
	assert.Equal(t, HasMany{Type: TypeVersion, IDs: []string{"3", "4", "5"}}, b.Versions)
	assert.Equal(t, 3, b.Versions.Len())
}

func TestDecodeFeature(t *testing.T) {
	f, err := DecodeFeature(resource(t, `{
		"id": "8", "slug": "web-css-display", "mdn_path": "Web/CSS/display",
		"experimental": true, "standardized": false, "stable": true, "obsolete": false,
		"name": "display",
		"links": {"parent": "2", "children": [], "supports": ["1"], "sections": ["4", "5"]}
	}`))
	require.NoError(t, err)

	assert.True(t, f.Experimental)
	assert.False(t, f.Standardized)
	assert.True(t, f.Name.IsPlain())
	assert.Equal(t, BelongsTo{Type: TypeFeature, ID: "2"}, f.Parent)
	assert.Equal(t, 0, f.Children.Len())
	assert.Equal(t, 2, f.Sections.Len())
}

func TestDecodeVersionAndSupport(t *testing.T) {
	v, err := DecodeVersion(resource(t, `{
		"id": "3", "version": "35.0", "release_day": "2015-01-13", "retirement_day": null,
		"status": "current", "release_notes_uri": {"en": "https://example.com/35"},
		"note": null, "order": 12, "links": {"browser": "1", "supports": ["9"]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "2015-01-13", v.ReleaseDay)
	assert.Empty(t, v.RetirementDay)
	assert.Equal(t, 12, v.Order)
	assert.True(t, v.Browser.IsSet())

	s, err := DecodeSupport(resource(t, `{
		"id": "9", "support": "yes", "prefix": "-moz-", "prefix_mandatory": true,
		"alternate_name": "", "alternate_mandatory": false,
		"requires_config": "", "default_config": "", "protected": false,
		"note": null, "footnote": {"en": "Behind a flag"},
		"links": {"version": "3", "feature": "8"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "-moz-", s.Prefix)
	assert.True(t, s.PrefixMandatory)
	assert.Equal(t, BelongsTo{Type: TypeFeature, ID: "8"}, s.Feature)
}

func TestDecodeReportsBadAttribute(t *testing.T) {
	_, err := DecodeVersion(resource(t, `{"id": "3", "order": "first"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version 3")
}

func TestDecodeSpecificationMaturitySection(t *testing.T) {
	spec, err := DecodeSpecification(resource(t, `{
		"id": "5", "slug": "css3-display", "mdn_key": "CSS3 Display",
		"name": {"en": "CSS Display Module Level 3"},
		"uri": {"en": "http://dev.w3.org/csswg/css-display/"},
		"links": {"maturity": "2", "sections": ["4"]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "2", spec.Maturity.ID)
	assert.Equal(t, 1, spec.Sections.Len())

	m, err := DecodeMaturity(resource(t, `{"id": "2", "slug": "ED", "name": {"en": "Editor's Draft"}, "links": {"specifications": ["5", "6"]}}`))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Specifications.Len())

	sec, err := DecodeSection(resource(t, `{
		"id": "4", "number": {"en": "2"}, "name": {"en": "Box Layout Modes"},
		"subpath": {"en": "#the-display-properties"}, "note": null,
		"links": {"specification": "5", "features": ["8"]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "2", sec.Number.Default())
	assert.Equal(t, TypeSpecification, sec.Specification.Type)
}
