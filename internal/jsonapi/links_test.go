package jsonapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawLinks(t *testing.T, src string) map[string]json.RawMessage {
	t.Helper()
	var links map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(src), &links))
	return links
}

func TestExtractLinksStringValue(t *testing.T) {
	routes := NewRouteRegistry()
	e := NewExtractor(DefaultNamespace, routes)

	entries, err := e.ExtractLinks(rawLinks(t, `{"relationships.browsers": "http://host/api/v1/browsers"}`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, LinkEntry{Key: "browser", Route: "browsers"}, entries[0])

	route, ok := routes.Lookup("browser")
	require.True(t, ok)
	assert.Equal(t, "browsers", route)
}

func TestExtractLinksDescriptor(t *testing.T) {
	routes := NewRouteRegistry()
	e := NewExtractor(DefaultNamespace, routes)

	entries, err := e.ExtractLinks(rawLinks(t, `{
		"browsers.history": {"type": "historical_browsers", "href": "http://testserver/api/v1/historical_browsers/{browsers.history}"},
		"browsers.versions": {"type": "versions", "href": "http://testserver/api/v1/versions/{browsers.versions}"},
		"features.children": {"type": "features", "href": "https://example.com/api/v1/features/{features.children}"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, []LinkEntry{
		{Key: "historicalBrowser", Route: "historical_browsers/{browsers.history}"},
		{Key: "version", Route: "versions/{browsers.versions}"},
		{Key: "feature", Route: "features/{features.children}"},
	}, entries)
	assert.Equal(t, 3, routes.Len())
}

func TestExtractLinksFallsBackToContainerKey(t *testing.T) {
	e := NewExtractor(DefaultNamespace, NewRouteRegistry())

	entries, err := e.ExtractLinks(rawLinks(t, `{"specifications.maturity": {"href": "/api/v1/maturities/{specifications.maturity}"}}`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "maturity", entries[0].Key)
	assert.Equal(t, "maturities/{specifications.maturity}", entries[0].Route)
}

func TestExtractLinksMalformedDescriptor(t *testing.T) {
	routes := NewRouteRegistry()
	e := NewExtractor(DefaultNamespace, routes)

	entries, err := e.ExtractLinks(rawLinks(t, `{
		"versions.browser": {"type": "browsers"},
		"versions.supports": {"type": "supports", "href": "api/v1/supports/{versions.supports}"}
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedLink)
	require.Len(t, entries, 1)
	assert.Equal(t, "support", entries[0].Key)

	_, ok := routes.Lookup("browser")
	assert.False(t, ok)
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		name  string
		route string
		want  string
	}{
		{"absolute url", "http://host/api/v1/browsers", "browsers"},
		{"https upper case scheme", "HTTPS://host:8000/api/v1/versions/{browsers.versions}", "versions/{browsers.versions}"},
		{"host only", "http://host", ""},
		{"leading slash", "/api/v1/features", "features"},
		{"namespace only", "api/v1", ""},
		{"foreign path", "http://host/other/browsers", "other/browsers"},
		{"relative", "browsers", "browsers"},
		{"relative template", "versions/{browsers.versions}", "versions/{browsers.versions}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRoute(tt.route, DefaultNamespace))
		})
	}
}

func TestNormalizeRouteRelativeIsIdentity(t *testing.T) {
	for _, route := range []string{"browsers", "supports/{versions.supports}", "maturities/12", "a/b/c"} {
		assert.Equal(t, route, NormalizeRoute(route, DefaultNamespace), route)
	}
}

func TestRelationKeyAndPlural(t *testing.T) {
	e := NewExtractor(DefaultNamespace, nil)

	keys := map[string]string{
		"browsers":            "browser",
		"maturities":          "maturity",
		"specifications":      "specification",
		"children":            "child",
		"history_current":     "historyCurrent",
		"historical_browsers": "historicalBrowser",
		"parent":              "parent",
	}
	for in, want := range keys {
		assert.Equal(t, want, e.RelationKey(in), in)
	}

	plurals := map[string]string{
		"browser":           "browsers",
		"maturity":          "maturities",
		"section":           "sections",
		"historicalBrowser": "historical_browsers",
	}
	for in, want := range plurals {
		assert.Equal(t, want, e.Plural(in), in)
	}
}
