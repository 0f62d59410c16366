package jsonapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"
)

// DefaultNamespace is the API prefix stripped from relation routes.
const DefaultNamespace = "api/v1"

// LinkEntry is one normalised relationship link.
type LinkEntry struct {
	Key   string
	Route string
}

// linkDescriptor is the object form of a relationship link.
type linkDescriptor struct {
	Type string  `json:"type"`
	Href *string `json:"href"`
}

// Extractor turns the top-level "links" section of a response into relation
// routes and records them in its registry.
type Extractor struct {
	namespace string
	routes    *RouteRegistry
	inflector *inflect.Ruleset
}

// NewExtractor creates an extractor that strips namespace and registers into
// routes. An empty namespace disables namespace stripping.
func NewExtractor(namespace string, routes *RouteRegistry) *Extractor {
	return &Extractor{
		namespace: strings.Trim(namespace, "/"),
		routes:    routes,
		inflector: inflect.NewDefaultRuleset(),
	}
}

// Routes returns the registry the extractor writes to.
func (e *Extractor) Routes() *RouteRegistry { return e.routes }

// Namespace returns the API namespace stripped from routes.
func (e *Extractor) Namespace() string { return e.namespace }

// ExtractLinks normalises every link and registers the result. Malformed
// descriptors are skipped and reported together; the others are still
// registered.
func (e *Extractor) ExtractLinks(links map[string]json.RawMessage) ([]LinkEntry, error) {
	keys := make([]string, 0, len(links))
	for k := range links {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		extracted []LinkEntry
		errs      []error
	)
	for _, source := range keys {
		key := source[strings.LastIndex(source, ".")+1:]

		var route string
		raw := links[source]
		if err := json.Unmarshal(raw, &route); err != nil {
			var desc linkDescriptor
			if err := json.Unmarshal(raw, &desc); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", ErrMalformedLink, source, err))
				continue
			}
			if desc.Href == nil {
				errs = append(errs, fmt.Errorf("%w: %s: missing href", ErrMalformedLink, source))
				continue
			}
			if desc.Type != "" {
				key = desc.Type
			}
			route = *desc.Href
		}

		entry := LinkEntry{
			Key:   e.RelationKey(key),
			Route: NormalizeRoute(route, e.namespace),
		}
		if entry.Key == "" {
			errs = append(errs, fmt.Errorf("%w: %s: empty key", ErrMalformedLink, source))
			continue
		}
		extracted = append(extracted, entry)
		if e.routes != nil {
			e.routes.Register(entry.Key, entry.Route)
		}
	}

	return extracted, errors.Join(errs...)
}

// RelationKey singularises and camel-cases a link type the same way type keys
// are formed ("historical_browsers" -> "historicalBrowser").
func (e *Extractor) RelationKey(name string) string {
	if name == "" {
		return ""
	}
	return e.inflector.CamelizeDownFirst(e.inflector.Singularize(name))
}

// TypeKey is RelationKey for a primary document key ("maturities" -> "maturity").
func (e *Extractor) TypeKey(plural string) string {
	return e.RelationKey(plural)
}

// Plural is the plural name the server uses for a type key in paths and
// pagination metadata ("maturity" -> "maturities").
func (e *Extractor) Plural(typeKey string) string {
	if typeKey == "" {
		return ""
	}
	return e.inflector.Pluralize(e.inflector.Underscore(typeKey))
}

// NormalizeRoute strips the scheme and host, one leading slash and the API
// namespace from a link href. Routes that are already namespace-relative come
// back unchanged.
func NormalizeRoute(route, namespace string) string {
	if len(route) >= 4 && strings.EqualFold(route[:4], "http") {
		rest := route
		if i := strings.LastIndex(rest, "//"); i >= 0 {
			rest = rest[i+2:]
		}
		if i := strings.Index(rest, "/"); i >= 0 {
			route = rest[i+1:]
		} else {
			route = ""
		}
	}

	route = strings.TrimPrefix(route, "/")

	if namespace != "" && strings.HasPrefix(route, namespace) {
		route = strings.TrimPrefix(route[len(namespace):], "/")
	}
	return route
}
