// Package jsonapi reads the JSON-API dialect spoken by the compatibility
// backend and normalises its relationship links into relation routes.
package jsonapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrMalformedDocument is returned when a payload is not a JSON-API document.
	ErrMalformedDocument = errors.New("malformed json-api document")
	// ErrMalformedLink is returned for a relationship link without an href.
	ErrMalformedLink = errors.New("malformed relationship link")
	// ErrUnresolvedRoute is returned when no relation route was registered for a key.
	ErrUnresolvedRoute = errors.New("unresolved relation route")
)

// PageInfo is the pagination block the server reports per plural type name.
type PageInfo struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
}

// Meta is the top-level "meta" object of a collection response.
type Meta struct {
	Pagination map[string]PageInfo `json:"pagination,omitempty"`
}

// PaginationFor returns the pagination block for a plural type name.
func (m Meta) PaginationFor(plural string) (PageInfo, bool) {
	info, ok := m.Pagination[plural]
	return info, ok
}

// Document is a decoded response. Type is the plural primary key
// ("browsers"); Collection tells a list response from a single resource.
type Document struct {
	Type       string
	Collection bool
	Data       []Resource
	Linked     map[string][]Resource
	Links      map[string]json.RawMessage
	Meta       *Meta
}

// reserved top-level keys; any other key is the primary resource key.
var reserved = map[string]bool{"links": true, "linked": true, "meta": true}

// Parse decodes a JSON-API document.
func Parse(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc := &Document{}
	var primary []string
	for key := range top {
		if !reserved[key] {
			primary = append(primary, key)
		}
	}
	if len(primary) != 1 {
		sort.Strings(primary)
		return nil, fmt.Errorf("%w: want one primary key, got %v", ErrMalformedDocument, primary)
	}
	doc.Type = primary[0]

	body := bytes.TrimSpace(top[doc.Type])
	switch {
	case len(body) > 0 && body[0] == '[':
		doc.Collection = true
		if err := json.Unmarshal(body, &doc.Data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, doc.Type, err)
		}
	case isNull(body):
		return nil, fmt.Errorf("%w: %s is null", ErrMalformedDocument, doc.Type)
	default:
		var r Resource
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, err
		}
		doc.Data = []Resource{r}
	}

	if raw, ok := top["links"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &doc.Links); err != nil {
			return nil, fmt.Errorf("%w: links: %v", ErrMalformedDocument, err)
		}
	}
	if raw, ok := top["linked"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &doc.Linked); err != nil {
			return nil, fmt.Errorf("%w: linked: %v", ErrMalformedDocument, err)
		}
	}
	if raw, ok := top["meta"]; ok && !isNull(raw) {
		var meta Meta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("%w: meta: %v", ErrMalformedDocument, err)
		}
		doc.Meta = &meta
	}

	return doc, nil
}

// MarshalJSON writes the document in the backend's wire shape.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 4)
	if d.Collection {
		data := d.Data
		if data == nil {
			data = []Resource{}
		}
		out[d.Type] = data
	} else if len(d.Data) > 0 {
		out[d.Type] = d.Data[0]
	}
	if len(d.Links) > 0 {
		out["links"] = d.Links
	}
	if len(d.Linked) > 0 {
		out["linked"] = d.Linked
	}
	if d.Meta != nil {
		out["meta"] = d.Meta
	}
	return json.Marshal(out)
}
