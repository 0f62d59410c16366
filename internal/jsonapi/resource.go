package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Resource is one primary or linked record of a document. Attributes keep
// their raw JSON so the model layer decides how to decode each one.
type Resource struct {
	ID         string
	Attributes map[string]json.RawMessage
	Links      map[string]json.RawMessage
}

// UnmarshalJSON splits a resource object into its id, its "links" object and
// the remaining attributes.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: resource: %v", ErrMalformedDocument, err)
	}

	r.Attributes = make(map[string]json.RawMessage, len(raw))
	r.Links = nil
	r.ID = ""

	for key, value := range raw {
		switch key {
		case "id":
			id, err := decodeID(value)
			if err != nil {
				return fmt.Errorf("%w: resource id: %v", ErrMalformedDocument, err)
			}
			r.ID = id
		case "links":
			if isNull(value) {
				continue
			}
			if err := json.Unmarshal(value, &r.Links); err != nil {
				return fmt.Errorf("%w: resource links: %v", ErrMalformedDocument, err)
			}
		default:
			r.Attributes[key] = value
		}
	}
	return nil
}

// MarshalJSON writes the resource back in the wire shape it was read from.
func (r Resource) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Attributes)+2)
	for key, value := range r.Attributes {
		out[key] = value
	}
	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	out["id"] = id
	if r.Links != nil {
		links, err := json.Marshal(r.Links)
		if err != nil {
			return nil, err
		}
		out["links"] = links
	}
	return json.Marshal(out)
}

// Attr decodes the named attribute into v. Missing and null attributes leave
// v untouched.
func (r Resource) Attr(name string, v any) error {
	raw, ok := r.Attributes[name]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}
	return nil
}

// LinkID returns the single id stored under a to-one relation, or "" when the
// relation is empty.
func (r Resource) LinkID(name string) string {
	ids := r.LinkIDs(name)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// LinkIDs returns the ids stored under a relation. A to-one relation yields
// at most one id. Nothing is fetched.
func (r Resource) LinkIDs(name string) []string {
	raw, ok := r.Links[name]
	if !ok || isNull(raw) {
		return nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		ids := make([]string, 0, len(items))
		for _, item := range items {
			if isNull(item) {
				continue
			}
			if id, err := decodeID(item); err == nil {
				ids = append(ids, id)
			}
		}
		return ids
	}

	id, err := decodeID(trimmed)
	if err != nil || id == "" {
		return nil
	}
	return []string{id}
}

// RelatedCount is the length of the cached id list for a relation.
func (r Resource) RelatedCount(name string) int {
	return len(r.LinkIDs(name))
}

// decodeID accepts both string and numeric ids.
func decodeID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return "", fmt.Errorf("non-integer id %s", n)
	}
	return n.String(), nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
