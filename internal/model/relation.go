// Package model holds the typed compatibility entities decoded from
// JSON-API resources.
package model

// BelongsTo is a lazily resolved to-one relation: only the related type key
// and id are known until the record is fetched.
type BelongsTo struct {
	Type string
	ID   string
}

// IsSet reports whether the relation points at a record.
func (b BelongsTo) IsSet() bool { return b.ID != "" }

// HasMany is a lazily resolved to-many relation.
type HasMany struct {
	Type string
	IDs  []string
}

// Len is the server-reported cardinality of the relation.
func (h HasMany) Len() int { return len(h.IDs) }
