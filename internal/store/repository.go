package store

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/compatbrowse/internal/jsonapi"
	"github.com/ziadkadry99/compatbrowse/internal/model"
)

// Page is one decoded page of a typed collection.
type Page[T model.Record] struct {
	Records    []T
	Pagination *jsonapi.PageInfo
}

// Repository is a typed view of the store for one entity kind.
type Repository[T model.Record] struct {
	store *Store
	kind  model.Kind[T]
}

// NewRepository returns a repository for kind backed by s.
func NewRepository[T model.Record](s *Store, kind model.Kind[T]) *Repository[T] {
	return &Repository[T]{store: s, kind: kind}
}

// Kind returns the entity kind.
func (r *Repository[T]) Kind() model.Kind[T] { return r.kind }

// Query loads and decodes one page.
func (r *Repository[T]) Query(ctx context.Context, page int) (Page[T], error) {
	res, err := r.store.FindQuery(ctx, r.kind.Type, page)
	if err != nil {
		return Page[T]{}, err
	}
	records, err := r.decodeAll(res.Records)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Records: records, Pagination: res.Pagination}, nil
}

// Find loads one record by id.
func (r *Repository[T]) Find(ctx context.Context, id string) (T, error) {
	res, err := r.store.Find(ctx, r.kind.Type, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.kind.Decode(res)
}

// Related hydrates a to-many relation.
func (r *Repository[T]) Related(ctx context.Context, rel model.HasMany) ([]T, error) {
	if rel.Type != r.kind.Type {
		return nil, fmt.Errorf("relation of %s used with %s repository", rel.Type, r.kind.Type)
	}
	if rel.Len() == 0 {
		return nil, nil
	}
	res, err := r.store.FindMany(ctx, rel.Type, rel.IDs)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(res)
}

// Owner hydrates a to-one relation. ok is false for an empty relation.
func (r *Repository[T]) Owner(ctx context.Context, rel model.BelongsTo) (T, bool, error) {
	var zero T
	if !rel.IsSet() {
		return zero, false, nil
	}
	if rel.Type != r.kind.Type {
		return zero, false, fmt.Errorf("relation of %s used with %s repository", rel.Type, r.kind.Type)
	}
	res, err := r.store.FindMany(ctx, rel.Type, []string{rel.ID})
	if err != nil {
		return zero, false, err
	}
	v, err := r.kind.Decode(res[0])
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (r *Repository[T]) decodeAll(res []jsonapi.Resource) ([]T, error) {
	out := make([]T, 0, len(res))
	for _, item := range res {
		v, err := r.kind.Decode(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
