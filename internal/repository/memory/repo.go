package memory

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type uniqueKey[T any] struct {
	field string
	key   func(*T) string
}

// kind describes how one resource is stored, queried and deleted.
type kind[T any] struct {
	name    string
	table   func(*Store) *table[T]
	fields  map[string]func(*Store, *T) string
	search  []string
	owner   func(*Store, *T) uuid.UUID
	unique  []uniqueKey[T]
	refs    func(*Store, *T) error
	cascade func(*Store, *plan, uuid.UUID) error
	clone   func(*T) *T
}

type repo[T any, P model.Record[T]] struct {
	s    *Store
	kind *kind[T]
}

func newRepo[T any, P model.Record[T]](s *Store, k kind[T]) *repo[T, P] {
	if k.clone == nil {
		k.clone = func(e *T) *T {
			c := *e
			return &c
		}
	}
	return &repo[T, P]{s: s, kind: &k}
}

func (r *repo[T, P]) Create(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := P(entity).Meta().ID
	if id == uuid.Nil {
		return fmt.Errorf("failed to create %s: id is not set", r.kind.name)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tbl := r.kind.table(r.s)
	if _, exists := tbl.get(id); exists {
		return repository.Constraint(repository.ErrDuplicate, "id")
	}
	if err := r.check(tbl, entity, id); err != nil {
		return err
	}
	tbl.put(id, r.kind.clone(entity))
	return nil
}

func (r *repo[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.kind.table(r.s).get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.kind.clone(row), nil
}

func (r *repo[T, P]) Update(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := P(entity).Meta().ID

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tbl := r.kind.table(r.s)
	if _, ok := tbl.get(id); !ok {
		return repository.ErrNotFound
	}
	if err := r.check(tbl, entity, id); err != nil {
		return err
	}
	tbl.put(id, r.kind.clone(entity))
	return nil
}

func (r *repo[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.kind.table(r.s).get(id); !ok {
		return repository.ErrNotFound
	}
	p := newPlan()
	if err := r.kind.cascade(r.s, p, id); err != nil {
		return err
	}
	r.s.apply(p)
	return nil
}

func (r *repo[T, P]) List(ctx context.Context, q model.ListQuery) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		rows, err := r.snapshot(q)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, row := range rows {
			if !yield(row, nil) {
				return
			}
		}
	}
}

// snapshot copies the matching page out under the read lock.
func (r *repo[T, P]) snapshot(q model.ListQuery) ([]*T, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if q.Owner != nil && r.kind.owner == nil {
		return nil, fmt.Errorf("%s has no owner", r.kind.name)
	}
	for key := range q.Filters {
		if _, ok := r.kind.fields[key]; !ok {
			return nil, fmt.Errorf("unknown filter %q for %s", key, r.kind.name)
		}
	}
	for _, o := range q.Ordering {
		if _, ok := r.kind.fields[o.Field]; !ok {
			return nil, fmt.Errorf("unknown ordering %q for %s", o.Field, r.kind.name)
		}
	}

	terms := model.SearchTerms(strings.ToLower(q.Search))
	var matched []*T
	for _, row := range r.kind.table(r.s).all() {
		if q.Owner != nil && r.kind.owner(r.s, row) != *q.Owner {
			continue
		}
		if !r.matchFilters(row, q.Filters) || !r.matchSearch(row, terms) {
			continue
		}
		matched = append(matched, row)
	}

	if len(q.Ordering) > 0 {
		slices.SortStableFunc(matched, func(a, b *T) int {
			for _, o := range q.Ordering {
				field := r.kind.fields[o.Field]
				c := cmp.Compare(field(r.s, a), field(r.s, b))
				if o.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	if limit, offset := q.Limit(); limit > 0 {
		if offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[offset:min(offset+limit, len(matched))]
		}
	}

	out := make([]*T, len(matched))
	for i, row := range matched {
		out[i] = r.kind.clone(row)
	}
	return out, nil
}

func (r *repo[T, P]) matchFilters(row *T, filters map[string]string) bool {
	for key, want := range filters {
		if r.kind.fields[key](r.s, row) != want {
			return false
		}
	}
	return true
}

func (r *repo[T, P]) matchSearch(row *T, terms []string) bool {
	for _, term := range terms {
		found := false
		for _, key := range r.kind.search {
			if strings.Contains(strings.ToLower(r.kind.fields[key](r.s, row)), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *repo[T, P]) check(tbl *table[T], entity *T, id uuid.UUID) error {
	for _, u := range r.kind.unique {
		key := u.key(entity)
		if key == "" {
			continue
		}
		for _, other := range tbl.all() {
			if P(other).Meta().ID != id && u.key(other) == key {
				return repository.Constraint(repository.ErrDuplicate, u.field)
			}
		}
	}
	if r.kind.refs != nil {
		return r.kind.refs(r.s, entity)
	}
	return nil
}
