package memory

import (
	"time"

	"github.com/google/uuid"
)

// sortableTime is fixed width so that string order matches time order.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

func timeKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(sortableTime)
}

func uuidKey(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func boolKey(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// table keeps rows in insertion order.
type table[T any] struct {
	rows  map[uuid.UUID]*T
	order []uuid.UUID
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[uuid.UUID]*T)}
}

func (t *table[T]) get(id uuid.UUID) (*T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) put(id uuid.UUID, row *T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) all() []*T {
	out := make([]*T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *table[T]) remove(ids map[uuid.UUID]struct{}) {
	if len(ids) == 0 {
		return
	}
	kept := t.order[:0]
	for _, id := range t.order {
		if _, gone := ids[id]; gone {
			delete(t.rows, id)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
}

// plan collects every row a delete will remove before anything is touched.
type plan struct {
	ids map[string]map[uuid.UUID]struct{}
}

func newPlan() *plan {
	return &plan{ids: make(map[string]map[uuid.UUID]struct{})}
}

// add reports false when the row was already scheduled.
func (p *plan) add(tbl string, id uuid.UUID) bool {
	set, ok := p.ids[tbl]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		p.ids[tbl] = set
	}
	if _, ok := set[id]; ok {
		return false
	}
	set[id] = struct{}{}
	return true
}

func (p *plan) has(tbl string, id uuid.UUID) bool {
	_, ok := p.ids[tbl][id]
	return ok
}
