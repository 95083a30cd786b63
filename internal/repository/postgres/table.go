package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

// tableDef maps one entity onto its table and translates query keys into SQL.
type tableDef struct {
	resource string
	name     string
	alias    string
	columns  []string
	// joins are only added to list queries.
	joins  string
	keys   map[string]string
	search []string
	owner  string
	// constraints maps a constraint name to the field reported to callers.
	constraints map[string]string
}

func (d tableDef) selectColumns() string {
	cols := make([]string, len(d.columns))
	for i, c := range d.columns {
		cols[i] = d.alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func (d tableDef) insertSQL() string {
	named := make([]string, len(d.columns))
	for i, c := range d.columns {
		named[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.name, strings.Join(d.columns, ", "), strings.Join(named, ", "))
}

func (d tableDef) updateSQL() string {
	var sets []string
	for _, c := range d.columns {
		if c == "id" || c == "created_at" {
			continue
		}
		sets = append(sets, c+" = :"+c)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", d.name, strings.Join(sets, ", "))
}

func (d tableDef) getSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s %s WHERE %s.id = $1", d.selectColumns(), d.name, d.alias, d.alias)
}

func (d tableDef) deleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = $1", d.name)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// listSQL builds the query for q. Keys must already be known to the table.
func (d tableDef) listSQL(q model.ListQuery) (string, []interface{}, error) {
	query := fmt.Sprintf("SELECT %s FROM %s %s%s WHERE 1=1", d.selectColumns(), d.name, d.alias, d.joins)
	var args []interface{}

	if q.Owner != nil {
		if d.owner == "" {
			return "", nil, fmt.Errorf("%s has no owner", d.resource)
		}
		args = append(args, *q.Owner)
		query += fmt.Sprintf(" AND %s = $%d", d.owner, len(args))
	}

	filterKeys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		filterKeys = append(filterKeys, key)
	}
	sort.Strings(filterKeys)
	for _, key := range filterKeys {
		expr, ok := d.keys[key]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter %q for %s", key, d.resource)
		}
		args = append(args, q.Filters[key])
		query += fmt.Sprintf(" AND %s = $%d", expr, len(args))
	}

	for _, term := range model.SearchTerms(q.Search) {
		args = append(args, "%"+escapeLike(term)+"%")
		conds := make([]string, 0, len(d.search))
		for _, key := range d.search {
			conds = append(conds, fmt.Sprintf("%s ILIKE $%d", d.keys[key], len(args)))
		}
		if len(conds) == 0 {
			return "", nil, fmt.Errorf("%s does not support search", d.resource)
		}
		query += " AND (" + strings.Join(conds, " OR ") + ")"
	}

	var order []string
	for _, o := range q.Ordering {
		expr, ok := d.keys[o.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown ordering %q for %s", o.Field, d.resource)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		order = append(order, expr+" "+dir)
	}
	order = append(order, d.alias+".created_at ASC", d.alias+".id ASC")
	query += " ORDER BY " + strings.Join(order, ", ")

	if limit, offset := q.Limit(); limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	return query, args, nil
}

func (d tableDef) mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		field := d.constraints[pqErr.Constraint]
		switch pqErr.Code {
		case "23505":
			return repository.Constraint(repository.ErrDuplicate, field)
		case "23503":
			if op == "delete" {
				return repository.Constraint(repository.ErrRestricted, field)
			}
			return repository.Constraint(repository.ErrInvalidReference, field)
		case "23514":
			return repository.Constraint(repository.ErrInvalidReference, field)
		}
	}
	return fmt.Errorf("failed to %s %s: %w", op, d.resource, err)
}

type repo[T any] struct {
	BaseRepository
	def     tableDef
	metrics *metrics.Metrics
}

func newRepo[T any](base BaseRepository, def tableDef, m *metrics.Metrics) *repo[T] {
	return &repo[T]{BaseRepository: base, def: def, metrics: m}
}

func (r *repo[T]) observe(op string, start time.Time, err error) error {
	r.metrics.ObserveStore(r.def.resource, op, start, err)
	return r.def.mapError(op, err)
}

func (r *repo[T]) Create(ctx context.Context, entity *T) error {
	start := time.Now()
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, r.def.insertSQL(), entity)
		return err
	})
	return r.observe("create", start, err)
}

func (r *repo[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	start := time.Now()
	var entity T
	err := r.db.GetContext(ctx, &entity, r.def.getSQL(), id)
	if err := r.observe("get", start, err); err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *repo[T]) Update(ctx context.Context, entity *T) error {
	start := time.Now()
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.NamedExecContext(ctx, r.def.updateSQL(), entity)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	return r.observe("update", start, err)
}

// Delete relies on the schema's ON DELETE rules for cascades and restrictions.
func (r *repo[T]) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, r.def.deleteSQL(), id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	return r.observe("delete", start, err)
}

func (r *repo[T]) List(ctx context.Context, q model.ListQuery) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		query, args, err := r.def.listSQL(q)
		if err != nil {
			yield(nil, err)
			return
		}

		start := time.Now()
		rows, err := r.db.QueryxContext(ctx, query, args...)
		if err := r.observe("list", start, err); err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var entity T
			if err := rows.StructScan(&entity); err != nil {
				yield(nil, fmt.Errorf("failed to scan %s: %w", r.def.resource, err))
				return
			}
			if !yield(&entity, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, r.def.mapError("list", err))
		}
	}
}
