package resource

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/pkg/errors"
)

func stdIs(err, target error) bool {
	return stderrors.Is(err, target)
}

// normalize checks q against the schema and rewrites filter values into the
// canonical form the stores compare against.
func (s *Service[T, P]) normalize(q model.ListQuery) (model.ListQuery, error) {
	return NormalizeQuery(s.cfg.Schema, q)
}

func NormalizeQuery(schema model.Schema, q model.ListQuery) (model.ListQuery, error) {
	var fields []errors.FieldError

	filters := make(map[string]string, len(q.Filters))
	for key, raw := range q.Filters {
		filter, ok := schema.Filters[key]
		if !ok {
			fields = append(fields, errors.FieldError{Field: key, Message: "unknown filter"})
			continue
		}
		value, err := canonical(filter, strings.TrimSpace(raw))
		if err != nil {
			fields = append(fields, errors.FieldError{Field: key, Message: err.Error()})
			continue
		}
		filters[key] = value
	}
	q.Filters = filters

	q.Search = strings.TrimSpace(q.Search)
	if q.Search != "" && len(schema.Search) == 0 {
		fields = append(fields, errors.FieldError{Field: "search", Message: "search is not supported"})
	}

	for _, o := range q.Ordering {
		if !schema.Sortable(o.Field) {
			fields = append(fields, errors.FieldError{
				Field:   "ordering",
				Message: fmt.Sprintf("cannot order by %q", o.Field),
			})
		}
	}

	if q.Page < 0 {
		fields = append(fields, errors.FieldError{Field: "page", Message: "must be positive"})
	}
	if q.PageSize < 0 {
		fields = append(fields, errors.FieldError{Field: "page_size", Message: "must be positive"})
	}
	if len(fields) > 0 {
		slices.SortFunc(fields, func(a, b errors.FieldError) int {
			return strings.Compare(a.Field, b.Field)
		})
		return q, errors.Validation(fields...)
	}

	if q.Page > 0 && q.PageSize == 0 {
		q.PageSize = model.DefaultPageSize
	}
	q.PageSize = min(q.PageSize, model.MaxPageSize)
	return q, nil
}

func canonical(f model.Filter, raw string) (string, error) {
	switch f.Kind {
	case model.FilterUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return "", stderrors.New("must be a valid UUID")
		}
		return id.String(), nil
	case model.FilterBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", stderrors.New("must be true or false")
		}
		return strconv.FormatBool(b), nil
	default:
		if !slices.Contains(f.Values, raw) {
			return "", fmt.Errorf("must be one of: %s", strings.Join(f.Values, ", "))
		}
		return raw, nil
	}
}
