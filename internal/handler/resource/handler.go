// Package resource serves the uniform collection routes of every entity.
package resource

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/policy"
	"github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

type Service[T any] interface {
	Resource() string
	List(ctx context.Context, caller policy.Caller, q model.ListQuery) (iter.Seq2[*T, error], error)
	Mine(ctx context.Context, caller policy.Caller, q model.ListQuery) (iter.Seq2[*T, error], error)
	MineOne(ctx context.Context, caller policy.Caller) (*T, error)
	Retrieve(ctx context.Context, caller policy.Caller, id uuid.UUID) (*T, error)
	Create(ctx context.Context, caller policy.Caller, entity *T) (*T, error)
	Update(ctx context.Context, caller policy.Caller, id uuid.UUID, apply func(*T) error) (*T, error)
	Delete(ctx context.Context, caller policy.Caller, id uuid.UUID) error
}

// SelfRoute names the route that returns the caller's own records.
type SelfRoute struct {
	Path string
	// Many returns a collection instead of a single record.
	Many bool
}

type Handler[T any] struct {
	svc  Service[T]
	self *SelfRoute
}

func NewHandler[T any](svc Service[T], self *SelfRoute) *Handler[T] {
	return &Handler[T]{svc: svc, self: self}
}

func (h *Handler[T]) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/" + h.svc.Resource())
	{
		g.GET("", h.List)
		g.POST("", h.Create)
		if h.self != nil {
			g.GET("/"+h.self.Path, h.Self)
		}
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.PATCH("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}
}

func (h *Handler[T]) List(c *gin.Context) {
	q, err := ParseQuery(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	seq, err := h.svc.List(c.Request.Context(), callerOf(c), q)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	respondList(c, q, seq)
}

func (h *Handler[T]) Self(c *gin.Context) {
	caller := callerOf(c)
	if !h.self.Many {
		entity, err := h.svc.MineOne(c.Request.Context(), caller)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, http.StatusOK, entity)
		return
	}

	q, err := ParseQuery(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	seq, err := h.svc.Mine(c.Request.Context(), caller, q)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	respondList(c, q, seq)
}

func (h *Handler[T]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	entity, err := h.svc.Retrieve(c.Request.Context(), callerOf(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, entity)
}

func (h *Handler[T]) Create(c *gin.Context) {
	var entity T
	if err := c.ShouldBindJSON(&entity); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), callerOf(c), &entity)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, created)
}

// Update decodes the body onto the stored record, so fields missing from the
// body keep their values for both PUT and PATCH.
func (h *Handler[T]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), callerOf(c), id, func(entity *T) error {
		return json.Unmarshal(body, entity)
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, updated)
}

func (h *Handler[T]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), callerOf(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondList[T any](c *gin.Context, q model.ListQuery, seq iter.Seq2[*T, error]) {
	items := make([]*T, 0)
	for entity, err := range seq {
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		items = append(items, entity)
	}

	if q.Page > 0 || q.PageSize > 0 {
		size := q.PageSize
		if size == 0 {
			size = model.DefaultPageSize
		}
		httputil.RespondWithSuccess(c, http.StatusOK, httputil.Page{
			Results:  items,
			Page:     max(q.Page, 1),
			PageSize: min(size, model.MaxPageSize),
		})
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, items)
}

func callerOf(c *gin.Context) policy.Caller {
	return policy.CallerFrom(c.Request.Context())
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NotFound("record", err))
		return uuid.Nil, false
	}
	return id, true
}

var reserved = map[string]bool{
	"search":    true,
	"ordering":  true,
	"page":      true,
	"page_size": true,
}

// ParseQuery reads search, ordering and paging parameters. Every other
// parameter is an exact-match filter.
func ParseQuery(c *gin.Context) (model.ListQuery, error) {
	values := c.Request.URL.Query()
	q := model.ListQuery{
		Filters:  make(map[string]string),
		Search:   values.Get("search"),
		Ordering: model.ParseOrdering(values.Get("ordering")),
	}

	var fields []errors.FieldError
	for _, key := range []string{"page", "page_size"} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fields = append(fields, errors.FieldError{Field: key, Message: "must be a positive integer"})
			continue
		}
		if key == "page" {
			q.Page = n
		} else {
			q.PageSize = n
		}
	}
	if len(fields) > 0 {
		return q, errors.Validation(fields...)
	}

	for key, vals := range values {
		if reserved[key] || len(vals) == 0 {
			continue
		}
		q.Filters[key] = vals[0]
	}
	return q, nil
}
