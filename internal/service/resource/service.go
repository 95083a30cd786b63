// Package resource implements list, retrieve, create, update and delete once for
// every entity. Entities differ only in their Config: schema allow-lists,
// repository and hooks.
package resource

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/policy"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/validator"
)

type Authorizer interface {
	Authorize(ctx context.Context, caller policy.Caller, resource string, action policy.Action) error
}

// Change is passed to hooks. Existing is nil on create.
type Change[T any] struct {
	Caller   policy.Caller
	Entity   *T
	Existing *T
	Now      time.Time
}

type Hook[T any] func(ctx context.Context, c Change[T]) error

type Config[T any] struct {
	Resource  string
	Schema    model.Schema
	Repo      repository.Repository[T]
	Policy    Authorizer
	Validator validator.Validator

	// Prepare runs before validation, BeforeSave after it.
	Prepare    Hook[T]
	BeforeSave Hook[T]

	Now func() time.Time
}

type Service[T any, P model.Record[T]] struct {
	cfg Config[T]
}

func New[T any, P model.Record[T]](cfg Config[T]) *Service[T, P] {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service[T, P]{cfg: cfg}
}

func (s *Service[T, P]) Resource() string {
	return s.cfg.Resource
}

func (s *Service[T, P]) Schema() model.Schema {
	return s.cfg.Schema
}

func (s *Service[T, P]) authorize(ctx context.Context, caller policy.Caller, action policy.Action) error {
	return s.cfg.Policy.Authorize(ctx, caller, s.cfg.Resource, action)
}

// List returns a lazy sequence over the matching records. Ranging over it
// again runs the query again.
func (s *Service[T, P]) List(ctx context.Context, caller policy.Caller, q model.ListQuery) (iter.Seq2[*T, error], error) {
	if err := s.authorize(ctx, caller, policy.ActionList); err != nil {
		return nil, err
	}
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}
	q.Owner = nil
	return s.list(ctx, q), nil
}

// Mine is List restricted to records the caller owns.
func (s *Service[T, P]) Mine(ctx context.Context, caller policy.Caller, q model.ListQuery) (iter.Seq2[*T, error], error) {
	if err := s.authorize(ctx, caller, policy.ActionMine); err != nil {
		return nil, err
	}
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}
	owner := caller.AccountID
	q.Owner = &owner
	return s.list(ctx, q), nil
}

// MineOne returns the single record the caller owns.
func (s *Service[T, P]) MineOne(ctx context.Context, caller policy.Caller) (*T, error) {
	if err := s.authorize(ctx, caller, policy.ActionMine); err != nil {
		return nil, err
	}
	owner := caller.AccountID
	for entity, err := range s.list(ctx, model.ListQuery{Owner: &owner, PageSize: 1}) {
		if err != nil {
			return nil, err
		}
		return entity, nil
	}
	return nil, errors.NotFound(s.cfg.Resource, repository.ErrNotFound)
}

func (s *Service[T, P]) list(ctx context.Context, q model.ListQuery) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		for entity, err := range s.cfg.Repo.List(ctx, q) {
			if err != nil {
				yield(nil, Translate(s.cfg.Resource, err))
				return
			}
			if !yield(entity, nil) {
				return
			}
		}
	}
}

func (s *Service[T, P]) Retrieve(ctx context.Context, caller policy.Caller, id uuid.UUID) (*T, error) {
	if err := s.authorize(ctx, caller, policy.ActionRetrieve); err != nil {
		return nil, err
	}
	entity, err := s.cfg.Repo.Get(ctx, id)
	if err != nil {
		return nil, Translate(s.cfg.Resource, err)
	}
	return entity, nil
}

func (s *Service[T, P]) Create(ctx context.Context, caller policy.Caller, entity *T) (*T, error) {
	if err := s.authorize(ctx, caller, policy.ActionCreate); err != nil {
		return nil, err
	}

	now := s.cfg.Now()
	meta := P(entity).Meta()
	meta.ID = uuid.New()
	meta.CreatedAt = now
	if t, ok := any(entity).(model.Toucher); ok {
		t.Touch(now)
	}

	change := Change[T]{Caller: caller, Entity: entity, Now: now}
	if err := s.save(ctx, change); err != nil {
		return nil, err
	}
	if err := s.cfg.Repo.Create(ctx, entity); err != nil {
		return nil, Translate(s.cfg.Resource, err)
	}

	s.logWrite(caller, "create", meta.ID)
	return entity, nil
}

// Update applies a partial change to a copy of the stored record. The
// identifier and creation stamp always survive apply.
func (s *Service[T, P]) Update(ctx context.Context, caller policy.Caller, id uuid.UUID, apply func(*T) error) (*T, error) {
	if err := s.authorize(ctx, caller, policy.ActionUpdate); err != nil {
		return nil, err
	}

	existing, err := s.cfg.Repo.Get(ctx, id)
	if err != nil {
		return nil, Translate(s.cfg.Resource, err)
	}

	updated := *existing
	if c, ok := any(existing).(model.Cloner[T]); ok {
		updated = *c.Clone()
	}
	if err := apply(&updated); err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.BadRequest("invalid request body", err)
	}
	*P(&updated).Meta() = *P(existing).Meta()

	now := s.cfg.Now()
	if t, ok := any(&updated).(model.Toucher); ok {
		t.Touch(now)
	}

	change := Change[T]{Caller: caller, Entity: &updated, Existing: existing, Now: now}
	if err := s.save(ctx, change); err != nil {
		return nil, err
	}
	if err := s.cfg.Repo.Update(ctx, &updated); err != nil {
		return nil, Translate(s.cfg.Resource, err)
	}

	s.logWrite(caller, "update", id)
	return &updated, nil
}

func (s *Service[T, P]) Delete(ctx context.Context, caller policy.Caller, id uuid.UUID) error {
	if err := s.authorize(ctx, caller, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.cfg.Repo.Delete(ctx, id); err != nil {
		return Translate(s.cfg.Resource, err)
	}
	s.logWrite(caller, "delete", id)
	return nil
}

func (s *Service[T, P]) save(ctx context.Context, c Change[T]) error {
	if s.cfg.Prepare != nil {
		if err := s.cfg.Prepare(ctx, c); err != nil {
			return err
		}
	}
	if err := s.cfg.Validator.Validate(c.Entity); err != nil {
		return err
	}
	if s.cfg.BeforeSave != nil {
		if err := s.cfg.BeforeSave(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service[T, P]) logWrite(caller policy.Caller, action string, id uuid.UUID) {
	log.Info().
		Str("resource", s.cfg.Resource).
		Str("action", action).
		Str("id", id.String()).
		Str("account", caller.AccountID.String()).
		Msg("Record written")
}

// Translate maps repository failures onto application errors. Anything it does
// not recognise is logged and reported as internal.
func Translate(resource string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}

	field := repository.FieldOf(err)
	switch {
	case stdIs(err, repository.ErrNotFound):
		return errors.NotFound(resource, err)
	case stdIs(err, repository.ErrDuplicate):
		return errors.Conflict(fmt.Sprintf("%s already exists", field), err,
			errors.FieldError{Field: field, Message: "already exists"})
	case stdIs(err, repository.ErrRestricted):
		return errors.Conflict(fmt.Sprintf("%s is still referenced by %s", resource, field), err,
			errors.FieldError{Field: field, Message: "still references this record"})
	case stdIs(err, repository.ErrInvalidReference):
		return errors.Validation(errors.FieldError{Field: field, Message: "does not exist"})
	}

	log.Error().Err(err).Str("resource", resource).Msg("Store operation failed")
	return errors.Internal(err)
}
