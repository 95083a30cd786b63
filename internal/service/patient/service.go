package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/policy"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/resource"
	"github.com/jwalitptl/dental-api/pkg/errors"
)

type Blocker interface {
	Create(ctx context.Context, caller policy.Caller, entry *model.Blocklist) (*model.Blocklist, error)
}

// Service holds the patient actions that do not fit the generic resource shape.
type Service struct {
	repo   repository.Repository[model.Patient]
	blocks Blocker
	policy resource.Authorizer
}

func NewService(repo repository.Repository[model.Patient], blocks Blocker, authorizer resource.Authorizer) *Service {
	return &Service{
		repo:   repo,
		blocks: blocks,
		policy: authorizer,
	}
}

// Block adds the patient's account to the blocklist.
func (s *Service) Block(ctx context.Context, caller policy.Caller, patientID uuid.UUID) (*model.Blocklist, error) {
	if err := s.policy.Authorize(ctx, caller, model.ResourcePatients, policy.ActionBlock); err != nil {
		return nil, err
	}

	patient, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, resource.Translate(model.ResourcePatients, err)
	}

	account := patient.AccountID
	entry, err := s.blocks.Create(ctx, caller, &model.Blocklist{AccountID: &account})
	if err != nil {
		if errors.Is(err, errors.ErrConflict) {
			return nil, errors.Conflict("patient is already blocked", err,
				errors.FieldError{Field: "account", Message: "already blocked"})
		}
		return nil, err
	}

	log.Info().
		Str("patient", patientID.String()).
		Str("account", account.String()).
		Str("blocked_by", caller.AccountID.String()).
		Msg("Patient blocked")
	return entry, nil
}
