package repository

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
)

type (
	// Repository is the storage contract shared by every entity.
	// List returns a lazy sequence; each range over it runs the query again.
	Repository[T any] interface {
		Create(ctx context.Context, entity *T) error
		Get(ctx context.Context, id uuid.UUID) (*T, error)
		Update(ctx context.Context, entity *T) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, query model.ListQuery) iter.Seq2[*T, error]
	}

	AccountRepository interface {
		Repository[model.Account]
		GetByUsername(ctx context.Context, username string) (*model.Account, error)
	}

	BlocklistRepository interface {
		Repository[model.Blocklist]
		// IsBlocked matches either key; a nil account or empty address is skipped.
		IsBlocked(ctx context.Context, accountID *uuid.UUID, ip string) (bool, error)
	}

	Store interface {
		Accounts() AccountRepository
		Clinics() Repository[model.Clinic]
		Patients() Repository[model.Patient]
		Appointments() Repository[model.Appointment]
		DentalRecords() Repository[model.DentalRecord]
		Files() Repository[model.File]
		Blocklist() BlocklistRepository
		Notes() Repository[model.Note]
		Ads() Repository[model.Ad]
		Ping(ctx context.Context) error
		Close() error
	}
)
