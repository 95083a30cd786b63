// Package catalog wires one resource service per entity with the hooks that
// make each entity behave the way it should.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/resource"
	"github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/security"
	"github.com/jwalitptl/dental-api/pkg/validator"
)

type Catalog struct {
	Accounts      *resource.Service[model.Account, *model.Account]
	Clinics       *resource.Service[model.Clinic, *model.Clinic]
	Patients      *resource.Service[model.Patient, *model.Patient]
	Appointments  *resource.Service[model.Appointment, *model.Appointment]
	DentalRecords *resource.Service[model.DentalRecord, *model.DentalRecord]
	Files         *resource.Service[model.File, *model.File]
	Blocklist     *resource.Service[model.Blocklist, *model.Blocklist]
	Notes         *resource.Service[model.Note, *model.Note]
	Ads           *resource.Service[model.Ad, *model.Ad]
}

type Options struct {
	Store     repository.Store
	Policy    resource.Authorizer
	Validator validator.Validator
	Hasher    security.PasswordHasher
	Now       func() time.Time
}

func New(opts Options) *Catalog {
	if opts.Validator == nil {
		opts.Validator = validator.New(model.Date{})
	}
	if opts.Hasher == nil {
		opts.Hasher = security.NewBcryptHasher(0)
	}

	return &Catalog{
		Accounts: build[model.Account, *model.Account](opts, model.ResourceAccounts, model.AccountSchema, opts.Store.Accounts(),
			nil, hashPassword(opts.Hasher)),
		Clinics: build[model.Clinic, *model.Clinic](opts, model.ResourceClinics, model.ClinicSchema, opts.Store.Clinics(),
			nil, nil),
		Patients: build[model.Patient, *model.Patient](opts, model.ResourcePatients, model.PatientSchema, opts.Store.Patients(),
			forceOwner(func(p *model.Patient) *uuid.UUID { return &p.AccountID }), nil),
		Appointments: build[model.Appointment, *model.Appointment](opts, model.ResourceAppointments, model.AppointmentSchema, opts.Store.Appointments(),
			forceOwner(func(a *model.Appointment) *uuid.UUID { return &a.AccountID }), nil),
		DentalRecords: build[model.DentalRecord, *model.DentalRecord](opts, model.ResourceDentalRecords, model.DentalRecordSchema, opts.Store.DentalRecords(),
			stampRecordDate, nil),
		Files: build[model.File, *model.File](opts, model.ResourceFiles, model.FileSchema, opts.Store.Files(),
			nil, nil),
		Blocklist: build[model.Blocklist, *model.Blocklist](opts, model.ResourceBlocklist, model.BlocklistSchema, opts.Store.Blocklist(),
			normalizeBlock, nil),
		Notes: build[model.Note, *model.Note](opts, model.ResourceNotes, model.NoteSchema, opts.Store.Notes(),
			nil, nil),
		Ads: build[model.Ad, *model.Ad](opts, model.ResourceAds, model.AdSchema, opts.Store.Ads(),
			nil, nil),
	}
}

func build[T any, P model.Record[T]](opts Options, name string, schema model.Schema, repo repository.Repository[T],
	prepare, beforeSave resource.Hook[T]) *resource.Service[T, P] {
	return resource.New[T, P](resource.Config[T]{
		Resource:   name,
		Schema:     schema,
		Repo:       repo,
		Policy:     opts.Policy,
		Validator:  opts.Validator,
		Prepare:    prepare,
		BeforeSave: beforeSave,
		Now:        opts.Now,
	})
}

// hashPassword replaces a plain password with its hash. An update without a
// password keeps the stored hash.
func hashPassword(hasher security.PasswordHasher) resource.Hook[model.Account] {
	return func(_ context.Context, c resource.Change[model.Account]) error {
		account := c.Entity
		if account.Password == "" {
			if c.Existing == nil {
				return errors.Validation(errors.FieldError{Field: "password", Message: "this field is required"})
			}
			return nil
		}

		hash, err := hasher.Hash(account.Password)
		if err != nil {
			return errors.Internal(err)
		}
		account.PasswordHash = hash
		account.Password = ""
		return nil
	}
}

func stampRecordDate(_ context.Context, c resource.Change[model.DentalRecord]) error {
	if c.Existing == nil {
		c.Entity.Date = model.DateOf(c.Now)
	} else {
		c.Entity.Date = c.Existing.Date
	}
	return nil
}

func normalizeBlock(_ context.Context, c resource.Change[model.Blocklist]) error {
	c.Entity.Normalize()
	if c.Entity.Empty() {
		return errors.Validation(
			errors.FieldError{Field: "account", Message: "either account or ip_addr is required"},
			errors.FieldError{Field: "ip_addr", Message: "either account or ip_addr is required"},
		)
	}
	return nil
}

// forceOwner pins a non-admin caller's records to its own account. On update
// the stored owner is kept.
func forceOwner[T any](account func(*T) *uuid.UUID) resource.Hook[T] {
	return func(_ context.Context, c resource.Change[T]) error {
		if c.Caller.IsAdmin {
			return nil
		}
		owner := c.Caller.AccountID
		if c.Existing != nil {
			owner = *account(c.Existing)
		}
		*account(c.Entity) = owner
		return nil
	}
}
