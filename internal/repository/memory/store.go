// Package memory is a process-local store with the same key, reference and
// cascade rules as the relational schema. Writes are serialised on one lock,
// so a cascade is applied all at once or not at all.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

const (
	tAccounts      = "accounts"
	tClinics       = "clinics"
	tPatients      = "patients"
	tAppointments  = "appointments"
	tDentalRecords = "dental_records"
	tFiles         = "files"
	tBlocklist     = "blocklist"
	tNotes         = "notes"
	tAds           = "ads"
)

type Store struct {
	mu sync.RWMutex

	accounts      *table[model.Account]
	clinics       *table[model.Clinic]
	patients      *table[model.Patient]
	appointments  *table[model.Appointment]
	dentalRecords *table[model.DentalRecord]
	files         *table[model.File]
	blocklist     *table[model.Blocklist]
	notes         *table[model.Note]
	ads           *table[model.Ad]

	accountRepo     *accountRepo
	clinicRepo      *repo[model.Clinic, *model.Clinic]
	patientRepo     *repo[model.Patient, *model.Patient]
	appointmentRepo *repo[model.Appointment, *model.Appointment]
	recordRepo      *repo[model.DentalRecord, *model.DentalRecord]
	fileRepo        *repo[model.File, *model.File]
	blocklistRepo   *blocklistRepo
	noteRepo        *repo[model.Note, *model.Note]
	adRepo          *repo[model.Ad, *model.Ad]
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	s := &Store{
		accounts:      newTable[model.Account](),
		clinics:       newTable[model.Clinic](),
		patients:      newTable[model.Patient](),
		appointments:  newTable[model.Appointment](),
		dentalRecords: newTable[model.DentalRecord](),
		files:         newTable[model.File](),
		blocklist:     newTable[model.Blocklist](),
		notes:         newTable[model.Note](),
		ads:           newTable[model.Ad](),
	}

	s.accountRepo = &accountRepo{newRepo[model.Account, *model.Account](s, accountKind)}
	s.clinicRepo = newRepo[model.Clinic, *model.Clinic](s, clinicKind)
	s.patientRepo = newRepo[model.Patient, *model.Patient](s, patientKind)
	s.appointmentRepo = newRepo[model.Appointment, *model.Appointment](s, appointmentKind)
	s.recordRepo = newRepo[model.DentalRecord, *model.DentalRecord](s, dentalRecordKind)
	s.fileRepo = newRepo[model.File, *model.File](s, fileKind)
	s.blocklistRepo = &blocklistRepo{newRepo[model.Blocklist, *model.Blocklist](s, blocklistKind)}
	s.noteRepo = newRepo[model.Note, *model.Note](s, noteKind)
	s.adRepo = newRepo[model.Ad, *model.Ad](s, adKind)
	return s
}

func (s *Store) Accounts() repository.AccountRepository                  { return s.accountRepo }
func (s *Store) Clinics() repository.Repository[model.Clinic]             { return s.clinicRepo }
func (s *Store) Patients() repository.Repository[model.Patient]           { return s.patientRepo }
func (s *Store) Appointments() repository.Repository[model.Appointment]   { return s.appointmentRepo }
func (s *Store) DentalRecords() repository.Repository[model.DentalRecord] { return s.recordRepo }
func (s *Store) Files() repository.Repository[model.File]                 { return s.fileRepo }
func (s *Store) Blocklist() repository.BlocklistRepository                { return s.blocklistRepo }
func (s *Store) Notes() repository.Repository[model.Note]                 { return s.noteRepo }
func (s *Store) Ads() repository.Repository[model.Ad]                     { return s.adRepo }

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) apply(p *plan) {
	s.files.remove(p.ids[tFiles])
	s.dentalRecords.remove(p.ids[tDentalRecords])
	s.appointments.remove(p.ids[tAppointments])
	s.patients.remove(p.ids[tPatients])
	s.blocklist.remove(p.ids[tBlocklist])
	s.notes.remove(p.ids[tNotes])
	s.ads.remove(p.ids[tAds])
	s.clinics.remove(p.ids[tClinics])
	s.accounts.remove(p.ids[tAccounts])
}

type accountRepo struct {
	*repo[model.Account, *model.Account]
}

func (r *accountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.accounts.all() {
		if a.Username == username {
			c := *a
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

type blocklistRepo struct {
	*repo[model.Blocklist, *model.Blocklist]
}

func (r *blocklistRepo) IsBlocked(ctx context.Context, accountID *uuid.UUID, ip string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if ip != "" {
		ip = model.NormalizeIP(ip)
	}
	for _, b := range r.s.blocklist.all() {
		if accountID != nil && b.AccountID != nil && *b.AccountID == *accountID {
			return true, nil
		}
		if ip != "" && b.IPAddr != nil && *b.IPAddr == ip {
			return true, nil
		}
	}
	return false, nil
}
