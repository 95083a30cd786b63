package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

type Store struct {
	db *sqlx.DB

	accounts      *accountRepository
	clinics       *repo[model.Clinic]
	patients      *repo[model.Patient]
	appointments  *repo[model.Appointment]
	dentalRecords *repo[model.DentalRecord]
	files         *repo[model.File]
	blocklist     *blocklistRepository
	notes         *repo[model.Note]
	ads           *repo[model.Ad]
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *sqlx.DB, m *metrics.Metrics) *Store {
	base := NewBaseRepository(db)
	return &Store{
		db:            db,
		accounts:      &accountRepository{newRepo[model.Account](base, accountTable, m)},
		clinics:       newRepo[model.Clinic](base, clinicTable, m),
		patients:      newRepo[model.Patient](base, patientTable, m),
		appointments:  newRepo[model.Appointment](base, appointmentTable, m),
		dentalRecords: newRepo[model.DentalRecord](base, dentalRecordTable, m),
		files:         newRepo[model.File](base, fileTable, m),
		blocklist:     &blocklistRepository{newRepo[model.Blocklist](base, blocklistTable, m)},
		notes:         newRepo[model.Note](base, noteTable, m),
		ads:           newRepo[model.Ad](base, adTable, m),
	}
}

func (s *Store) Accounts() repository.AccountRepository                  { return s.accounts }
func (s *Store) Clinics() repository.Repository[model.Clinic]             { return s.clinics }
func (s *Store) Patients() repository.Repository[model.Patient]           { return s.patients }
func (s *Store) Appointments() repository.Repository[model.Appointment]   { return s.appointments }
func (s *Store) DentalRecords() repository.Repository[model.DentalRecord] { return s.dentalRecords }
func (s *Store) Files() repository.Repository[model.File]                 { return s.files }
func (s *Store) Blocklist() repository.BlocklistRepository                { return s.blocklist }
func (s *Store) Notes() repository.Repository[model.Note]                 { return s.notes }
func (s *Store) Ads() repository.Repository[model.Ad]                     { return s.ads }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type accountRepository struct {
	*repo[model.Account]
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	start := time.Now()
	query := "SELECT " + r.def.selectColumns() + " FROM accounts a WHERE a.username = $1"

	var account model.Account
	err := r.db.GetContext(ctx, &account, query, username)
	if err := r.observe("get", start, err); err != nil {
		return nil, err
	}
	return &account, nil
}

type blocklistRepository struct {
	*repo[model.Blocklist]
}

func (r *blocklistRepository) IsBlocked(ctx context.Context, accountID *uuid.UUID, ip string) (bool, error) {
	start := time.Now()
	query := `SELECT EXISTS (
		SELECT 1 FROM blocklist
		WHERE account_id = $1 OR ip_addr = $2
	)`

	var addr interface{}
	if ip != "" {
		addr = model.NormalizeIP(ip)
	}

	var blocked bool
	err := r.db.GetContext(ctx, &blocked, query, accountID, addr)
	if err := r.observe("check", start, err); err != nil {
		return false, err
	}
	return blocked, nil
}
