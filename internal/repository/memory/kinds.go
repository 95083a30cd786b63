package memory

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

func (s *Store) accountExists(id uuid.UUID) bool {
	_, ok := s.accounts.get(id)
	return ok
}

func (s *Store) username(id uuid.UUID) string {
	if a, ok := s.accounts.get(id); ok {
		return a.Username
	}
	return ""
}

func missing(field string) error {
	return repository.Constraint(repository.ErrInvalidReference, field)
}

var accountKind = kind[model.Account]{
	name:  "account",
	table: func(s *Store) *table[model.Account] { return s.accounts },
	fields: map[string]func(*Store, *model.Account) string{
		"username":   func(_ *Store, a *model.Account) string { return a.Username },
		"is_admin":   func(_ *Store, a *model.Account) string { return boolKey(a.IsAdmin) },
		"created_at": func(_ *Store, a *model.Account) string { return timeKey(a.CreatedAt) },
	},
	search: model.AccountSchema.Search,
	owner:  func(_ *Store, a *model.Account) uuid.UUID { return a.ID },
	unique: []uniqueKey[model.Account]{
		{field: "username", key: func(a *model.Account) string { return a.Username }},
	},
	cascade: (*Store).cascadeAccount,
}

var clinicKind = kind[model.Clinic]{
	name:  "clinic",
	table: func(s *Store) *table[model.Clinic] { return s.clinics },
	fields: map[string]func(*Store, *model.Clinic) string{
		"name":       func(_ *Store, c *model.Clinic) string { return c.Name },
		"address":    func(_ *Store, c *model.Clinic) string { return c.Address },
		"created_at": func(_ *Store, c *model.Clinic) string { return timeKey(c.CreatedAt) },
	},
	search: model.ClinicSchema.Search,
	unique: []uniqueKey[model.Clinic]{
		{field: "name", key: func(c *model.Clinic) string { return c.Name }},
	},
	cascade: (*Store).cascadeClinic,
}

var patientKind = kind[model.Patient]{
	name:  "patient",
	table: func(s *Store) *table[model.Patient] { return s.patients },
	fields: map[string]func(*Store, *model.Patient) string{
		"clinic":        func(_ *Store, p *model.Patient) string { return uuidKey(p.ClinicID) },
		"gender":        func(_ *Store, p *model.Patient) string { return string(p.Gender) },
		"social_status": func(_ *Store, p *model.Patient) string { return string(p.SocialStatus) },
		"first_name":    func(_ *Store, p *model.Patient) string { return p.FirstName },
		"last_name":     func(_ *Store, p *model.Patient) string { return p.LastName },
		"father_name":   func(_ *Store, p *model.Patient) string { return p.FatherName },
		"mother_name":   func(_ *Store, p *model.Patient) string { return p.MotherName },
		"username":      func(s *Store, p *model.Patient) string { return s.username(p.AccountID) },
		"birth":         func(_ *Store, p *model.Patient) string { return p.Birth.String() },
		"created_at":    func(_ *Store, p *model.Patient) string { return timeKey(p.CreatedAt) },
		"clinic_name": func(s *Store, p *model.Patient) string {
			if c, ok := s.clinics.get(p.ClinicID); ok {
				return c.Name
			}
			return ""
		},
	},
	search: model.PatientSchema.Search,
	owner:  func(_ *Store, p *model.Patient) uuid.UUID { return p.AccountID },
	unique: []uniqueKey[model.Patient]{
		{field: "phonenumber", key: func(p *model.Patient) string { return p.PhoneNumber }},
		{field: "account", key: func(p *model.Patient) string { return uuidKey(p.AccountID) }},
	},
	refs: func(s *Store, p *model.Patient) error {
		if !s.accountExists(p.AccountID) {
			return missing("account")
		}
		if _, ok := s.clinics.get(p.ClinicID); !ok {
			return missing("clinic")
		}
		return nil
	},
	cascade: (*Store).cascadePatient,
}

var appointmentKind = kind[model.Appointment]{
	name:  "appointment",
	table: func(s *Store) *table[model.Appointment] { return s.appointments },
	fields: map[string]func(*Store, *model.Appointment) string{
		"clinic":     func(_ *Store, a *model.Appointment) string { return uuidKey(a.ClinicID) },
		"account":    func(_ *Store, a *model.Appointment) string { return uuidKey(a.AccountID) },
		"status":     func(_ *Store, a *model.Appointment) string { return string(a.Status) },
		"date":       func(_ *Store, a *model.Appointment) string { return timeKey(a.Date) },
		"created_at": func(_ *Store, a *model.Appointment) string { return timeKey(a.CreatedAt) },
	},
	owner: func(_ *Store, a *model.Appointment) uuid.UUID { return a.AccountID },
	refs: func(s *Store, a *model.Appointment) error {
		if !s.accountExists(a.AccountID) {
			return missing("account")
		}
		if _, ok := s.clinics.get(a.ClinicID); !ok {
			return missing("clinic")
		}
		if a.PatientID != nil {
			if _, ok := s.patients.get(*a.PatientID); !ok {
				return missing("patient")
			}
		}
		return nil
	},
	cascade: (*Store).cascadeAppointment,
	clone:   (*model.Appointment).Clone,
}

var dentalRecordKind = kind[model.DentalRecord]{
	name:  "dental record",
	table: func(s *Store) *table[model.DentalRecord] { return s.dentalRecords },
	fields: map[string]func(*Store, *model.DentalRecord) string{
		"clinic":     func(_ *Store, r *model.DentalRecord) string { return uuidKey(r.ClinicID) },
		"patient":    func(_ *Store, r *model.DentalRecord) string { return uuidKey(r.PatientID) },
		"complaint":  func(_ *Store, r *model.DentalRecord) string { return r.Complaint },
		"diagnoses":  func(_ *Store, r *model.DentalRecord) string { return r.Diagnoses },
		"treatment":  func(_ *Store, r *model.DentalRecord) string { return r.Treatment },
		"date":       func(_ *Store, r *model.DentalRecord) string { return r.Date.String() },
		"created_at": func(_ *Store, r *model.DentalRecord) string { return timeKey(r.CreatedAt) },
		"patient_first_name": func(s *Store, r *model.DentalRecord) string {
			if p, ok := s.patients.get(r.PatientID); ok {
				return p.FirstName
			}
			return ""
		},
		"patient_last_name": func(s *Store, r *model.DentalRecord) string {
			if p, ok := s.patients.get(r.PatientID); ok {
				return p.LastName
			}
			return ""
		},
	},
	search: model.DentalRecordSchema.Search,
	owner: func(s *Store, r *model.DentalRecord) uuid.UUID {
		if p, ok := s.patients.get(r.PatientID); ok {
			return p.AccountID
		}
		return uuid.Nil
	},
	refs: func(s *Store, r *model.DentalRecord) error {
		if _, ok := s.clinics.get(r.ClinicID); !ok {
			return missing("clinic")
		}
		if _, ok := s.patients.get(r.PatientID); !ok {
			return missing("patient")
		}
		return nil
	},
	cascade: func(_ *Store, p *plan, id uuid.UUID) error {
		p.add(tDentalRecords, id)
		return nil
	},
}

var fileKind = kind[model.File]{
	name:  "file",
	table: func(s *Store) *table[model.File] { return s.files },
	fields: map[string]func(*Store, *model.File) string{
		"appointment": func(_ *Store, f *model.File) string { return uuidKey(f.AppointmentID) },
		"type":        func(_ *Store, f *model.File) string { return string(f.Type) },
		"name":        func(_ *Store, f *model.File) string { return f.Name },
		"file":        func(_ *Store, f *model.File) string { return f.File },
	},
	search: model.FileSchema.Search,
	owner: func(s *Store, f *model.File) uuid.UUID {
		if a, ok := s.appointments.get(f.AppointmentID); ok {
			return a.AccountID
		}
		return uuid.Nil
	},
	refs: func(s *Store, f *model.File) error {
		if _, ok := s.appointments.get(f.AppointmentID); !ok {
			return missing("appointment")
		}
		return nil
	},
	cascade: func(_ *Store, p *plan, id uuid.UUID) error {
		p.add(tFiles, id)
		return nil
	},
}

var blocklistKind = kind[model.Blocklist]{
	name:  "blocklist entry",
	table: func(s *Store) *table[model.Blocklist] { return s.blocklist },
	fields: map[string]func(*Store, *model.Blocklist) string{
		"account": func(_ *Store, b *model.Blocklist) string {
			if b.AccountID == nil {
				return ""
			}
			return uuidKey(*b.AccountID)
		},
		"username": func(s *Store, b *model.Blocklist) string {
			if b.AccountID == nil {
				return ""
			}
			return s.username(*b.AccountID)
		},
		"ip_addr": func(_ *Store, b *model.Blocklist) string {
			if b.IPAddr == nil {
				return ""
			}
			return *b.IPAddr
		},
		"created_at": func(_ *Store, b *model.Blocklist) string { return timeKey(b.CreatedAt) },
	},
	search: model.BlocklistSchema.Search,
	unique: []uniqueKey[model.Blocklist]{
		{field: "account", key: func(b *model.Blocklist) string {
			if b.AccountID == nil {
				return ""
			}
			return uuidKey(*b.AccountID)
		}},
	},
	refs: func(s *Store, b *model.Blocklist) error {
		if b.AccountID != nil && !s.accountExists(*b.AccountID) {
			return missing("account")
		}
		return nil
	},
	cascade: func(_ *Store, p *plan, id uuid.UUID) error {
		p.add(tBlocklist, id)
		return nil
	},
	clone: (*model.Blocklist).Clone,
}

var noteKind = kind[model.Note]{
	name:  "note",
	table: func(s *Store) *table[model.Note] { return s.notes },
	fields: map[string]func(*Store, *model.Note) string{
		"title":      func(_ *Store, n *model.Note) string { return n.Title },
		"body":       func(_ *Store, n *model.Note) string { return n.Body },
		"account":    func(_ *Store, n *model.Note) string { return uuidKey(n.AccountID) },
		"created_at": func(_ *Store, n *model.Note) string { return timeKey(n.CreatedAt) },
	},
	search: model.NoteSchema.Search,
	owner:  func(_ *Store, n *model.Note) uuid.UUID { return n.AccountID },
	unique: []uniqueKey[model.Note]{
		{field: "account", key: func(n *model.Note) string { return uuidKey(n.AccountID) }},
	},
	refs: func(s *Store, n *model.Note) error {
		if !s.accountExists(n.AccountID) {
			return missing("account")
		}
		return nil
	},
	cascade: func(_ *Store, p *plan, id uuid.UUID) error {
		p.add(tNotes, id)
		return nil
	},
}

var adKind = kind[model.Ad]{
	name:  "ad",
	table: func(s *Store) *table[model.Ad] { return s.ads },
	fields: map[string]func(*Store, *model.Ad) string{
		"account":    func(_ *Store, a *model.Ad) string { return uuidKey(a.AccountID) },
		"created_at": func(_ *Store, a *model.Ad) string { return timeKey(a.CreatedAt) },
		"expires_at": func(_ *Store, a *model.Ad) string {
			if a.ExpiresAt == nil {
				return ""
			}
			return a.ExpiresAt.String()
		},
	},
	owner: func(_ *Store, a *model.Ad) uuid.UUID { return a.AccountID },
	unique: []uniqueKey[model.Ad]{
		{field: "account", key: func(a *model.Ad) string { return uuidKey(a.AccountID) }},
	},
	refs: func(s *Store, a *model.Ad) error {
		if !s.accountExists(a.AccountID) {
			return missing("account")
		}
		return nil
	},
	cascade: func(_ *Store, p *plan, id uuid.UUID) error {
		p.add(tAds, id)
		return nil
	},
	clone: (*model.Ad).Clone,
}
