package memory

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/repository"
)

func (s *Store) cascadeAccount(p *plan, id uuid.UUID) error {
	if !p.add(tAccounts, id) {
		return nil
	}
	for _, pt := range s.patients.all() {
		if pt.AccountID == id {
			if err := s.cascadePatient(p, pt.ID); err != nil {
				return err
			}
		}
	}
	for _, a := range s.appointments.all() {
		if a.AccountID == id {
			if err := s.cascadeAppointment(p, a.ID); err != nil {
				return err
			}
		}
	}
	for _, b := range s.blocklist.all() {
		if b.AccountID != nil && *b.AccountID == id {
			p.add(tBlocklist, b.ID)
		}
	}
	for _, n := range s.notes.all() {
		if n.AccountID == id {
			p.add(tNotes, n.ID)
		}
	}
	for _, a := range s.ads.all() {
		if a.AccountID == id {
			p.add(tAds, a.ID)
		}
	}
	return nil
}

// cascadeClinic refuses while patients or dental records point at the clinic.
func (s *Store) cascadeClinic(p *plan, id uuid.UUID) error {
	if !p.add(tClinics, id) {
		return nil
	}
	for _, pt := range s.patients.all() {
		if pt.ClinicID == id && !p.has(tPatients, pt.ID) {
			return repository.Constraint(repository.ErrRestricted, "patients")
		}
	}
	for _, r := range s.dentalRecords.all() {
		if r.ClinicID == id && !p.has(tDentalRecords, r.ID) {
			return repository.Constraint(repository.ErrRestricted, "dental_records")
		}
	}
	for _, a := range s.appointments.all() {
		if a.ClinicID == id {
			if err := s.cascadeAppointment(p, a.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) cascadePatient(p *plan, id uuid.UUID) error {
	if !p.add(tPatients, id) {
		return nil
	}
	for _, r := range s.dentalRecords.all() {
		if r.PatientID == id {
			p.add(tDentalRecords, r.ID)
		}
	}
	for _, a := range s.appointments.all() {
		if a.PatientID != nil && *a.PatientID == id {
			if err := s.cascadeAppointment(p, a.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) cascadeAppointment(p *plan, id uuid.UUID) error {
	if !p.add(tAppointments, id) {
		return nil
	}
	for _, f := range s.files.all() {
		if f.AppointmentID == id {
			p.add(tFiles, f.ID)
		}
	}
	return nil
}
