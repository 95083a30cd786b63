package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

var epoch = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *Store
	tick  int
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, ctx: context.Background(), store: New()}
}

func (f *fixture) base() model.Base {
	f.tick++
	return model.Base{ID: uuid.New(), CreatedAt: epoch.Add(time.Duration(f.tick) * time.Minute)}
}

func (f *fixture) account(username string) *model.Account {
	a := &model.Account{Base: f.base(), Username: username}
	require.NoError(f.t, f.store.Accounts().Create(f.ctx, a))
	return a
}

func (f *fixture) clinic(name string) *model.Clinic {
	c := &model.Clinic{Base: f.base(), Name: name, Address: name + " street"}
	require.NoError(f.t, f.store.Clinics().Create(f.ctx, c))
	return c
}

func (f *fixture) patient(account *model.Account, clinic *model.Clinic, first, phone string) *model.Patient {
	p := &model.Patient{
		Base:        f.base(),
		AccountID:   account.ID,
		ClinicID:    clinic.ID,
		FirstName:   first,
		LastName:    "Smith",
		PhoneNumber: phone,
		Birth:       model.NewDate(1990, time.May, 1),
	}
	require.NoError(f.t, f.store.Patients().Create(f.ctx, p))
	return p
}

func (f *fixture) appointment(account *model.Account, clinic *model.Clinic, patient *model.Patient) *model.Appointment {
	a := &model.Appointment{
		Base:      f.base(),
		AccountID: account.ID,
		ClinicID:  clinic.ID,
		Date:      epoch.Add(24 * time.Hour),
		Status:    model.AppointmentStatusPending,
	}
	if patient != nil {
		a.PatientID = &patient.ID
	}
	require.NoError(f.t, f.store.Appointments().Create(f.ctx, a))
	return a
}

func (f *fixture) file(appointment *model.Appointment, name string) *model.File {
	file := &model.File{Base: f.base(), AppointmentID: appointment.ID, Name: name, Type: model.FileTypePDF, File: "k/" + name}
	require.NoError(f.t, f.store.Files().Create(f.ctx, file))
	return file
}

func (f *fixture) record(clinic *model.Clinic, patient *model.Patient) *model.DentalRecord {
	r := &model.DentalRecord{
		Base:      f.base(),
		ClinicID:  clinic.ID,
		PatientID: patient.ID,
		Date:      model.DateOf(epoch),
		Complaint: "toothache",
		Diagnoses: "caries",
		Treatment: "filling",
	}
	require.NoError(f.t, f.store.DentalRecords().Create(f.ctx, r))
	return r
}

func collect[T any](t *testing.T, seq func(func(*T, error) bool)) []*T {
	var out []*T
	for item, err := range seq {
		require.NoError(t, err)
		out = append(out, item)
	}
	return out
}

func TestClinicDeleteRestrictedByPatients(t *testing.T) {
	f := newFixture(t)
	clinic := f.clinic("Downtown")
	p := f.patient(f.account("ann"), clinic, "Ann", "+15551230001")

	err := f.store.Clinics().Delete(f.ctx, clinic.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrRestricted))
	assert.Equal(t, "patients", repository.FieldOf(err))

	_, err = f.store.Clinics().Get(f.ctx, clinic.ID)
	assert.NoError(t, err, "restricted delete must leave the clinic in place")

	require.NoError(t, f.store.Patients().Delete(f.ctx, p.ID))
	assert.NoError(t, f.store.Clinics().Delete(f.ctx, clinic.ID))
}

func TestClinicDeleteRestrictedByDentalRecords(t *testing.T) {
	f := newFixture(t)
	home := f.clinic("Home")
	other := f.clinic("Other")
	p := f.patient(f.account("ann"), home, "Ann", "+15551230001")
	f.record(other, p)

	err := f.store.Clinics().Delete(f.ctx, other.ID)
	assert.True(t, errors.Is(err, repository.ErrRestricted))
	assert.Equal(t, "dental_records", repository.FieldOf(err))
}

func TestClinicDeleteCascadesAppointments(t *testing.T) {
	f := newFixture(t)
	clinic := f.clinic("Empty")
	appt := f.appointment(f.account("bob"), clinic, nil)
	file := f.file(appt, "xray.pdf")

	require.NoError(t, f.store.Clinics().Delete(f.ctx, clinic.ID))

	_, err := f.store.Appointments().Get(f.ctx, appt.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.store.Files().Get(f.ctx, file.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPatientDeleteCascades(t *testing.T) {
	f := newFixture(t)
	clinic := f.clinic("Downtown")
	owner := f.account("ann")
	p := f.patient(owner, clinic, "Ann", "+15551230001")
	record := f.record(clinic, p)
	appt := f.appointment(owner, clinic, p)
	file := f.file(appt, "scan.pdf")
	unrelated := f.appointment(owner, clinic, nil)

	require.NoError(t, f.store.Patients().Delete(f.ctx, p.ID))

	_, err := f.store.DentalRecords().Get(f.ctx, record.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.store.Appointments().Get(f.ctx, appt.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.store.Files().Get(f.ctx, file.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.store.Appointments().Get(f.ctx, unrelated.ID)
	assert.NoError(t, err)
}

func TestAccountDeleteCascades(t *testing.T) {
	f := newFixture(t)
	clinic := f.clinic("Downtown")
	owner := f.account("ann")
	p := f.patient(owner, clinic, "Ann", "+15551230001")
	note := &model.Note{Base: f.base(), AccountID: owner.ID, Title: "t", Body: "b"}
	require.NoError(t, f.store.Notes().Create(f.ctx, note))
	block := &model.Blocklist{Base: f.base(), AccountID: &owner.ID}
	require.NoError(t, f.store.Blocklist().Create(f.ctx, block))

	require.NoError(t, f.store.Accounts().Delete(f.ctx, owner.ID))

	_, err := f.store.Patients().Get(f.ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.store.Notes().Get(f.ctx, note.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.store.Blocklist().Get(f.ctx, block.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.store.Clinics().Get(f.ctx, clinic.ID)
	assert.NoError(t, err)
}

func TestUniqueKeys(t *testing.T) {
	f := newFixture(t)
	clinic := f.clinic("Downtown")
	f.patient(f.account("ann"), clinic, "Ann", "+15551234567")

	dup := &model.Patient{
		Base:        f.base(),
		AccountID:   f.account("bob").ID,
		ClinicID:    clinic.ID,
		FirstName:   "Bob",
		LastName:    "Jones",
		PhoneNumber: "+15551234567",
		Birth:       model.NewDate(1980, time.June, 2),
	}
	err := f.store.Patients().Create(f.ctx, dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Equal(t, "phonenumber", repository.FieldOf(err))

	err = f.store.Clinics().Create(f.ctx, &model.Clinic{Base: f.base(), Name: "Downtown", Address: "x"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Equal(t, "name", repository.FieldOf(err))
}

func TestUpdateKeepsOwnUniqueKey(t *testing.T) {
	f := newFixture(t)
	clinic := f.clinic("Downtown")
	clinic.Address = "new address"
	require.NoError(t, f.store.Clinics().Update(f.ctx, clinic))

	got, err := f.store.Clinics().Get(f.ctx, clinic.ID)
	require.NoError(t, err)
	assert.Equal(t, "new address", got.Address)
}

func TestInvalidReference(t *testing.T) {
	f := newFixture(t)
	err := f.store.Patients().Create(f.ctx, &model.Patient{
		Base:        f.base(),
		AccountID:   f.account("ann").ID,
		ClinicID:    uuid.New(),
		FirstName:   "Ann",
		LastName:    "Smith",
		PhoneNumber: "+15550000000",
	})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
	assert.Equal(t, "clinic", repository.FieldOf(err))
}

func TestListFiltersSearchOrdering(t *testing.T) {
	f := newFixture(t)
	north := f.clinic("North")
	south := f.clinic("South")
	f.patient(f.account("zed"), north, "Zed", "+15551230001")
	f.patient(f.account("amy"), south, "Amy", "+15551230002")
	f.patient(f.account("bea"), north, "Bea", "+15551230003")

	all := collect[model.Patient](t, f.store.Patients().List(f.ctx, model.ListQuery{}))
	require.Len(t, all, 3)
	assert.Equal(t, "Zed", all[0].FirstName, "default order is insertion order")

	inNorth := collect[model.Patient](t, f.store.Patients().List(f.ctx, model.ListQuery{
		Filters:  map[string]string{"clinic": north.ID.String()},
		Ordering: []model.Order{{Field: "first_name"}},
	}))
	require.Len(t, inNorth, 2)
	assert.Equal(t, "Bea", inNorth[0].FirstName)
	assert.Equal(t, "Zed", inNorth[1].FirstName)

	byUsername := collect[model.Patient](t, f.store.Patients().List(f.ctx, model.ListQuery{Search: "AM"}))
	require.Len(t, byUsername, 1)
	assert.Equal(t, "Amy", byUsername[0].FirstName)

	byClinicName := collect[model.Patient](t, f.store.Patients().List(f.ctx, model.ListQuery{
		Ordering: []model.Order{{Field: "clinic_name", Desc: true}, {Field: "first_name"}},
	}))
	require.Len(t, byClinicName, 3)
	assert.Equal(t, []string{"Amy", "Bea", "Zed"}, []string{byClinicName[0].FirstName, byClinicName[1].FirstName, byClinicName[2].FirstName})

	page := collect[model.Patient](t, f.store.Patients().List(f.ctx, model.ListQuery{Page: 2, PageSize: 2}))
	require.Len(t, page, 1)
	assert.Equal(t, "Bea", page[0].FirstName)
}

func TestListOwnerScopes(t *testing.T) {
	f := newFixture(t)
	clinic := f.clinic("Downtown")
	ann := f.account("ann")
	bob := f.account("bob")
	annPatient := f.patient(ann, clinic, "Ann", "+15551230001")
	f.record(clinic, annPatient)
	f.record(clinic, annPatient)
	f.appointment(ann, clinic, nil)
	f.appointment(bob, clinic, nil)
	f.appointment(ann, clinic, nil)

	appts := collect[model.Appointment](t, f.store.Appointments().List(f.ctx, model.ListQuery{Owner: &ann.ID}))
	assert.Len(t, appts, 2)

	records := collect[model.DentalRecord](t, f.store.DentalRecords().List(f.ctx, model.ListQuery{Owner: &ann.ID}))
	assert.Len(t, records, 2)
	records = collect[model.DentalRecord](t, f.store.DentalRecords().List(f.ctx, model.ListQuery{Owner: &bob.ID}))
	assert.Empty(t, records)

	for _, err := range f.store.Clinics().List(f.ctx, model.ListQuery{Owner: &ann.ID}) {
		assert.Error(t, err)
	}
}

func TestListIsRestartable(t *testing.T) {
	f := newFixture(t)
	f.clinic("One")
	seq := f.store.Clinics().List(f.ctx, model.ListQuery{})

	assert.Len(t, collect[model.Clinic](t, seq), 1)
	f.clinic("Two")
	assert.Len(t, collect[model.Clinic](t, seq), 2)
}

func TestReturnedRowsAreCopies(t *testing.T) {
	f := newFixture(t)
	owner := f.account("ann")
	clinic := f.clinic("Downtown")
	p := f.patient(owner, clinic, "Ann", "+15551230001")
	appt := f.appointment(owner, clinic, p)

	got, err := f.store.Appointments().Get(f.ctx, appt.ID)
	require.NoError(t, err)
	other := uuid.New()
	*got.PatientID = other

	again, err := f.store.Appointments().Get(f.ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, *again.PatientID)
}

func TestIsBlocked(t *testing.T) {
	f := newFixture(t)
	ann := f.account("ann")
	bob := f.account("bob")
	ip := "192.168.1.20"
	require.NoError(t, f.store.Blocklist().Create(f.ctx, &model.Blocklist{Base: f.base(), AccountID: &ann.ID}))
	require.NoError(t, f.store.Blocklist().Create(f.ctx, &model.Blocklist{Base: f.base(), IPAddr: &ip}))

	blocked, err := f.store.Blocklist().IsBlocked(f.ctx, &ann.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = f.store.Blocklist().IsBlocked(f.ctx, &bob.ID, "::ffff:192.168.1.20")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = f.store.Blocklist().IsBlocked(f.ctx, &bob.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked)

	blocked, err = f.store.Blocklist().IsBlocked(f.ctx, nil, "")
	require.NoError(t, err)
	assert.False(t, blocked)

	dup := &model.Blocklist{Base: f.base(), AccountID: &ann.ID}
	assert.ErrorIs(t, f.store.Blocklist().Create(f.ctx, dup), repository.ErrDuplicate)
}
