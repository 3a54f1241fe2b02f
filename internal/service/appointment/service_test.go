package appointment

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbook/appointment-api/internal/model"
	"github.com/medbook/appointment-api/internal/repository"
	"github.com/medbook/appointment-api/internal/service/doctor"
	"github.com/medbook/appointment-api/internal/service/notification"
	"github.com/medbook/appointment-api/internal/service/patient"
	apperrors "github.com/medbook/appointment-api/pkg/errors"
	"github.com/medbook/appointment-api/pkg/logger"
	"github.com/medbook/appointment-api/pkg/metrics"
)

// Metrics register on the global prometheus registry, so they are created
// once for the whole test binary.
var (
	testMetrics     *metrics.Metrics
	testMetricsOnce sync.Once
)

func sharedMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewMetrics("appointment_test")
	})
	return testMetrics
}

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	appts map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.appts[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[a.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *a
	r.appts[a.ID] = &cp
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func (r *fakeAppointmentRepo) FindByDoctorAndDate(_ context.Context, doctorID uuid.UUID, date time.Time, statuses []model.AppointmentStatus) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	allowed := make(map[model.AppointmentStatus]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}

	var out []*model.Appointment
	for _, a := range r.appts {
		if a.DoctorID == doctorID && sameDay(a.Date, date) && allowed[a.Status] {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *fakeAppointmentRepo) CountByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []model.AppointmentStatus) (int, error) {
	appts, err := r.FindByDoctorAndDate(ctx, doctorID, date, statuses)
	return len(appts), err
}

func (r *fakeAppointmentRepo) ListForPatient(_ context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appts {
		if a.PatientID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortByDateAndStart(out)
	return out, nil
}

func (r *fakeAppointmentRepo) ListForDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appts {
		if a.DoctorID == doctorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortByDateAndStart(out)
	return out, nil
}

func sortByDateAndStart(appts []*model.Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		if !appts[i].Date.Equal(appts[j].Date) {
			return appts[i].Date.Before(appts[j].Date)
		}
		return appts[i].StartTime < appts[j].StartTime
	})
}

type fakePatientRepo struct {
	entries map[uuid.UUID]*model.PatientEntry
}

func (r *fakePatientRepo) CreateEntry(_ context.Context, e *model.PatientEntry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *fakePatientRepo) GetEntry(_ context.Context, id uuid.UUID) (*model.PatientEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

func (r *fakePatientRepo) ListEntries(_ context.Context, userID uuid.UUID) ([]*model.PatientEntry, error) {
	var out []*model.PatientEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (r *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	r.doctors[d.ID] = d
	return nil
}

func (r *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (r *fakeDoctorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Doctor, error) {
	for _, d := range r.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

type notifyCall struct {
	UserID    uuid.UUID
	Recipient string
	Subject   string
	Content   string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

var _ notification.Service = (*fakeNotifier)(nil)

func (n *fakeNotifier) Notify(_ context.Context, userID uuid.UUID, recipient, subject, content string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{userID, recipient, subject, content})
}

func (n *fakeNotifier) Calls() []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifyCall(nil), n.calls...)
}

type fixture struct {
	svc      *Service
	repo     *fakeAppointmentRepo
	notifier *fakeNotifier

	userID  uuid.UUID
	entryID uuid.UUID
	doc     *model.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	userID := uuid.New()
	entry := &model.PatientEntry{
		Base:     model.Base{ID: uuid.New()},
		UserID:   userID,
		Name:     "Jordan Smith",
		Relation: model.PatientRelationSelf,
		Email:    "jordan@example.com",
	}
	doc := &model.Doctor{
		Base:   model.Base{ID: uuid.New()},
		UserID: uuid.New(),
		Name:   "Dr. Patel",
		Email:  "patel@example.com",
		Fee:    120,
		City:   "Austin",
	}

	repo := newFakeAppointmentRepo()
	notifier := &fakeNotifier{}
	patients := patient.NewService(&fakePatientRepo{entries: map[uuid.UUID]*model.PatientEntry{entry.ID: entry}})
	doctors := doctor.NewService(&fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{doc.ID: doc}})

	svc := NewService(repo, patients, doctors, notifier, sharedMetrics(), logger.NewLogger(nil))

	return &fixture{
		svc:      svc,
		repo:     repo,
		notifier: notifier,
		userID:   userID,
		entryID:  entry.ID,
		doc:      doc,
	}
}

func (f *fixture) bookRequest(date, start, end string) *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		PatientEntryID: f.entryID.String(),
		DoctorID:       f.doc.ID.String(),
		Date:           date,
		StartTime:      start,
		EndTime:        end,
	}
}

func (f *fixture) mustBook(t *testing.T, date, start, end string) *model.Appointment {
	t.Helper()
	appt, err := f.svc.Book(context.Background(), f.userID, f.bookRequest(date, start, end))
	require.NoError(t, err)
	return appt
}

func TestBookAppointment(t *testing.T) {
	f := newFixture(t)

	appt := f.mustBook(t, "2025-10-01", "10:00", "10:30")

	assert.Equal(t, model.AppointmentStatusPending, appt.Status)
	assert.Equal(t, f.doc.Fee, appt.Fee, "fee is snapshotted from the doctor profile")
	assert.Equal(t, f.doc.City, appt.DoctorLocation)
	assert.Equal(t, f.userID, appt.PatientID)

	calls := f.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, f.doc.Email, calls[0].Recipient)
	assert.Contains(t, calls[0].Content, "2025-10-01")
	assert.Contains(t, calls[0].Content, "10:00")
}

func TestBookConflictSuggestsNextSlot(t *testing.T) {
	f := newFixture(t)
	f.mustBook(t, "2025-10-01", "10:00", "10:30")
	f.mustBook(t, "2025-10-01", "11:00", "11:30")

	_, err := f.svc.Book(context.Background(), f.userID, f.bookRequest("2025-10-01", "10:00", "10:30"))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrSlotConflict, appErr.Code)
	assert.Equal(t, "10:30", appErr.SuggestedSlot, "the 10:30-11:00 gap is free")
	assert.Contains(t, appErr.Message, "10:30")
}

func TestBookPartialOverlapIsConflict(t *testing.T) {
	f := newFixture(t)
	f.mustBook(t, "2025-10-01", "10:00", "11:00")

	// Not an exact start-time match, but the intervals overlap.
	_, err := f.svc.Book(context.Background(), f.userID, f.bookRequest("2025-10-01", "10:30", "11:00"))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrSlotConflict, appErr.Code)
}

func TestBookCapacityExceeded(t *testing.T) {
	f := newFixture(t)

	slots := [][2]string{
		{"09:00", "09:30"}, {"09:30", "10:00"}, {"10:00", "10:30"}, {"10:30", "11:00"},
		{"11:00", "11:30"}, {"11:30", "12:00"}, {"12:00", "12:30"}, {"12:30", "13:00"},
		{"13:00", "13:30"}, {"13:30", "14:00"},
	}
	for _, slot := range slots {
		f.mustBook(t, "2025-10-01", slot[0], slot[1])
	}

	_, err := f.svc.Book(context.Background(), f.userID, f.bookRequest("2025-10-01", "15:00", "15:30"))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCapacityExceeded, appErr.Code)

	// A different date is unaffected by the cap.
	f.mustBook(t, "2025-10-02", "09:00", "09:30")
}

func TestBookIgnoresRejectedAppointments(t *testing.T) {
	f := newFixture(t)
	appt := f.mustBook(t, "2025-10-01", "10:00", "10:30")

	_, err := f.svc.Respond(context.Background(), appt.ID, &model.RespondAppointmentRequest{Action: "REJECT"})
	require.NoError(t, err)

	// The rejected appointment frees its slot.
	f.mustBook(t, "2025-10-01", "10:00", "10:30")
}

func TestBookUnownedEntryFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), uuid.New(), f.bookRequest("2025-10-01", "10:00", "10:30"))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestBookInvalidInterval(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), f.userID, f.bookRequest("2025-10-01", "10:30", "10:00"))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
}

// Two concurrent requests for the same doctor and slot: exactly one must
// win, the other must fail with a slot conflict.
func TestConcurrentBookingSameSlot(t *testing.T) {
	f := newFixture(t)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Book(context.Background(), f.userID, f.bookRequest("2025-10-05", "09:00", "09:30"))
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrSlotConflict, appErr.Code)
		conflicts++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestRespondAccept(t *testing.T) {
	f := newFixture(t)
	appt := f.mustBook(t, "2025-10-01", "10:00", "10:30")

	updated, err := f.svc.Respond(context.Background(), appt.ID, &model.RespondAppointmentRequest{Action: "ACCEPT"})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusAccepted, updated.Status)

	calls := f.notifier.Calls()
	require.Len(t, calls, 2, "booking notified the doctor, response notifies the patient")
	last := calls[len(calls)-1]
	assert.Equal(t, "jordan@example.com", last.Recipient)
	assert.Contains(t, last.Subject, "accepted")
	assert.Contains(t, last.Content, "2025-10-01")
	assert.Contains(t, last.Content, "10:00")
	assert.Contains(t, last.Content, string(model.AppointmentStatusAccepted))
}

func TestRespondRejectIsTerminal(t *testing.T) {
	f := newFixture(t)
	appt := f.mustBook(t, "2025-10-01", "10:00", "10:30")

	updated, err := f.svc.Respond(context.Background(), appt.ID, &model.RespondAppointmentRequest{Action: "REJECT"})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusRejected, updated.Status)

	_, err = f.svc.Respond(context.Background(), appt.ID, &model.RespondAppointmentRequest{Action: "ACCEPT"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
}

func TestRespondRescheduleRequiresNewSlot(t *testing.T) {
	f := newFixture(t)
	appt := f.mustBook(t, "2025-10-01", "10:00", "10:30")

	for _, req := range []*model.RespondAppointmentRequest{
		{Action: "RESCHEDULE"},
		{Action: "RESCHEDULE", NewDate: "2025-10-02"},
		{Action: "RESCHEDULE", NewDate: "2025-10-02", NewStartTime: "11:00"},
	} {
		_, err := f.svc.Respond(context.Background(), appt.ID, req)
		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	}
}

func TestRespondReschedule(t *testing.T) {
	f := newFixture(t)
	appt := f.mustBook(t, "2025-10-01", "10:00", "10:30")

	updated, err := f.svc.Respond(context.Background(), appt.ID, &model.RespondAppointmentRequest{
		Action:       "RESCHEDULE",
		NewDate:      "2025-10-03",
		NewStartTime: "14:00",
		NewEndTime:   "14:30",
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusRescheduled, updated.Status)
	assert.Equal(t, "14:00", updated.StartTime)
	assert.Equal(t, "14:30", updated.EndTime)
	assert.Equal(t, "2025-10-03", updated.Date.Format("2006-01-02"))
}

func TestRespondRescheduleRevalidatesNewSlot(t *testing.T) {
	f := newFixture(t)
	blocker := f.mustBook(t, "2025-10-01", "10:00", "10:30")
	_ = blocker
	appt := f.mustBook(t, "2025-10-01", "12:00", "12:30")

	_, err := f.svc.Respond(context.Background(), appt.ID, &model.RespondAppointmentRequest{
		Action:       "RESCHEDULE",
		NewDate:      "2025-10-01",
		NewStartTime: "10:00",
		NewEndTime:   "10:30",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrSlotConflict, appErr.Code)
}

func TestRespondRescheduleOntoOwnSlot(t *testing.T) {
	f := newFixture(t)
	appt := f.mustBook(t, "2025-10-01", "10:00", "10:30")

	// Moving within its own interval must not conflict with itself.
	updated, err := f.svc.Respond(context.Background(), appt.ID, &model.RespondAppointmentRequest{
		Action:       "RESCHEDULE",
		NewDate:      "2025-10-01",
		NewStartTime: "10:00",
		NewEndTime:   "10:30",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusRescheduled, updated.Status)
}

func TestRespondInvalidAction(t *testing.T) {
	f := newFixture(t)
	appt := f.mustBook(t, "2025-10-01", "10:00", "10:30")

	_, err := f.svc.Respond(context.Background(), appt.ID, &model.RespondAppointmentRequest{Action: "CANCEL"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInvalidAction, appErr.Code)
}

func TestRespondUnknownAppointment(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Respond(context.Background(), uuid.New(), &model.RespondAppointmentRequest{Action: "ACCEPT"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestGetAppointmentsSorted(t *testing.T) {
	f := newFixture(t)
	f.mustBook(t, "2025-10-02", "09:00", "09:30")
	f.mustBook(t, "2025-10-01", "15:00", "15:30")
	f.mustBook(t, "2025-10-01", "09:30", "10:00")

	appts, err := f.svc.GetAppointments(context.Background(), f.userID, "patient")
	require.NoError(t, err)
	require.Len(t, appts, 3)

	assert.Equal(t, "09:30", appts[0].StartTime)
	assert.Equal(t, "15:00", appts[1].StartTime)
	assert.Equal(t, "2025-10-02", appts[2].Date.Format("2006-01-02"))

	docAppts, err := f.svc.GetAppointments(context.Background(), f.doc.UserID, "doctor")
	require.NoError(t, err)
	assert.Len(t, docAppts, 3)

	_, err = f.svc.GetAppointments(context.Background(), f.userID, "admin")
	require.Error(t, err)
}

func TestNextAvailableSlot(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time {
		return time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)
	}

	f.mustBook(t, "2025-10-01", "09:00", "09:30")
	f.mustBook(t, "2025-10-01", "10:00", "10:30")

	slot, err := f.svc.NextAvailableSlot(context.Background(), f.doc.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 1, 11, 0, 0, 0, time.UTC), slot)
}

func TestNextAvailableSlotUnknownDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.NextAvailableSlot(context.Background(), uuid.New())
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

