package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/medbook/appointment-api/internal/model"
	"github.com/medbook/appointment-api/internal/repository"
	"github.com/medbook/appointment-api/internal/schedule"
	"github.com/medbook/appointment-api/internal/service/doctor"
	"github.com/medbook/appointment-api/internal/service/notification"
	"github.com/medbook/appointment-api/internal/service/patient"
	apperrors "github.com/medbook/appointment-api/pkg/errors"
	"github.com/medbook/appointment-api/pkg/logger"
	"github.com/medbook/appointment-api/pkg/metrics"
)

const dateLayout = "2006-01-02"

// uniqueViolation is the Postgres error code for a unique constraint breach,
// raised by the (doctor_id, date, start_time) index when two instances race.
const uniqueViolation = "23505"

type Service struct {
	repo        repository.AppointmentRepository
	patients    *patient.Service
	doctors     *doctor.Service
	notifier    notification.Service
	metrics     *metrics.Metrics
	logger      *logger.Logger
	horizonDays int

	// One mutex per doctor, held across the capacity check, the conflict
	// check and the insert. Without it two concurrent bookings can both
	// pass the checks and both commit, breaking the no-overlap invariant.
	locks sync.Map

	now func() time.Time
}

func NewService(repo repository.AppointmentRepository, patients *patient.Service, doctors *doctor.Service, notifier notification.Service, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		patients:    patients,
		doctors:     doctors,
		notifier:    notifier,
		metrics:     m,
		logger:      l,
		horizonDays: schedule.DefaultHorizonDays,
		now:         time.Now,
	}
}

// SetHorizonDays overrides how far ahead the hourly-grid finder scans.
func (s *Service) SetHorizonDays(days int) {
	if days > 0 {
		s.horizonDays = days
	}
}

func (s *Service) lockFor(doctorID uuid.UUID) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(doctorID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Book validates a requested slot against the doctor's calendar and creates
// a PENDING appointment. On conflict the returned error carries the next
// free slot of the standard duration so the caller can retry immediately.
func (s *Service) Book(ctx context.Context, userID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	start := s.now()
	defer func() {
		s.metrics.BookingLatency.Observe(time.Since(start).Seconds())
	}()

	entryID, err := uuid.Parse(req.PatientEntryID)
	if err != nil {
		return nil, apperrors.Validation("invalid patient entry ID")
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.Validation("invalid doctor ID")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.Validation("invalid date, expected YYYY-MM-DD")
	}
	requested, err := schedule.NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	entry, err := s.patients.GetOwnedEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	doc, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(doctorID)
	lock.Lock()
	defer lock.Unlock()

	// A single fetch serves both the capacity count and the conflict list,
	// so the two checks see the same snapshot of the calendar.
	existing, err := s.repo.FindByDoctorAndDate(ctx, doctorID, date, model.ActiveStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctor calendar: %w", err)
	}

	if len(existing) >= schedule.MaxDailyBookings {
		s.metrics.CapacityRejections.Inc()
		return nil, apperrors.CapacityExceeded("doctor is fully booked on this date, please choose another date")
	}

	busy := busyIntervals(existing)
	if schedule.HasConflict(busy, requested) {
		s.metrics.BookingConflicts.Inc()
		return nil, s.conflictError(busy, requested.Start)
	}

	now := s.now()
	appt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:      userID,
		PatientEntryID: entry.ID,
		DoctorID:       doc.ID,
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         model.AppointmentStatusPending,
		Fee:            doc.Fee,
		Reason:         req.Reason,
		DoctorLocation: doc.City,
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		if isUniqueViolation(err) {
			s.metrics.BookingConflicts.Inc()
			return nil, s.conflictError(busy, requested.Start)
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.metrics.BookingsTotal.Inc()
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID.String(),
		"doctor_id", doc.ID.String(),
		"date", req.Date,
		"start_time", req.StartTime)

	s.notifier.Notify(ctx, doc.UserID, doc.Email,
		"New appointment request",
		fmt.Sprintf("%s requested an appointment on %s from %s to %s.",
			entry.Name, req.Date, req.StartTime, req.EndTime))

	return appt, nil
}

// Respond applies a doctor's decision to an appointment. REJECTED is
// terminal; a reschedule is re-validated against the doctor's calendar at
// the new slot before it is accepted.
func (s *Service) Respond(ctx context.Context, appointmentID uuid.UUID, req *model.RespondAppointmentRequest) (*model.Appointment, error) {
	action := model.ResponseAction(strings.ToUpper(req.Action))
	switch action {
	case model.ActionAccept, model.ActionReject, model.ActionReschedule:
	default:
		return nil, apperrors.InvalidAction(req.Action)
	}

	appt, err := s.repo.Get(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	if appt.Status == model.AppointmentStatusRejected {
		return nil, apperrors.Validation("appointment has been rejected and can no longer be modified")
	}

	switch action {
	case model.ActionAccept:
		appt.Status = model.AppointmentStatusAccepted
	case model.ActionReject:
		appt.Status = model.AppointmentStatusRejected
	case model.ActionReschedule:
		if err := s.reschedule(ctx, appt, req); err != nil {
			return nil, err
		}
	}

	appt.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.metrics.ResponsesTotal.WithLabelValues(string(action)).Inc()
	s.notifyPatient(ctx, appt)

	return appt, nil
}

func (s *Service) reschedule(ctx context.Context, appt *model.Appointment, req *model.RespondAppointmentRequest) error {
	if req.NewDate == "" || req.NewStartTime == "" || req.NewEndTime == "" {
		return apperrors.Validation("new date, start time and end time are required to reschedule")
	}

	date, err := time.Parse(dateLayout, req.NewDate)
	if err != nil {
		return apperrors.Validation("invalid new date, expected YYYY-MM-DD")
	}
	requested, err := schedule.NewInterval(req.NewStartTime, req.NewEndTime)
	if err != nil {
		return apperrors.Validation(err.Error())
	}

	lock := s.lockFor(appt.DoctorID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.repo.FindByDoctorAndDate(ctx, appt.DoctorID, date, model.ActiveStatuses)
	if err != nil {
		return fmt.Errorf("failed to load doctor calendar: %w", err)
	}

	// The appointment being moved must not block its own new slot.
	others := existing[:0:0]
	for _, a := range existing {
		if a.ID != appt.ID {
			others = append(others, a)
		}
	}

	if len(others) >= schedule.MaxDailyBookings {
		s.metrics.CapacityRejections.Inc()
		return apperrors.CapacityExceeded("doctor is fully booked on the new date, please choose another date")
	}

	busy := busyIntervals(others)
	if schedule.HasConflict(busy, requested) {
		s.metrics.BookingConflicts.Inc()
		return s.conflictError(busy, requested.Start)
	}

	appt.Date = date
	appt.StartTime = req.NewStartTime
	appt.EndTime = req.NewEndTime
	appt.Status = model.AppointmentStatusRescheduled
	return nil
}

// GetAppointments lists the caller's appointments sorted by date and start
// time ascending.
func (s *Service) GetAppointments(ctx context.Context, userID uuid.UUID, role string) ([]*model.Appointment, error) {
	switch role {
	case "patient":
		appts, err := s.repo.ListForPatient(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list appointments: %w", err)
		}
		return appts, nil
	case "doctor":
		doc, err := s.doctors.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		appts, err := s.repo.ListForDoctor(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list appointments: %w", err)
		}
		return appts, nil
	default:
		return nil, apperrors.Validation("invalid role")
	}
}

// NextAvailableSlot finds the earliest free slot on the legacy hourly grid,
// scanning forward from today.
func (s *Service) NextAvailableSlot(ctx context.Context, doctorID uuid.UUID) (time.Time, error) {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return time.Time{}, err
	}

	src := func(ctx context.Context, day time.Time) ([]string, error) {
		appts, err := s.repo.FindByDoctorAndDate(ctx, doctorID, day, model.ActiveStatuses)
		if err != nil {
			return nil, fmt.Errorf("failed to load doctor calendar: %w", err)
		}
		starts := make([]string, 0, len(appts))
		for _, a := range appts {
			starts = append(starts, a.StartTime)
		}
		return starts, nil
	}

	slot, err := schedule.NextHourlySlot(ctx, src, s.now(), s.horizonDays)
	if errors.Is(err, schedule.ErrNoSlotWithinHorizon) {
		return time.Time{}, apperrors.CapacityExceeded("doctor has no free slot within the scheduling horizon")
	}
	if err != nil {
		return time.Time{}, err
	}
	return slot, nil
}

func (s *Service) conflictError(busy []schedule.Interval, requestedStart int) error {
	suggested, ok := schedule.SuggestNext(busy, requestedStart, schedule.SlotMinutes)
	if !ok {
		return apperrors.SlotConflictNoneLeft()
	}
	return apperrors.SlotConflict(schedule.FormatClock(suggested))
}

func (s *Service) notifyPatient(ctx context.Context, appt *model.Appointment) {
	entry, err := s.patients.GetEntry(ctx, appt.PatientEntryID)
	if err != nil {
		s.logger.Error(err, "failed to resolve notification recipient",
			"appointment_id", appt.ID.String())
		return
	}

	s.notifier.Notify(ctx, appt.PatientID, entry.Email,
		fmt.Sprintf("Appointment %s", strings.ToLower(string(appt.Status))),
		fmt.Sprintf("Your appointment on %s at %s is now %s.",
			appt.Date.Format(dateLayout), appt.StartTime, appt.Status))
}

func busyIntervals(appointments []*model.Appointment) []schedule.Interval {
	busy := make([]schedule.Interval, 0, len(appointments))
	for _, a := range appointments {
		iv, err := schedule.NewInterval(a.StartTime, a.EndTime)
		if err != nil {
			continue
		}
		busy = append(busy, iv)
	}
	return busy
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
