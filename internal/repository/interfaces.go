package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medbook/appointment-api/internal/model"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, appointment *model.Appointment) error

	// FindByDoctorAndDate returns the doctor's appointments on a calendar
	// day restricted to the given statuses, sorted by start time.
	FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []model.AppointmentStatus) ([]*model.Appointment, error)
	CountByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []model.AppointmentStatus) (int, error)

	ListForPatient(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
}

type PatientRepository interface {
	CreateEntry(ctx context.Context, entry *model.PatientEntry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*model.PatientEntry, error)
	ListEntries(ctx context.Context, userID uuid.UUID) ([]*model.PatientEntry, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	Update(ctx context.Context, notification *model.Notification) error
}
