package postgres

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medbook/appointment-api/internal/repository"
	"github.com/medbook/appointment-api/pkg/metrics"
	"github.com/medbook/appointment-api/pkg/security"
)

type appointmentRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

type patientRepository struct {
	db        *sqlx.DB
	encryptor security.Encryptor
}

type doctorRepository struct {
	db        *sqlx.DB
	encryptor security.Encryptor
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB, m *metrics.Metrics) repository.AppointmentRepository {
	return &appointmentRepository{db: db, metrics: m}
}

// observe records one database operation on the hot appointment path.
func (r *appointmentRepository) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.metrics.DatabaseOperations.WithLabelValues(op, status).Inc()
	r.metrics.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func NewPatientRepository(db *sqlx.DB, encryptor security.Encryptor) repository.PatientRepository {
	return &patientRepository{db: db, encryptor: encryptor}
}

func NewDoctorRepository(db *sqlx.DB, encryptor security.Encryptor) repository.DoctorRepository {
	return &doctorRepository{db: db, encryptor: encryptor}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}
