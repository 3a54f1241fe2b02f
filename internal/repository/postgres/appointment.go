package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medbook/appointment-api/internal/model"
	"github.com/medbook/appointment-api/internal/repository"
)

// The appointments table carries a partial unique index on
// (doctor_id, date, start_time) WHERE status IN ('PENDING','ACCEPTED') as
// defense in depth behind the service-level lock.

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) (err error) {
	start := time.Now()
	defer func() { r.observe("create_appointment", start, err) }()

	query := `
		INSERT INTO appointments (
			id, patient_id, patient_entry_id, doctor_id,
			date, start_time, end_time, status,
			fee, reason, doctor_location,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.PatientEntryID,
		appointment.DoctorID,
		appointment.Date,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Fee,
		appointment.Reason,
		appointment.DoctorLocation,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (appt *model.Appointment, err error) {
	start := time.Now()
	defer func() { r.observe("get_appointment", start, err) }()

	query := `
		SELECT id, patient_id, patient_entry_id, doctor_id,
			   date, start_time, end_time, status,
			   fee, reason, doctor_location,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err = r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) (err error) {
	start := time.Now()
	defer func() { r.observe("update_appointment", start, err) }()

	query := `
		UPDATE appointments
		SET date = $1, start_time = $2, end_time = $3, status = $4, updated_at = $5
		WHERE id = $6
	`
	var result sql.Result
	result, err = r.db.ExecContext(ctx, query,
		appointment.Date,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *appointmentRepository) FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []model.AppointmentStatus) (appts []*model.Appointment, err error) {
	start := time.Now()
	defer func() { r.observe("find_by_doctor_and_date", start, err) }()

	query := `
		SELECT id, patient_id, patient_entry_id, doctor_id,
			   date, start_time, end_time, status,
			   fee, reason, doctor_location,
			   created_at, updated_at
		FROM appointments
		WHERE doctor_id = ?
		AND date = ?
		AND status IN (?)
		ORDER BY start_time ASC
	`
	query, args, err := sqlx.In(query, doctorID, date.Format("2006-01-02"), statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []model.AppointmentStatus) (count int, err error) {
	start := time.Now()
	defer func() { r.observe("count_by_doctor_and_date", start, err) }()

	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE doctor_id = ?
		AND date = ?
		AND status IN (?)
	`
	query, args, err := sqlx.In(query, doctorID, date.Format("2006-01-02"), statuses)
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, userID uuid.UUID) (appts []*model.Appointment, err error) {
	start := time.Now()
	defer func() { r.observe("list_for_patient", start, err) }()

	query := `
		SELECT id, patient_id, patient_entry_id, doctor_id,
			   date, start_time, end_time, status,
			   fee, reason, doctor_location,
			   created_at, updated_at
		FROM appointments
		WHERE patient_id = $1
		ORDER BY date ASC, start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) (appts []*model.Appointment, err error) {
	start := time.Now()
	defer func() { r.observe("list_for_doctor", start, err) }()

	query := `
		SELECT id, patient_id, patient_entry_id, doctor_id,
			   date, start_time, end_time, status,
			   fee, reason, doctor_location,
			   created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY date ASC, start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}
