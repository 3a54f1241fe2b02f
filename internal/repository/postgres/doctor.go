package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medbook/appointment-api/internal/model"
	"github.com/medbook/appointment-api/internal/repository"
)

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	name, err := r.encryptor.EncryptString(doctor.Name)
	if err != nil {
		return fmt.Errorf("failed to encrypt doctor name: %w", err)
	}

	query := `
		INSERT INTO doctors (
			id, user_id, name, specialty, email, fee, city,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.UserID,
		name,
		doctor.Specialty,
		doctor.Email,
		doctor.Fee,
		doctor.City,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return r.getBy(ctx, "id", id)
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *doctorRepository) getBy(ctx context.Context, column string, value uuid.UUID) (*model.Doctor, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, specialty, email, fee, city,
			   created_at, updated_at
		FROM doctors
		WHERE %s = $1
	`, column)

	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	name, err := r.encryptor.DecryptString(doctor.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt doctor name: %w", err)
	}
	doctor.Name = name

	return &doctor, nil
}
