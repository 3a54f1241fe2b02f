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

// Name and date of birth are PHI: encrypted before insert, decrypted on read.

func (r *patientRepository) CreateEntry(ctx context.Context, entry *model.PatientEntry) error {
	name, err := r.encryptor.EncryptString(entry.Name)
	if err != nil {
		return fmt.Errorf("failed to encrypt patient name: %w", err)
	}
	dob, err := r.encryptor.EncryptString(entry.DateOfBirth)
	if err != nil {
		return fmt.Errorf("failed to encrypt patient date of birth: %w", err)
	}

	query := `
		INSERT INTO patient_entries (
			id, user_id, name, date_of_birth, relation, email,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		name,
		dob,
		entry.Relation,
		entry.Email,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient entry: %w", err)
	}
	return nil
}

func (r *patientRepository) GetEntry(ctx context.Context, id uuid.UUID) (*model.PatientEntry, error) {
	query := `
		SELECT id, user_id, name, date_of_birth, relation, email,
			   created_at, updated_at
		FROM patient_entries
		WHERE id = $1
	`
	var entry model.PatientEntry
	err := r.db.GetContext(ctx, &entry, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient entry: %w", err)
	}

	if err := r.decryptEntry(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *patientRepository) ListEntries(ctx context.Context, userID uuid.UUID) ([]*model.PatientEntry, error) {
	query := `
		SELECT id, user_id, name, date_of_birth, relation, email,
			   created_at, updated_at
		FROM patient_entries
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	var entries []*model.PatientEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list patient entries: %w", err)
	}

	for _, entry := range entries {
		if err := r.decryptEntry(entry); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (r *patientRepository) decryptEntry(entry *model.PatientEntry) error {
	name, err := r.encryptor.DecryptString(entry.Name)
	if err != nil {
		return fmt.Errorf("failed to decrypt patient name: %w", err)
	}
	dob, err := r.encryptor.DecryptString(entry.DateOfBirth)
	if err != nil {
		return fmt.Errorf("failed to decrypt patient date of birth: %w", err)
	}

	entry.Name = name
	entry.DateOfBirth = dob
	return nil
}
