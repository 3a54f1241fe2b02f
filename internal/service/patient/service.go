package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medbook/appointment-api/internal/model"
	"github.com/medbook/appointment-api/internal/repository"
	apperrors "github.com/medbook/appointment-api/pkg/errors"
)

// Service is the patient directory: the account holder plus any family
// members treated under the same account.
type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

// GetOwnedEntry fetches a patient entry and verifies it belongs to the
// given account. An entry owned by someone else is reported as not found
// rather than forbidden, to avoid leaking entry existence.
func (s *Service) GetOwnedEntry(ctx context.Context, userID, entryID uuid.UUID) (*model.PatientEntry, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("patient entry", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient entry: %w", err)
	}

	if entry.UserID != userID {
		return nil, apperrors.NotFound("patient entry", nil)
	}
	return entry, nil
}

// GetEntry fetches an entry without an ownership check. For internal use,
// e.g. resolving the notification recipient for an existing appointment.
func (s *Service) GetEntry(ctx context.Context, entryID uuid.UUID) (*model.PatientEntry, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("patient entry", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient entry: %w", err)
	}
	return entry, nil
}

func (s *Service) ListEntries(ctx context.Context, userID uuid.UUID) ([]*model.PatientEntry, error) {
	entries, err := s.repo.ListEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient entries: %w", err)
	}
	return entries, nil
}

func (s *Service) AddEntry(ctx context.Context, entry *model.PatientEntry) error {
	now := time.Now()
	entry.ID = uuid.New()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to add patient entry: %w", err)
	}
	return nil
}
