package model

import (
	"github.com/google/uuid"
)

type PatientRelation string

const (
	PatientRelationSelf   PatientRelation = "self"
	PatientRelationFamily PatientRelation = "family"
)

// PatientEntry is one person on a patient account: the account holder or a
// family member. Name and DateOfBirth are PHI and stored encrypted at rest.
type PatientEntry struct {
	Base
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	Name        string          `db:"name" json:"name"`
	DateOfBirth string          `db:"date_of_birth" json:"date_of_birth"`
	Relation    PatientRelation `db:"relation" json:"relation"`
	Email       string          `db:"email" json:"email"`
}

type CreatePatientEntryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Relation    string `json:"relation" validate:"required,oneof=self family"`
	Email       string `json:"email" validate:"required,email"`
}
