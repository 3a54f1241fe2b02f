package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

type Notification struct {
	Base
	UserID    uuid.UUID          `db:"user_id" json:"user_id"`
	Channel   string             `db:"channel" json:"channel"`
	Recipient string             `db:"recipient" json:"recipient"`
	Subject   string             `db:"subject" json:"subject"`
	Content   string             `db:"content" json:"content"`
	Status    NotificationStatus `db:"status" json:"status"`
	LastError string             `db:"last_error" json:"last_error,omitempty"`
	SentAt    *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
}

// NotificationEvent is published on the in-app channel.
type NotificationEvent struct {
	ID             uuid.UUID `json:"id"`
	NotificationID uuid.UUID `json:"notification_id"`
	UserID         uuid.UUID `json:"user_id"`
	Type           string    `json:"type"`
	Subject        string    `json:"subject"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
