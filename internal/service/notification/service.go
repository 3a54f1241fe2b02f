package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medbook/appointment-api/internal/email"
	"github.com/medbook/appointment-api/internal/model"
	"github.com/medbook/appointment-api/internal/repository"
	"github.com/medbook/appointment-api/pkg/logger"
	"github.com/medbook/appointment-api/pkg/messaging"
	"github.com/medbook/appointment-api/pkg/metrics"
)

const (
	channelEmail = "email"
	channelInApp = "in_app"

	inAppTopic = "notifications"

	sendTimeout = 15 * time.Second
)

// Service delivers notifications out of band. Delivery failures are logged
// and swallowed; the state transition that triggered the notification has
// already committed and must stand.
type Service interface {
	Notify(ctx context.Context, userID uuid.UUID, recipient, subject, content string)
}

type service struct {
	repo     repository.NotificationRepository
	emailSvc email.Service
	broker   messaging.Broker
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(repo repository.NotificationRepository, emailSvc email.Service, broker messaging.Broker, m *metrics.Metrics, l *logger.Logger) Service {
	return &service{
		repo:     repo,
		emailSvc: emailSvc,
		broker:   broker,
		metrics:  m,
		logger:   l,
	}
}

// Notify records the notification and dispatches it asynchronously over
// email and the in-app channel.
func (s *service) Notify(ctx context.Context, userID uuid.UUID, recipient, subject, content string) {
	now := time.Now()
	n := &model.Notification{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:    userID,
		Channel:   channelEmail,
		Recipient: recipient,
		Subject:   subject,
		Content:   content,
		Status:    model.NotificationStatusPending,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error(err, "failed to record notification",
			"user_id", userID.String())
		return
	}

	go s.dispatch(n)
}

func (s *service) dispatch(n *model.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := s.emailSvc.SendCustom(ctx, n.Recipient, n.Subject, n.Content); err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(channelEmail).Inc()
		s.markFailed(ctx, n, err)
		return
	}
	s.metrics.NotificationsSent.WithLabelValues(channelEmail).Inc()

	event := &model.NotificationEvent{
		ID:             uuid.New(),
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           "appointment_update",
		Subject:        n.Subject,
		Content:        n.Content,
		CreatedAt:      time.Now(),
	}
	if err := s.broker.Publish(ctx, inAppTopic, event); err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(channelInApp).Inc()
		s.logger.Error(err, "failed to publish in-app notification",
			"notification_id", n.ID.String())
	} else {
		s.metrics.NotificationsSent.WithLabelValues(channelInApp).Inc()
	}

	sent := time.Now()
	n.Status = model.NotificationStatusSent
	n.SentAt = &sent
	n.UpdatedAt = sent
	if err := s.repo.Update(ctx, n); err != nil {
		s.logger.Error(err, "failed to mark notification sent",
			"notification_id", n.ID.String())
	}
}

func (s *service) markFailed(ctx context.Context, n *model.Notification, cause error) {
	s.logger.Error(cause, "failed to deliver notification",
		"notification_id", n.ID.String(), "recipient", n.Recipient)

	n.Status = model.NotificationStatusFailed
	n.LastError = cause.Error()
	n.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, n); err != nil {
		s.logger.Error(err, "failed to mark notification failed",
			"notification_id", n.ID.String())
	}
}
