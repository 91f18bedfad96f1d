package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type MessageKind string

const (
	MessageWelcome             MessageKind = "patient_welcome"
	MessagePasswordReset       MessageKind = "password_reset"
	MessageDoctorCredentials   MessageKind = "doctor_credentials"
	MessageReservationCreated  MessageKind = "reservation_created"
	MessageReservationChanged  MessageKind = "reservation_rescheduled"
	MessageReservationRejected MessageKind = "reservation_rejected"
)

// Message is an out-of-band notice for one recipient. Secret carries a code
// or password and is never logged.
type Message struct {
	Kind    MessageKind `json:"kind"`
	To      string      `json:"to"`
	Name    string      `json:"name"`
	Body    string      `json:"body"`
	Secret  string      `json:"secret,omitempty"`
	Subject string      `json:"subject,omitempty"`
}

// Notifier delivers messages without blocking the request that caused them.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// NotificationService posts messages to a webhook when one is configured and
// otherwise only logs that a message was queued.
type NotificationService struct {
	client  *resty.Client
	webhook string
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewNotificationService(webhook string, logger *zap.Logger) *NotificationService {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json")

	return &NotificationService{client: client, webhook: webhook, logger: logger}
}

func (s *NotificationService) Notify(ctx context.Context, msg Message) {
	if s.webhook == "" {
		s.logger.Info("notification queued",
			zap.String("kind", string(msg.Kind)),
			zap.String("to", msg.To),
		)
		return
	}

	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.post(ctx, msg); err != nil {
			s.logger.Error("notification delivery failed",
				zap.String("kind", string(msg.Kind)),
				zap.String("to", msg.To),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("notification delivered",
			zap.String("kind", string(msg.Kind)),
			zap.String("to", msg.To),
		)
	}()
}

// Wait blocks until in-flight deliveries finish.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) post(ctx context.Context, msg Message) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(s.webhook)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %s", resp.Status())
	}
	return nil
}
