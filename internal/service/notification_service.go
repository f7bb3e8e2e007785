package service

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/apperr"
	"github.com/example/smartblinds/internal/datamodels/order"
	"github.com/example/smartblinds/internal/infra/mq"
	"github.com/example/smartblinds/internal/notify"
)

// NotificationKind selects the email rendered for a job.
type NotificationKind string

const (
	NotifyOrderReceived NotificationKind = "order_received"
	NotifyStatusChanged NotificationKind = "status_changed"
)

// NotificationJob is the queue message for one email. The worker
// reloads the order by ref, so the job stays small and the email
// always reflects durable state.
type NotificationJob struct {
	Kind           NotificationKind `json:"kind"`
	OrderRef       string           `json:"order_ref"`
	PreviousStatus string           `json:"previous_status,omitempty"`
	NewStatus      string           `json:"new_status,omitempty"`
}

// NotificationService moves email off the order-write path. Jobs go
// through RabbitMQ when a broker is connected and fall back to an
// in-process goroutine otherwise. Failures never reach the caller of
// the order mutation that triggered them.
type NotificationService struct {
	mqConn *amqp.Connection
	repo   order.Repository
	mailer *notify.Mailer
	log    *zap.Logger
}

// NewNotificationService wires the dispatcher. mqConn may be nil.
func NewNotificationService(mqConn *amqp.Connection, repo order.Repository, mailer *notify.Mailer, log *zap.Logger) *NotificationService {
	return &NotificationService{mqConn: mqConn, repo: repo, mailer: mailer, log: log}
}

// OrderReceived triggers the initial confirmation email, best-effort.
func (s *NotificationService) OrderReceived(ctx context.Context, o *order.Order) {
	s.trigger(ctx, NotificationJob{
		Kind:     NotifyOrderReceived,
		OrderRef: o.OrderRef,
	})
}

// StatusChanged triggers the transition email, best-effort. Callers
// only invoke this for an actual change; equal statuses are silent.
func (s *NotificationService) StatusChanged(ctx context.Context, o *order.Order, previous, current order.Status) {
	s.trigger(ctx, NotificationJob{
		Kind:           NotifyStatusChanged,
		OrderRef:       o.OrderRef,
		PreviousStatus: string(previous),
		NewStatus:      string(current),
	})
}

func (s *NotificationService) trigger(ctx context.Context, job NotificationJob) {
	if s.mqConn != nil {
		err := s.publish(ctx, job)
		if err == nil {
			return
		}
		s.log.Warn("notification publish failed, dispatching in-process",
			zap.String("order_ref", job.OrderRef), zap.Error(err))
	}
	// In-process fallback. Detached from the request context so an
	// answered request does not cancel the send.
	go func() {
		if _, err := s.Dispatch(context.Background(), job); err != nil {
			s.log.Warn("notification dispatch failed",
				zap.String("order_ref", job.OrderRef),
				zap.String("kind", string(job.Kind)),
				zap.Error(err))
		}
	}()
}

func (s *NotificationService) publish(ctx context.Context, job NotificationJob) error {
	ch, err := s.mqConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(mq.NotifyQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(&job)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		mq.NotifyQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Dispatch renders and sends the email for one job. Used by the
// notify worker and by the direct trigger endpoints.
func (s *NotificationService) Dispatch(ctx context.Context, job NotificationJob) (notify.Result, error) {
	o, err := s.repo.GetByRef(ctx, job.OrderRef)
	if err != nil {
		GetMonitor().RecordEmail(string(notify.ResultFailed))
		return notify.ResultFailed, apperr.Notification("order not found for notification", err)
	}

	var result notify.Result
	switch job.Kind {
	case NotifyStatusChanged:
		result = s.mailer.SendStatusChanged(o, order.Status(job.PreviousStatus), order.Status(job.NewStatus))
	default:
		result = s.mailer.SendOrderReceived(o)
	}

	GetMonitor().RecordEmail(string(result))
	if result == notify.ResultFailed {
		return result, apperr.Notification("email send failed", nil)
	}
	return result, nil
}
