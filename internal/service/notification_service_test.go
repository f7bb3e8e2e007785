package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/config"
	"github.com/example/smartblinds/internal/notify"
)

func TestDispatchSkippedTransportIsNotAnError(t *testing.T) {
	repo := newFakeRepo()
	seedOrder(repo, "ORD-1001", "ana@example.com", "")
	mailer := notify.NewMailer(&config.SMTPConfig{}, zap.NewNop())
	svc := NewNotificationService(nil, repo, mailer, zap.NewNop())

	result, err := svc.Dispatch(context.Background(), NotificationJob{
		Kind:     NotifyOrderReceived,
		OrderRef: "ORD-1001",
	})
	if err != nil {
		t.Fatalf("skipped must not be an error: %v", err)
	}
	if result != notify.ResultSkipped {
		t.Errorf("result = %s, want skipped", result)
	}
}

func TestDispatchUnknownOrderFails(t *testing.T) {
	mailer := notify.NewMailer(&config.SMTPConfig{}, zap.NewNop())
	svc := NewNotificationService(nil, newFakeRepo(), mailer, zap.NewNop())

	result, err := svc.Dispatch(context.Background(), NotificationJob{
		Kind:     NotifyStatusChanged,
		OrderRef: "ORD-MISSING",
	})
	if err == nil {
		t.Fatal("expected an error for a vanished order")
	}
	if result != notify.ResultFailed {
		t.Errorf("result = %s, want failed", result)
	}
}
