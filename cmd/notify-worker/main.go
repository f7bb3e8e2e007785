package main

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/config"
	"github.com/example/smartblinds/internal/infra/mq"
	"github.com/example/smartblinds/internal/logging"
	"github.com/example/smartblinds/internal/notify"
	"github.com/example/smartblinds/internal/repository/mysql"
	"github.com/example/smartblinds/internal/service"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		panic(err)
	}

	logger := logging.Init(false)
	defer logger.Sync()

	mqConn := mq.Init(&cfg.RabbitMQ)
	if mqConn == nil {
		zap.L().Fatal("notify worker requires a rabbitmq connection")
	}

	db := mysql.Init(&cfg.MySQL)
	orderRepo := mysql.NewOrderRepository(db)
	mailer := notify.NewMailer(&cfg.SMTP, zap.L())
	notifier := service.NewNotificationService(mqConn, orderRepo, mailer, zap.L())

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(mq.NotifyQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// Manual ack: a job is only removed once handled.
	msgs, err := ch.Consume(mq.NotifyQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	zap.L().Info("notify worker started, waiting for jobs")

	for d := range msgs {
		var job service.NotificationJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			zap.L().Warn("invalid notification job, dropping", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		handleJob(context.Background(), notifier, job, d)
	}
}

func handleJob(ctx context.Context, notifier *service.NotificationService, job service.NotificationJob, d amqp.Delivery) {
	result, err := notifier.Dispatch(ctx, job)
	if err != nil {
		// Email is best-effort: log, drop, never requeue-loop a
		// message whose order vanished or whose transport is down.
		zap.L().Warn("notification job failed",
			zap.String("order_ref", job.OrderRef),
			zap.String("kind", string(job.Kind)),
			zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	zap.L().Info("notification job handled",
		zap.String("order_ref", job.OrderRef),
		zap.String("kind", string(job.Kind)),
		zap.String("result", string(result)))
	if err := d.Ack(false); err != nil {
		zap.L().Warn("failed to ack job", zap.Error(err))
	}
}
