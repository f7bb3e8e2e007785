package mq

import (
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/config"
)

// NotifyQueue carries notification jobs from the API servers to the
// notify worker.
const NotifyQueue = "order_notify_queue"

var (
	conn *amqp.Connection
	once sync.Once
)

// Init dials RabbitMQ. The broker is optional: without it the
// notification dispatcher falls back to in-process sends, so Init
// returns nil instead of exiting.
func Init(cfg *config.RabbitMQConfig) *amqp.Connection {
	once.Do(func() {
		if !cfg.Enabled() {
			zap.L().Info("rabbitmq not configured, notifications dispatch in-process")
			return
		}
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			zap.L().Warn("failed to connect rabbitmq, notifications dispatch in-process", zap.Error(err))
			return
		}
		conn = c
	})
	return conn
}

// Conn returns the shared connection, nil when disabled.
func Conn() *amqp.Connection {
	return conn
}
