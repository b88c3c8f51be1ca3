package outbox

import (
	"time"
)

// Message represents an event waiting in the outbox table to be published to
// RabbitMQ.
type Message struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
