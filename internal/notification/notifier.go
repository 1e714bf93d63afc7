// Package notification delivers best-effort user notifications. Callers
// hand a notification off after their primary transaction commits and
// never depend on delivery for correctness.
package notification

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

type Notification struct {
	UserID        uint   `json:"user_id"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	Type          string `json:"type"`
	ReferenceID   uint   `json:"reference_id"`
	ReferenceType string `json:"reference_type"`
}

// Notification types carried on the wire.
const (
	TypeQuizPublished      = "quiz.published"
	TypeSubmissionReceived = "quiz.submission_received"
	TypeAnswerGraded       = "quiz.answer_graded"
)

type Notifier interface {
	Notify(n Notification) error
}

// AMQPNotifier publishes notifications to a topic exchange; a consumer on
// the platform side turns them into in-app/email deliveries.
type AMQPNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAMQPNotifier(amqpURL, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &AMQPNotifier{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *AMQPNotifier) Notify(n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.channel.Publish(
		p.exchange,
		n.Type, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *AMQPNotifier) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// NopNotifier drops everything; used when no broker is configured and in
// tests.
type NopNotifier struct{}

func (NopNotifier) Notify(n Notification) error {
	log.Debug().Uint("user_id", n.UserID).Str("type", n.Type).Msg("Notification dropped (no broker configured)")
	return nil
}
