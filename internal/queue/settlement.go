package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"paisavest/internal/domain"
)

// SettlementPublisher publishes withdrawal settlement jobs to a durable
// RabbitMQ queue consumed by the settlement worker.
type SettlementPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewSettlementPublisher dials the broker and declares the durable queue
func NewSettlementPublisher(url, queue string) (*SettlementPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &SettlementPublisher{conn: conn, ch: ch, queue: queue}, nil
}

// Close releases the channel and connection
func (p *SettlementPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Enqueue publishes a settlement job as persistent JSON
func (p *SettlementPublisher) Enqueue(ctx context.Context, job domain.SettlementJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// ConsumeSettlements reads settlement jobs from the queue and hands them to
// the settler, waiting out each job's NotBefore. A job whose withdrawal is no
// longer pending (already settled or cancelled) is acked and dropped; the
// pending-status guard in the repository makes redelivery harmless.
func ConsumeSettlements(ctx context.Context, ch *amqp.Channel, queue string, settler domain.Settler, log *logrus.Logger) error {
	if err := ch.Qos(16, 0, false); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var job domain.SettlementJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				log.WithField("error", err.Error()).Warn("bad settlement message")
				_ = msg.Nack(false, false)
				continue
			}

			if wait := time.Until(job.NotBefore); wait > 0 {
				select {
				case <-ctx.Done():
					_ = msg.Nack(false, true)
					return ctx.Err()
				case <-time.After(wait):
				}
			}

			if err := settler.Settle(ctx, job.WithdrawalID); err != nil {
				log.WithFields(logrus.Fields{
					"withdrawal_id": job.WithdrawalID,
					"error":         err.Error(),
				}).Warn("settlement skipped")
			}
			_ = msg.Ack(false)
		}
	}
}

// InProcessSettlementQueue settles withdrawals on a timer inside the API
// process. Used when no broker is configured (dev, tests); production runs
// the RabbitMQ publisher plus the settlement worker.
type InProcessSettlementQueue struct {
	settler domain.Settler
	log     *logrus.Logger
}

// NewInProcessSettlementQueue creates the broker-less fallback queue
func NewInProcessSettlementQueue(settler domain.Settler, log *logrus.Logger) *InProcessSettlementQueue {
	return &InProcessSettlementQueue{settler: settler, log: log}
}

// Enqueue schedules settlement after the job's NotBefore, fire-and-forget
func (q *InProcessSettlementQueue) Enqueue(_ context.Context, job domain.SettlementJob) error {
	time.AfterFunc(time.Until(job.NotBefore), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := q.settler.Settle(ctx, job.WithdrawalID); err != nil {
			q.log.WithFields(logrus.Fields{
				"withdrawal_id": job.WithdrawalID,
				"error":         err.Error(),
			}).Warn("in-process settlement skipped")
		}
	})
	return nil
}
