package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer reads BookingConfirmedQueue and writes one ledger line per
// booking reference.
type Consumer struct {
	url    string
	log    *zap.Logger
	ledger *zap.Logger
}

// NewConsumer returns a Consumer for the broker at url.  Operational
// messages go to log and ledger entries to log.Named("ledger").
func NewConsumer(url string, log *zap.Logger) *Consumer {
	return &Consumer{url: url, log: log, ledger: log.Named("ledger")}
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("booking consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		c.log.Warn("booking consumer stopped, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("booking consumer qos failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, BookingConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			c.log.Error("booking event rejected", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// handle decodes one message and writes its ledger lines.
func (c *Consumer) handle(body []byte) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if len(ev.References) == 0 || len(ev.References) != len(ev.Seats) {
		return fmt.Errorf("event for user %d has %d references and %d seats", ev.UserID, len(ev.References), len(ev.Seats))
	}
	for i, ref := range ev.References {
		c.ledger.Info("booking confirmed",
			zap.String("reference", ref),
			zap.Uint64("user_id", ev.UserID),
			zap.String("movie", ev.MovieName),
			zap.String("theater", ev.TheaterName),
			zap.Time("show_time", ev.ShowTime),
			zap.String("seat", ev.Seats[i]),
			zap.Time("confirmed_at", ev.ConfirmedAt),
		)
	}
	c.ledger.Info("payment settled",
		zap.Uint64("user_id", ev.UserID),
		zap.Uint64("theater_id", ev.TheaterID),
		zap.Int("seats", len(ev.Seats)),
		zap.Uint64("total", ev.Total),
	)
	return nil
}
