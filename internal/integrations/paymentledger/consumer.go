package paymentledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// PaymentApplier применяет подтверждения платежного сервиса к бронированиям
type PaymentApplier interface {
	ApplyPaymentCaptured(ctx context.Context, bookingRef string, amount float64) error
	ApplyPaymentFailed(ctx context.Context, bookingRef string) error
}

// Consumer читает подтверждения платежей и обновляет статусы оплаты бронирований
type Consumer struct {
	reader  *kafka.Reader
	applier PaymentApplier
	log     Logger
}

// NewConsumer создает консьюмер подтверждений платежей
func NewConsumer(brokers []string, groupID, topic string, applier PaymentApplier, log Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		applier: applier,
		log:     log,
	}
}

// Run читает события до отмены контекста
// Ошибки обработки отдельного события логируются и не останавливают цикл:
// платежный сервис переотправляет неподтвержденные события сам
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("paymentledger consumer: read message: %w", err)
		}

		if err := c.handle(ctx, msg); err != nil {
			c.log.Error("Failed to process payment event: key=%s, error=%v", string(msg.Key), err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	var event PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeEvent, err)
	}

	switch event.Type {
	case EventPaymentCaptured:
		c.log.Info("Payment captured: booking_ref=%s, amount=%.2f", event.BookingRef, event.Amount)
		return c.applier.ApplyPaymentCaptured(ctx, event.BookingRef, event.Amount)
	case EventPaymentFailed:
		c.log.Warn("Payment failed: booking_ref=%s", event.BookingRef)
		return c.applier.ApplyPaymentFailed(ctx, event.BookingRef)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event.Type)
	}
}

// Close закрывает консьюмер
func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
