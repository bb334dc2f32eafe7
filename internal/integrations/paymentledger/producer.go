package paymentledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const publishRetries = 3

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Producer публикует события бронирований в платежный журнал
type Producer struct {
	writer *kafka.Writer
	topic  string
	log    Logger
}

// NewProducer создает продюсер платежного журнала
func NewProducer(brokers []string, topic string, log Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
		log:    log,
	}
}

// PublishCharge публикует запрос на списание за бронирование
// Ключ сообщения — booking_ref, чтобы события одного бронирования
// попадали в одну партицию и обрабатывались по порядку
func (p *Producer) PublishCharge(ctx context.Context, event ChargeEvent) error {
	event.Type = EventChargeRequested
	if event.RequestedAt.IsZero() {
		event.RequestedAt = time.Now()
	}
	return p.publish(ctx, event.BookingRef, event)
}

// PublishRefund публикует запрос на возврат средств
func (p *Producer) PublishRefund(ctx context.Context, event RefundEvent) error {
	event.Type = EventRefundIssued
	if event.RequestedAt.IsZero() {
		event.RequestedAt = time.Now()
	}
	return p.publish(ctx, event.BookingRef, event)
}

func (p *Producer) publish(ctx context.Context, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPublish, err)
	}

	message := kafka.Message{
		Topic: p.topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	var lastErr error
	for attempt := 1; attempt <= publishRetries; attempt++ {
		if lastErr = p.writer.WriteMessages(ctx, message); lastErr == nil {
			p.log.Info("Published ledger event: topic=%s, key=%s", p.topic, key)
			return nil
		}

		p.log.Warn("Ledger publish attempt %d failed: key=%s, error=%v", attempt, key, lastErr)
		if attempt < publishRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrPublish, ctx.Err())
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
	}

	return fmt.Errorf("%w: after %d attempts: %v", ErrPublish, publishRetries, lastErr)
}

// Close закрывает продюсер
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
