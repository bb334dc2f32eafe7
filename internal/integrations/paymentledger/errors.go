package paymentledger

import "errors"

var (
	// ErrPublish возвращается, когда событие не удалось отправить в Kafka
	ErrPublish = errors.New("paymentledger: failed to publish event")

	// ErrDecodeEvent возвращается при некорректном payload входящего события
	ErrDecodeEvent = errors.New("paymentledger: failed to decode event")

	// ErrUnknownEvent возвращается для событий неизвестного типа
	ErrUnknownEvent = errors.New("paymentledger: unknown event type")
)
