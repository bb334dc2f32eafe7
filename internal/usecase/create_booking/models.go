package create_booking

import (
	"time"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID       int64     // ID пользователя
	FieldID      int64     // ID поля
	StartTime    time.Time // Начало игрового окна
	EndTime      time.Time // Конец игрового окна
	Participants int       // Количество игроков
	Notes        *string   // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64  // ID созданного бронирования
	BookingRef string // Внешний идентификатор бронирования
	FieldID    int64  // ID поля
	UserID     int64  // ID пользователя

	StartTime        time.Time // Начало игрового окна
	EndTime          time.Time // Конец игрового окна
	Status           string    // Статус бронирования
	ConfirmationCode string    // Код подтверждения, выдается при создании
	Participants     int       // Количество игроков

	// Снимок цены, зафиксированный при создании
	BaseAmount      float64 // Стоимость аренды до скидок
	DiscountPercent float64 // Применённая скидка, %
	DiscountAmount  float64 // Сумма скидки
	TotalAmount     float64 // Итоговая стоимость
	Currency        string  // Валюта

	PaymentStatus string  // Статус оплаты
	Notes         *string // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
