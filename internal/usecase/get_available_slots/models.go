package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-FieldBookingService/pkg/types"
)

// Request модель запроса доступных слотов
type Request struct {
	FieldID         int64     // ID поля
	Date            time.Time // Дата (без времени)
	DurationMinutes int       // Длительность слота; 0 - минимальная длительность поля
}

// Slot один слот сетки доступности
type Slot struct {
	StartTime types.TimeString // Начало слота, например "10:00"
	EndTime   types.TimeString // Конец слота
	Available bool             // Свободен ли слот
	Price     float64          // Стоимость аренды на эту длительность
	Currency  string           // Валюта
}

// Response модель ответа с сеткой слотов
type Response struct {
	FieldID         int64     // ID поля
	Date            time.Time // Дата
	DurationMinutes int       // Длительность слота
	Slots           []Slot    // Сетка слотов; пустая, если поле закрыто
}
