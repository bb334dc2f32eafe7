package create_recurring_series

import (
	"time"
)

// Request модель запроса на создание серии бронирований
type Request struct {
	UserID       int64     // ID пользователя
	FieldID      int64     // ID поля
	StartTime    time.Time // Начало первого игрового окна
	EndTime      time.Time // Конец первого игрового окна
	Participants int       // Количество игроков

	Frequency string    // "daily", "weekly", "monthly"
	Interval  int       // Каждые N единиц частоты
	EndDate   time.Time // Последняя дата серии (включительно)
	Mode      string    // "all_or_nothing" (по умолчанию) или "partial"

	Notes *string // Дополнительные заметки (опционально)
}

// CreatedOccurrence созданное вхождение серии
type CreatedOccurrence struct {
	BookingID        int64     // ID бронирования
	BookingRef       string    // Внешний идентификатор
	OccurrenceNumber int       // Порядковый номер в серии (с единицы)
	StartTime        time.Time // Начало окна
	EndTime          time.Time // Конец окна
	TotalAmount      float64   // Стоимость вхождения
}

// SkippedOccurrence пропущенное вхождение серии (только в режиме partial)
type SkippedOccurrence struct {
	OccurrenceNumber int       // Порядковый номер в серии
	StartTime        time.Time // Начало окна
	EndTime          time.Time // Конец окна
	Reason           string    // Причина пропуска
}

// Response модель ответа с созданной серией
type Response struct {
	SeriesID int64  // ID родительского бронирования серии
	Mode     string // Режим создания серии
	Status   string // Статус созданных бронирований

	Created []CreatedOccurrence // Созданные вхождения
	Skipped []SkippedOccurrence // Пропущенные вхождения (partial)

	TotalAmount float64 // Суммарная стоимость созданных вхождений
	Currency    string  // Валюта
}
