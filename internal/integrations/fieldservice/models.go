package fieldservice

import (
	"time"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	"github.com/m04kA/SMC-FieldBookingService/pkg/types"
)

// fieldResponse модель поля из FieldService
type fieldResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Sport string `json:"sport"`

	Schedule     weekScheduleResponse  `json:"schedule"`
	SpecialDates []specialDateResponse `json:"special_dates"`

	Pricing pricingResponse `json:"pricing"`

	MinBookingMinutes  int `json:"min_booking_minutes"`
	MaxBookingMinutes  int `json:"max_booking_minutes"`
	AdvanceBookingDays int `json:"advance_booking_days"`

	CancellationPolicy *cancellationPolicyResponse `json:"cancellation_policy,omitempty"`
}

type weekScheduleResponse struct {
	Monday    dayScheduleResponse `json:"monday"`
	Tuesday   dayScheduleResponse `json:"tuesday"`
	Wednesday dayScheduleResponse `json:"wednesday"`
	Thursday  dayScheduleResponse `json:"thursday"`
	Friday    dayScheduleResponse `json:"friday"`
	Saturday  dayScheduleResponse `json:"saturday"`
	Sunday    dayScheduleResponse `json:"sunday"`
}

type dayScheduleResponse struct {
	IsOpen    bool                    `json:"is_open"`
	OpenTime  *string                 `json:"open_time,omitempty"`
	CloseTime *string                 `json:"close_time,omitempty"`
	Breaks    []breakIntervalResponse `json:"breaks,omitempty"`
}

type breakIntervalResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type specialDateResponse struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	IsAvailable bool    `json:"is_available"`
	OpenTime    *string `json:"open_time,omitempty"`
	CloseTime   *string `json:"close_time,omitempty"`
}

type pricingResponse struct {
	HourlyRate     float64                 `json:"hourly_rate"`
	Currency       string                  `json:"currency"`
	PeakHourlyRate *float64                `json:"peak_hourly_rate,omitempty"`
	PeakWindows    []breakIntervalResponse `json:"peak_windows,omitempty"`
	GroupDiscounts []groupDiscountResponse `json:"group_discounts,omitempty"`
}

type groupDiscountResponse struct {
	MinPlayers int     `json:"min_players"`
	Percent    float64 `json:"percent"`
}

type cancellationPolicyResponse struct {
	RefundTiers        []refundTierResponse `json:"refund_tiers,omitempty"`
	NoShowGraceMinutes int                  `json:"no_show_grace_minutes"`
}

type refundTierResponse struct {
	MinHoursBefore float64 `json:"min_hours_before"`
	Percent        float64 `json:"percent"`
}

// ErrorResponse модель ошибки от FieldService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toDomain конвертирует ответ каталога в доменную модель
func (r *fieldResponse) toDomain() (*domain.Field, error) {
	field := &domain.Field{
		ID:                 r.ID,
		Name:               r.Name,
		Sport:              r.Sport,
		MinBookingMinutes:  r.MinBookingMinutes,
		MaxBookingMinutes:  r.MaxBookingMinutes,
		AdvanceBookingDays: r.AdvanceBookingDays,
	}

	var err error
	if field.Schedule.Monday, err = r.Schedule.Monday.toDomain(); err != nil {
		return nil, err
	}
	if field.Schedule.Tuesday, err = r.Schedule.Tuesday.toDomain(); err != nil {
		return nil, err
	}
	if field.Schedule.Wednesday, err = r.Schedule.Wednesday.toDomain(); err != nil {
		return nil, err
	}
	if field.Schedule.Thursday, err = r.Schedule.Thursday.toDomain(); err != nil {
		return nil, err
	}
	if field.Schedule.Friday, err = r.Schedule.Friday.toDomain(); err != nil {
		return nil, err
	}
	if field.Schedule.Saturday, err = r.Schedule.Saturday.toDomain(); err != nil {
		return nil, err
	}
	if field.Schedule.Sunday, err = r.Schedule.Sunday.toDomain(); err != nil {
		return nil, err
	}

	for _, sd := range r.SpecialDates {
		date, err := time.Parse(domain.DateFormat, sd.Date)
		if err != nil {
			return nil, err
		}
		special := domain.SpecialDate{
			Date:        date,
			IsAvailable: sd.IsAvailable,
		}
		if special.OpenTime, err = parseOptionalTime(sd.OpenTime); err != nil {
			return nil, err
		}
		if special.CloseTime, err = parseOptionalTime(sd.CloseTime); err != nil {
			return nil, err
		}
		field.SpecialDates = append(field.SpecialDates, special)
	}

	field.Pricing = domain.FieldPricing{
		HourlyRate:     r.Pricing.HourlyRate,
		Currency:       r.Pricing.Currency,
		PeakHourlyRate: r.Pricing.PeakHourlyRate,
	}
	for _, pw := range r.Pricing.PeakWindows {
		start, err := types.NewTimeStringFromString(pw.Start)
		if err != nil {
			return nil, err
		}
		end, err := types.NewTimeStringFromString(pw.End)
		if err != nil {
			return nil, err
		}
		field.Pricing.PeakWindows = append(field.Pricing.PeakWindows, domain.PeakWindow{Start: start, End: end})
	}
	for _, gd := range r.Pricing.GroupDiscounts {
		field.Pricing.GroupDiscounts = append(field.Pricing.GroupDiscounts, domain.GroupDiscount{
			MinPlayers: gd.MinPlayers,
			Percent:    gd.Percent,
		})
	}

	if r.CancellationPolicy != nil {
		field.CancellationPolicy.NoShowGraceMinutes = r.CancellationPolicy.NoShowGraceMinutes
		for _, tier := range r.CancellationPolicy.RefundTiers {
			field.CancellationPolicy.RefundTiers = append(field.CancellationPolicy.RefundTiers, domain.RefundTier{
				MinHoursBefore: tier.MinHoursBefore,
				Percent:        tier.Percent,
			})
		}
	}

	return field, nil
}

func (d dayScheduleResponse) toDomain() (domain.DaySchedule, error) {
	day := domain.DaySchedule{IsOpen: d.IsOpen}

	var err error
	if day.OpenTime, err = parseOptionalTime(d.OpenTime); err != nil {
		return domain.DaySchedule{}, err
	}
	if day.CloseTime, err = parseOptionalTime(d.CloseTime); err != nil {
		return domain.DaySchedule{}, err
	}

	for _, br := range d.Breaks {
		start, err := types.NewTimeStringFromString(br.Start)
		if err != nil {
			return domain.DaySchedule{}, err
		}
		end, err := types.NewTimeStringFromString(br.End)
		if err != nil {
			return domain.DaySchedule{}, err
		}
		day.Breaks = append(day.Breaks, domain.BreakInterval{Start: start, End: end})
	}

	return day, nil
}

func parseOptionalTime(s *string) (*types.TimeString, error) {
	if s == nil {
		return nil, nil
	}
	ts, err := types.NewTimeStringFromString(*s)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
