package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
)

// FormatDate форматирует дату как 02.01.2006
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end timeslot.Clock) string {
	return fmt.Sprintf("%s-%s", start.HHMM(), end.HHMM())
}

// GetWeekdayName возвращает название дня недели на русском
func GetWeekdayName(weekday time.Weekday) string {
	names := []string{
		"Воскресенье",
		"Понедельник",
		"Вторник",
		"Среда",
		"Четверг",
		"Пятница",
		"Суббота",
	}
	if weekday >= 0 && int(weekday) < len(names) {
		return names[weekday]
	}
	return "Неизвестно"
}

// PluralizeClasses возвращает правильное склонение слова "занятие"
func PluralizeClasses(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "занятие"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "занятия"
	}
	return "занятий"
}

func bookingKindName(kind model.BookingKind) string {
	if kind == model.BookingKindDemo {
		return "Демо-занятие"
	}
	return "Занятие"
}

func bookingLine(b model.Booking) string {
	return fmt.Sprintf("%s, %s %s",
		GetWeekdayName(b.Date.Weekday()), FormatDate(b.Date), FormatTimeRange(b.StartTime, b.EndTime))
}

// CancelledText текст уведомления об отмене
func CancelledText(b model.Booking, reason string) string {
	text := fmt.Sprintf("❌ %s #%d отменено\n\n📅 %s", bookingKindName(b.Kind), b.ID, bookingLine(b))
	if reason != "" {
		text += "\n📝 Причина: " + reason
	}
	return text
}

// RescheduledText текст уведомления о переносе
func RescheduledText(b model.Booking, e model.RescheduleEntry, reason string) string {
	text := fmt.Sprintf(
		"🔄 %s #%d перенесено\n\n"+
			"Было: %s, %s\n"+
			"Стало: %s",
		bookingKindName(b.Kind),
		b.ID,
		FormatDate(e.PreviousDate),
		FormatTimeRange(e.PreviousStartTime, e.PreviousEndTime),
		bookingLine(b),
	)
	if reason != "" {
		text += "\n📝 Причина: " + reason
	}
	return text
}

// VacationImpactText текст со списком занятий, попадающих в отпуск
func VacationImpactText(v model.Vacation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏖 Отпуск %s - %s\n", FormatDate(v.StartDate), FormatDate(v.EndDate))

	if len(v.ImpactedClasses) == 0 {
		sb.WriteString("\nЗанятий в эти даты нет.")
		return sb.String()
	}

	count := len(v.ImpactedClasses)
	fmt.Fprintf(&sb, "\n⚠️ В эти даты %d %s:\n", count, PluralizeClasses(count))
	for _, b := range v.ImpactedClasses {
		fmt.Fprintf(&sb, "• #%d %s\n", b.ID, bookingLine(b))
	}
	sb.WriteString("\nИх нужно отменить или перенести вручную.")
	return sb.String()
}

// VacationStatusText текст о решении по заявке на отпуск
func VacationStatusText(v model.Vacation) string {
	period := fmt.Sprintf("%s - %s", FormatDate(v.StartDate), FormatDate(v.EndDate))
	switch v.Status {
	case model.VacationStatusApproved:
		return "✅ Отпуск " + period + " одобрен"
	case model.VacationStatusRejected:
		return "🚫 Отпуск " + period + " отклонён"
	default:
		return "⏳ Отпуск " + period + " ожидает решения"
	}
}
