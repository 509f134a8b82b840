package aggregation

import "time"

const day = 24 * time.Hour

// TruncateDay возвращает полночь UTC календарного дня t (по его собственной зоне).
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayNumber возвращает номер календарного дня от начала эпохи.
func dayNumber(t time.Time) int64 {
	return TruncateDay(t).Unix() / int64(day/time.Second)
}

// StartOfWeek возвращает понедельник недели, содержащей t.
func StartOfWeek(t time.Time) time.Time {
	d := TruncateDay(t)
	offset := (int(d.Weekday()) + 6) % 7 // понедельник = 0
	return d.AddDate(0, 0, -offset)
}

// StartOfMonth возвращает первое число месяца, содержащего t.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
