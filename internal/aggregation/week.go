package aggregation

import "time"

// CountInWeek считает даты, попадающие в неделю (с понедельника), содержащую now.
func CountInWeek(dates []time.Time, now time.Time) int {
	start := StartOfWeek(now)
	end := start.AddDate(0, 0, 7)
	n := 0
	for _, d := range dates {
		t := TruncateDay(d)
		if !t.Before(start) && t.Before(end) {
			n++
		}
	}
	return n
}

// WeekdaysWithWorkouts отмечает дни текущей недели, в которые были тренировки.
// Индекс 0 соответствует понедельнику.
func WeekdaysWithWorkouts(dates []time.Time, now time.Time) [7]bool {
	var days [7]bool
	start := StartOfWeek(now)
	end := start.AddDate(0, 0, 7)
	for _, d := range dates {
		t := TruncateDay(d)
		if t.Before(start) || !t.Before(end) {
			continue
		}
		days[int(t.Sub(start)/day)] = true
	}
	return days
}

// CountSince считает даты не раньше дня from.
func CountSince(dates []time.Time, from time.Time) int {
	start := TruncateDay(from)
	n := 0
	for _, d := range dates {
		if !TruncateDay(d).Before(start) {
			n++
		}
	}
	return n
}
