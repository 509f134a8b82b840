package aggregation

import "time"

// MonthCount: количество тренировок за календарный месяц.
type MonthCount struct {
	Month string `json:"month"` // 2006-01
	Label string `json:"label"` // Jan
	Count int    `json:"count"`
}

// MonthlyHistogram возвращает monthsBack+1 корзин (текущий месяц включительно),
// от самой старой к текущей.
func MonthlyHistogram(dates []time.Time, monthsBack int, now time.Time) []MonthCount {
	monthsBack = max(monthsBack, 0)
	current := StartOfMonth(now)

	buckets := make([]MonthCount, monthsBack+1)
	index := make(map[string]int, len(buckets))
	for i := range buckets {
		start := current.AddDate(0, i-monthsBack, 0)
		key := start.Format("2006-01")
		buckets[i] = MonthCount{Month: key, Label: start.Format("Jan")}
		index[key] = i
	}

	for _, d := range dates {
		if i, ok := index[TruncateDay(d).Format("2006-01")]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}
