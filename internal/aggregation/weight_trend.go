package aggregation

import (
	"slices"
	"time"

	"fittrack/internal/domain/weight"
)

// Direction: направление изменения веса.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// WeightTrend сравнивает первую и последнюю запись периода.
// Без записей все поля nil.
type WeightTrend struct {
	Current          *float64   `json:"current"`
	Previous         *float64   `json:"previous"`
	Change           *float64   `json:"change"`
	ChangePercentage *float64   `json:"change_percentage"`
	Direction        *Direction `json:"direction"`
}

// SortRecordsAsc возвращает копию записей, упорядоченную по дате (стабильно).
func SortRecordsAsc(records []weight.Record) []weight.Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b weight.Record) int {
		if c := TruncateDay(a.Date).Compare(TruncateDay(b.Date)); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return sorted
}

// ComputeWeightTrend считает изменение веса между первой и последней записью.
// Процент изменения не определён (nil), если предыдущий вес равен 0.
func ComputeWeightTrend(records []weight.Record) WeightTrend {
	if len(records) == 0 {
		return WeightTrend{}
	}
	sorted := SortRecordsAsc(records)

	current := sorted[len(sorted)-1].Weight
	previous := sorted[0].Weight
	change := roundTo(current-previous, 2)

	trend := WeightTrend{
		Current:  &current,
		Previous: &previous,
		Change:   &change,
	}
	if previous != 0 {
		pct := roundTo(change/previous*100, 2)
		trend.ChangePercentage = &pct
	}
	dir := directionOf(change)
	trend.Direction = &dir
	return trend
}

// LatestWeightChange возвращает разницу между последней и предпоследней записью.
func LatestWeightChange(records []weight.Record) *float64 {
	if len(records) < 2 {
		return nil
	}
	sorted := SortRecordsAsc(records)
	change := roundTo(sorted[len(sorted)-1].Weight-sorted[len(sorted)-2].Weight, 2)
	return &change
}

// FilterByRange оставляет записи не старше окна r относительно now.
func FilterByRange(records []weight.Record, r weight.Range, now time.Time) []weight.Record {
	months := r.Months()
	if months == 0 {
		return records
	}
	cutoff := TruncateDay(now).AddDate(0, -months, 0)
	out := make([]weight.Record, 0, len(records))
	for _, rec := range records {
		if !TruncateDay(rec.Date).Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out
}

func directionOf(change float64) Direction {
	switch {
	case change > 0:
		return DirectionUp
	case change < 0:
		return DirectionDown
	default:
		return DirectionStable
	}
}
