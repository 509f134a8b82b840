package weight

import (
	"time"

	"github.com/google/uuid"
)

// Record: одно измерение веса тела. За один день допускается несколько записей.
type Record struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Date      time.Time // только дата, полночь UTC
	Weight    float64   // килограммы
	Notes     string
	CreatedAt time.Time
}

// Range задаёт окно выборки истории веса.
type Range string

const (
	Range1M  Range = "1m"
	Range3M  Range = "3m"
	Range6M  Range = "6m"
	RangeAll Range = "all"
)

// ParseRange разбирает строку окна. Пустая строка означает RangeAll.
func ParseRange(s string) (Range, bool) {
	switch Range(s) {
	case "", RangeAll:
		return RangeAll, true
	case Range1M, Range3M, Range6M:
		return Range(s), true
	default:
		return "", false
	}
}

// Months возвращает размер окна в месяцах; 0 для RangeAll.
func (r Range) Months() int {
	switch r {
	case Range1M:
		return 1
	case Range3M:
		return 3
	case Range6M:
		return 6
	default:
		return 0
	}
}

// ListParams задаёт фильтры выборки записей веса.
type ListParams struct {
	From      *time.Time
	To        *time.Time
	Ascending bool // по умолчанию новые записи первыми
	Limit     int
}
