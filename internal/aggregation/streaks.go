package aggregation

import (
	"slices"
	"time"
)

// Streaks: серии тренировок по календарным дням подряд.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ComputeStreaks считает текущую и самую длинную серию.
//
// Даты сравниваются по календарным дням. Несколько тренировок в один день
// считаются одним днём, разрыв в два дня и более начинает серию заново.
// Current: последняя серия в истории, она не привязана к сегодняшнему дню.
func ComputeStreaks(dates []time.Time) Streaks {
	if len(dates) == 0 {
		return Streaks{}
	}

	days := make([]int64, len(dates))
	for i, d := range dates {
		days[i] = dayNumber(d)
	}
	slices.Sort(days)

	running, longest := 1, 1
	for i := 1; i < len(days); i++ {
		switch gap := days[i] - days[i-1]; {
		case gap == 0:
			continue
		case gap == 1:
			running++
		default:
			running = 1
		}
		longest = max(longest, running)
	}

	return Streaks{Current: running, Longest: longest}
}
