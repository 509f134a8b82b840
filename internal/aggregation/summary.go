package aggregation

import (
	"math"
	"strconv"
	"strings"

	"fittrack/internal/domain/workout"
)

// SetInput: подход в том виде, в каком его ввёл пользователь.
// Reps и Weight могут быть пустыми или нечисловыми.
type SetInput struct {
	Reps   string
	Weight string
	RPE    *int
}

// Summary: сводка по подходам упражнения.
type Summary struct {
	Sets      int
	AvgReps   int
	AvgWeight float64
}

// ParseReps разбирает ведущее целое число строки. Ошибка разбора даёт 0.
func ParseReps(s string) int {
	num := leadingNumber(s, false)
	if num == "" {
		return 0
	}
	v, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	return v
}

// ParseWeight разбирает ведущее десятичное число строки. Ошибка разбора даёт 0.
func ParseWeight(s string) float64 {
	num := leadingNumber(strings.Replace(s, ",", ".", 1), true)
	if num == "" {
		return 0
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// leadingNumber вырезает из s префикс вида [+-]digits[.digits].
func leadingNumber(s string, allowFraction bool) string {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if allowFraction && i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	return s[:i]
}

// NormalizeSets превращает ввод пользователя в список подходов для сохранения.
//
// Остаются только подходы с положительными повторениями или весом. Если таких
// нет, возвращается один пустой подход. Номера подходов идут с 1 в порядке ввода,
// RPE вне диапазона 1..10 отбрасывается.
func NormalizeSets(inputs []SetInput) []workout.ExerciseSet {
	sets := make([]workout.ExerciseSet, 0, len(inputs))
	for _, in := range inputs {
		reps := max(ParseReps(in.Reps), 0)
		weight := max(ParseWeight(in.Weight), 0)
		if reps <= 0 && weight <= 0 {
			continue
		}
		sets = append(sets, workout.ExerciseSet{
			Reps:   reps,
			Weight: weight,
			RPE:    normalizeRPE(in.RPE),
		})
	}
	if len(sets) == 0 {
		sets = append(sets, placeholderSet())
	}
	for i := range sets {
		sets[i].SetNumber = i + 1
	}
	return sets
}

func normalizeRPE(rpe *int) *int {
	if rpe == nil || !workout.ValidRPE(*rpe) {
		return nil
	}
	v := *rpe
	return &v
}

func placeholderSet() workout.ExerciseSet {
	return workout.ExerciseSet{SetNumber: 1}
}

// SummarizeExercise считает сводку по подходам: количество, округлённое среднее
// повторений и средний вес с точностью до одного знака.
// Пустой список считается одним пустым подходом.
func SummarizeExercise(sets []workout.ExerciseSet) Summary {
	if len(sets) == 0 {
		sets = []workout.ExerciseSet{placeholderSet()}
	}

	var totalReps, totalWeight float64
	for _, s := range sets {
		totalReps += float64(s.Reps)
		totalWeight += s.Weight
	}
	n := float64(len(sets))

	return Summary{
		Sets:      len(sets),
		AvgReps:   int(math.Round(totalReps / n)),
		AvgWeight: roundTo(totalWeight/n, 1),
	}
}

// SyntheticSets строит подходы из сводки упражнения, у которого нет сохранённых подходов.
func SyntheticSets(ex workout.Exercise) []workout.ExerciseSet {
	count := max(ex.Sets, 1)
	sets := make([]workout.ExerciseSet, count)
	for i := range sets {
		sets[i] = workout.ExerciseSet{
			ExerciseID: ex.ID,
			SetNumber:  i + 1,
			Reps:       ex.Reps,
			Weight:     ex.Weight,
		}
	}
	return sets
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
