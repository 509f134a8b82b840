package workout

import (
	"time"

	"github.com/google/uuid"
)

// Workout: тренировка пользователя за определённую дату.
type Workout struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Date      time.Time // только дата, полночь UTC
	Name      string
	Duration  string // свободный текст, например "45 min"
	Notes     string
	Exercises []Exercise
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Exercise: упражнение внутри тренировки.
//
// Sets, Reps и Weight являются сводкой по подходам и пересчитываются
// при каждом изменении подходов.
type Exercise struct {
	ID        uuid.UUID
	WorkoutID uuid.UUID
	Name      string
	Sets      int
	Reps      int
	Weight    float64
	Notes     string
	Position  int
	SetList   []ExerciseSet
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExerciseSet: один подход. SetNumber начинается с 1 и идёт без пропусков.
type ExerciseSet struct {
	ID         uuid.UUID
	ExerciseID uuid.UUID
	SetNumber  int
	Reps       int
	Weight     float64
	RPE        *int // 1..10 или nil
}

const (
	MinRPE = 1
	MaxRPE = 10
)

// ValidRPE сообщает, допустимо ли значение RPE.
func ValidRPE(v int) bool {
	return v >= MinRPE && v <= MaxRPE
}

// ListParams задаёт фильтры выборки тренировок.
type ListParams struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
