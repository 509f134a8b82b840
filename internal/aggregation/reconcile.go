package aggregation

import (
	"github.com/google/uuid"

	"fittrack/internal/domain/workout"
)

// ExerciseEdit: упражнение из формы редактирования тренировки.
// ID == nil означает новое упражнение без клиентского идентификатора.
type ExerciseEdit struct {
	ID    *uuid.UUID
	Name  string
	Notes string
	Sets  []SetInput
}

// EditPlan описывает изменения упражнений тренировки.
//
// Применяется строго в порядке: удаление упражнений, запись сводок
// (UpdateExercises и InsertExercises), затем полная замена подходов
// каждого записанного упражнения на его SetList.
type EditPlan struct {
	DeleteExerciseIDs []uuid.UUID
	UpdateExercises   []workout.Exercise
	InsertExercises   []workout.Exercise
}

// IsEmpty сообщает, что план ничего не меняет.
func (p EditPlan) IsEmpty() bool {
	return len(p.DeleteExerciseIDs) == 0 && len(p.UpdateExercises) == 0 && len(p.InsertExercises) == 0
}

// ReconcileWorkoutEdit строит план применения правок к упражнениям тренировки.
//
// Удаляются только упражнения из deletedIDs, принадлежащие original; упражнение,
// которое одновременно удалено и присутствует в edited, сохраняется.
// Упражнение с ID из original обновляется. Упражнение с неизвестным ID
// вставляется с этим ID, поэтому повторное применение того же запроса
// превращается в обновление. Упражнение без ID получает новый идентификатор.
func ReconcileWorkoutEdit(
	workoutID uuid.UUID,
	original []workout.Exercise,
	edited []ExerciseEdit,
	deletedIDs []uuid.UUID,
) EditPlan {
	existing := make(map[uuid.UUID]struct{}, len(original))
	for _, ex := range original {
		existing[ex.ID] = struct{}{}
	}

	kept := make(map[uuid.UUID]struct{}, len(edited))
	for _, e := range edited {
		if e.ID != nil {
			kept[*e.ID] = struct{}{}
		}
	}

	var plan EditPlan
	seenDeleted := make(map[uuid.UUID]struct{}, len(deletedIDs))
	for _, id := range deletedIDs {
		if _, ok := existing[id]; !ok {
			continue
		}
		if _, ok := kept[id]; ok {
			continue
		}
		if _, dup := seenDeleted[id]; dup {
			continue
		}
		seenDeleted[id] = struct{}{}
		plan.DeleteExerciseIDs = append(plan.DeleteExerciseIDs, id)
	}

	written := make(map[uuid.UUID]struct{}, len(edited))
	for i, e := range edited {
		id := uuid.New()
		if e.ID != nil {
			id = *e.ID
		}
		// Повтор одного ID в форме: побеждает первое вхождение.
		if _, dup := written[id]; dup {
			continue
		}
		written[id] = struct{}{}

		sets := NormalizeSets(e.Sets)
		for j := range sets {
			sets[j].ExerciseID = id
		}
		summary := SummarizeExercise(sets)

		ex := workout.Exercise{
			ID:        id,
			WorkoutID: workoutID,
			Name:      e.Name,
			Notes:     e.Notes,
			Sets:      summary.Sets,
			Reps:      summary.AvgReps,
			Weight:    summary.AvgWeight,
			Position:  i,
			SetList:   sets,
		}

		if _, ok := existing[id]; ok {
			plan.UpdateExercises = append(plan.UpdateExercises, ex)
		} else {
			plan.InsertExercises = append(plan.InsertExercises, ex)
		}
	}

	return plan
}

// BuildExercises готовит упражнения новой тренировки: нормализует подходы
// и считает сводки.
func BuildExercises(workoutID uuid.UUID, edited []ExerciseEdit) []workout.Exercise {
	plan := ReconcileWorkoutEdit(workoutID, nil, edited, nil)
	return plan.InsertExercises
}
