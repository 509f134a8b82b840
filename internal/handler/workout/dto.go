package workout

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	domain "fittrack/internal/domain/workout"
	"fittrack/internal/handler/request"
)

// NumberText принимает число как в виде JSON-числа, так и строкой ("62,5", "10 reps").
// Разбор значения выполняет слой агрегации.
type NumberText string

// UnmarshalJSON реализует json.Unmarshaler.
func (n *NumberText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	// Экспоненциальная запись (1e2) приводится к десятичной.
	f, err := num.Float64()
	if err != nil {
		return err
	}
	*n = NumberText(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// SetRequest: подход в форме тренировки.
type SetRequest struct {
	Reps   NumberText `json:"reps"`
	Weight NumberText `json:"weight"`
	RPE    *int       `json:"rpe"`
}

// ExerciseRequest: упражнение в форме тренировки. ID указывается для
// существующих упражнений и может быть задан клиентом для новых.
type ExerciseRequest struct {
	ID    *string      `json:"id"`
	Name  string       `json:"name"`
	Notes string       `json:"notes"`
	Sets  []SetRequest `json:"sets"`
}

// WorkoutRequest описывает тело запроса создания и изменения тренировки.
type WorkoutRequest struct {
	Date               string            `json:"date" binding:"required"`
	Name               string            `json:"name"`
	Duration           string            `json:"duration"`
	Notes              string            `json:"notes"`
	Exercises          []ExerciseRequest `json:"exercises"`
	DeletedExerciseIDs []string          `json:"deleted_exercise_ids"`
}

// SetResponse: подход в ответах API.
type SetResponse struct {
	ID        string  `json:"id,omitempty"`
	SetNumber int     `json:"set_number"`
	Reps      int     `json:"reps"`
	Weight    float64 `json:"weight"`
	RPE       *int    `json:"rpe"`
}

// ExerciseResponse: упражнение со сводкой и подходами.
type ExerciseResponse struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Sets     int           `json:"sets"`
	Reps     int           `json:"reps"`
	Weight   float64       `json:"weight"`
	Notes    string        `json:"notes"`
	Position int           `json:"position"`
	SetList  []SetResponse `json:"set_list"`
}

// WorkoutResponse: тренировка в ответах API.
type WorkoutResponse struct {
	ID        string             `json:"id"`
	Date      string             `json:"date"`
	Name      string             `json:"name"`
	Duration  string             `json:"duration"`
	Notes     string             `json:"notes"`
	Exercises []ExerciseResponse `json:"exercises"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ListResponse: страница тренировок.
type ListResponse struct {
	Workouts []WorkoutResponse `json:"workouts"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ToWorkoutResponse преобразует тренировку в DTO.
func ToWorkoutResponse(w domain.Workout) WorkoutResponse {
	resp := WorkoutResponse{
		ID:        w.ID.String(),
		Date:      w.Date.Format(request.DateLayout),
		Name:      w.Name,
		Duration:  w.Duration,
		Notes:     w.Notes,
		Exercises: make([]ExerciseResponse, 0, len(w.Exercises)),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	for _, ex := range w.Exercises {
		e := ExerciseResponse{
			ID:       ex.ID.String(),
			Name:     ex.Name,
			Sets:     ex.Sets,
			Reps:     ex.Reps,
			Weight:   ex.Weight,
			Notes:    ex.Notes,
			Position: ex.Position,
			SetList:  make([]SetResponse, 0, len(ex.SetList)),
		}
		for _, s := range ex.SetList {
			sr := SetResponse{
				SetNumber: s.SetNumber,
				Reps:      s.Reps,
				Weight:    s.Weight,
				RPE:       s.RPE,
			}
			// у синтетических подходов нет ID
			if s.ID != uuid.Nil {
				sr.ID = s.ID.String()
			}
			e.SetList = append(e.SetList, sr)
		}
		resp.Exercises = append(resp.Exercises, e)
	}
	return resp
}

// ToWorkoutResponses преобразует список тренировок.
func ToWorkoutResponses(workouts []domain.Workout) []WorkoutResponse {
	out := make([]WorkoutResponse, 0, len(workouts))
	for _, w := range workouts {
		out = append(out, ToWorkoutResponse(w))
	}
	return out
}
