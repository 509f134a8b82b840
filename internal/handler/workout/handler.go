package workout

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fittrack/internal/aggregation"
	domain "fittrack/internal/domain/workout"
	"fittrack/internal/handler/request"
	"fittrack/internal/handler/response"
	repo "fittrack/internal/repository/interfaces"
	workoutuc "fittrack/internal/usecase/workout"
)

// Handler обрабатывает HTTP-запросы тренировок.
type Handler struct {
	workouts workoutuc.Service
}

// NewHandler создаёт новый WorkoutHandler.
func NewHandler(workouts workoutuc.Service) *Handler {
	return &Handler{workouts: workouts}
}

// Create создаёт тренировку вместе с упражнениями и подходами.
//
//	@Summary	Новая тренировка
//	@Tags		workouts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		WorkoutRequest	true	"Тренировка"
//	@Success	201		{object}	WorkoutResponse
//	@Failure	400,401	{object}	response.ErrorResponse
//	@Router		/workouts [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	input, _, ok := bindWorkout(c)
	if !ok {
		return
	}

	w, err := h.workouts.Create(c.Request.Context(), userID, input)
	if err != nil {
		h.fail(c, "workout.Create", err)
		return
	}
	c.JSON(http.StatusCreated, ToWorkoutResponse(*w))
}

// List возвращает тренировки пользователя, новые первыми.
//
//	@Summary	Список тренировок
//	@Tags		workouts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		from	query		string	false	"С даты (YYYY-MM-DD)"
//	@Param		to		query		string	false	"По дату (YYYY-MM-DD)"
//	@Param		limit	query		int		false	"Размер страницы"
//	@Param		offset	query		int		false	"Смещение"
//	@Success	200		{object}	ListResponse
//	@Failure	400,401	{object}	response.ErrorResponse
//	@Router		/workouts [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	var params domain.ListParams
	if params.From, ok = request.QueryDate(c, "from"); !ok {
		return
	}
	if params.To, ok = request.QueryDate(c, "to"); !ok {
		return
	}
	if params.Limit, ok = request.QueryInt(c, "limit", 0); !ok {
		return
	}
	if params.Offset, ok = request.QueryInt(c, "offset", 0); !ok {
		return
	}

	page, err := h.workouts.List(c.Request.Context(), userID, params)
	if err != nil {
		h.fail(c, "workout.List", err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{
		Workouts: ToWorkoutResponses(page.Workouts),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
}

// Get возвращает тренировку с упражнениями и подходами.
//
//	@Summary	Тренировка
//	@Tags		workouts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id			path		string	true	"ID тренировки"
//	@Success	200			{object}	WorkoutResponse
//	@Failure	400,401,404	{object}	response.ErrorResponse
//	@Router		/workouts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.PathID(c, "id")
	if !ok {
		return
	}

	w, err := h.workouts.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, "workout.Get", err)
		return
	}
	c.JSON(http.StatusOK, ToWorkoutResponse(*w))
}

// Update применяет правки тренировки в одной транзакции.
//
//	@Summary	Изменение тренировки
//	@Tags		workouts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id				path		string			true	"ID тренировки"
//	@Param		body			body		WorkoutRequest	true	"Тренировка"
//	@Success	200				{object}	WorkoutResponse
//	@Failure	400,401,404,409	{object}	response.ErrorResponse
//	@Router		/workouts/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.PathID(c, "id")
	if !ok {
		return
	}

	input, deleted, ok := bindWorkout(c)
	if !ok {
		return
	}

	w, err := h.workouts.Update(c.Request.Context(), userID, id, workoutuc.UpdateInput{
		Input:              input,
		DeletedExerciseIDs: deleted,
	})
	if err != nil {
		h.fail(c, "workout.Update", err)
		return
	}
	c.JSON(http.StatusOK, ToWorkoutResponse(*w))
}

// Delete удаляет тренировку со всеми упражнениями и подходами.
//
//	@Summary	Удаление тренировки
//	@Tags		workouts
//	@Security	BearerAuth
//	@Param		id	path	string	true	"ID тренировки"
//	@Success	204
//	@Failure	400,401,404	{object}	response.ErrorResponse
//	@Router		/workouts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.workouts.Delete(c.Request.Context(), userID, id); err != nil {
		h.fail(c, "workout.Delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindWorkout разбирает тело запроса. Все идентификаторы проверяются
// до обращения к хранилищу.
func bindWorkout(c *gin.Context) (workoutuc.Input, []uuid.UUID, bool) {
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return workoutuc.Input{}, nil, false
	}

	date, err := request.ParseDate(req.Date)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "validation_error", "Некорректная дата, ожидается YYYY-MM-DD", gin.H{"field": "date"})
		return workoutuc.Input{}, nil, false
	}

	input := workoutuc.Input{
		Date:      date,
		Name:      req.Name,
		Duration:  req.Duration,
		Notes:     req.Notes,
		Exercises: make([]aggregation.ExerciseEdit, 0, len(req.Exercises)),
	}
	for i, ex := range req.Exercises {
		edit := aggregation.ExerciseEdit{Name: ex.Name, Notes: ex.Notes}
		if ex.ID != nil && *ex.ID != "" {
			id, err := request.ParseID(*ex.ID)
			if err != nil {
				response.Error(c, http.StatusBadRequest, "invalid_id", "Некорректный идентификатор", gin.H{"field": fmt.Sprintf("exercises[%d].id", i)})
				return workoutuc.Input{}, nil, false
			}
			edit.ID = &id
		}
		for _, s := range ex.Sets {
			edit.Sets = append(edit.Sets, aggregation.SetInput{
				Reps:   string(s.Reps),
				Weight: string(s.Weight),
				RPE:    s.RPE,
			})
		}
		input.Exercises = append(input.Exercises, edit)
	}

	deleted := make([]uuid.UUID, 0, len(req.DeletedExerciseIDs))
	for i, raw := range req.DeletedExerciseIDs {
		id, err := request.ParseID(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid_id", "Некорректный идентификатор", gin.H{"field": fmt.Sprintf("deleted_exercise_ids[%d]", i)})
			return workoutuc.Input{}, nil, false
		}
		deleted = append(deleted, id)
	}
	return input, deleted, true
}

func (h *Handler) fail(c *gin.Context, handler string, err error) {
	switch {
	case errors.Is(err, workoutuc.ErrValidation):
		response.Validation(c, err)
	case errors.Is(err, repo.ErrNotFound):
		response.Error(c, http.StatusNotFound, "workout_not_found", "Тренировка не найдена", nil)
	case errors.Is(err, repo.ErrConflict):
		response.Error(c, http.StatusConflict, "exercise_id_conflict", "Идентификатор упражнения уже используется", nil)
	default:
		response.Internal(c, handler, err)
	}
}
