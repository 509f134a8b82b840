package weight

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "fittrack/internal/domain/weight"
	"fittrack/internal/handler/request"
	"fittrack/internal/handler/response"
	repo "fittrack/internal/repository/interfaces"
	weightuc "fittrack/internal/usecase/weight"
)

// Handler обрабатывает HTTP-запросы журнала веса.
type Handler struct {
	weights weightuc.Service
}

// NewHandler создаёт новый WeightHandler.
func NewHandler(weights weightuc.Service) *Handler {
	return &Handler{weights: weights}
}

// Create добавляет запись веса.
//
//	@Summary	Новая запись веса
//	@Tags		weights
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		AddWeightRequest	true	"Запись"
//	@Success	201		{object}	RecordResponse
//	@Failure	400,401	{object}	response.ErrorResponse
//	@Router		/weights [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	var req AddWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return
	}

	var date time.Time
	if req.Date != "" {
		d, err := request.ParseDate(req.Date)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "validation_error", "Некорректная дата, ожидается YYYY-MM-DD", nil)
			return
		}
		date = d
	}

	rec, err := h.weights.Add(c.Request.Context(), userID, weightuc.AddInput{
		Date:   date,
		Weight: *req.Weight,
		Notes:  req.Notes,
	})
	if err != nil {
		h.fail(c, "weight.Create", err)
		return
	}
	c.JSON(http.StatusCreated, ToRecordResponse(*rec))
}

// List возвращает историю веса.
//
//	@Summary	История веса
//	@Tags		weights
//	@Produce	json
//	@Security	BearerAuth
//	@Param		from	query		string	false	"С даты (YYYY-MM-DD)"
//	@Param		to		query		string	false	"По дату (YYYY-MM-DD)"
//	@Param		range	query		string	false	"Окно: 1m, 3m, 6m, all"
//	@Param		order	query		string	false	"asc или desc"
//	@Param		limit	query		int		false	"Максимум записей"
//	@Success	200		{object}	ListResponse
//	@Failure	400,401	{object}	response.ErrorResponse
//	@Router		/weights [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	from, ok := request.QueryDate(c, "from")
	if !ok {
		return
	}
	to, ok := request.QueryDate(c, "to")
	if !ok {
		return
	}
	r, ok := parseRange(c)
	if !ok {
		return
	}
	limit, ok := request.QueryInt(c, "limit", 0)
	if !ok {
		return
	}

	var ascending bool
	switch c.DefaultQuery("order", "desc") {
	case "asc":
		ascending = true
	case "desc":
	default:
		response.Error(c, http.StatusBadRequest, "validation_error", "Порядок должен быть asc или desc", gin.H{"param": "order"})
		return
	}

	records, err := h.weights.List(c.Request.Context(), userID, weightuc.ListInput{
		From:      from,
		To:        to,
		Range:     r,
		Ascending: ascending,
		Limit:     limit,
	})
	if err != nil {
		h.fail(c, "weight.List", err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Records: ToRecordResponses(records)})
}

// Trend возвращает записи окна и изменение веса.
//
//	@Summary	Динамика веса
//	@Tags		weights
//	@Produce	json
//	@Security	BearerAuth
//	@Param		range	query		string	false	"Окно: 1m, 3m, 6m, all"
//	@Success	200		{object}	TrendResponse
//	@Failure	400,401	{object}	response.ErrorResponse
//	@Router		/weights/trend [get]
func (h *Handler) Trend(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	r, ok := parseRange(c)
	if !ok {
		return
	}

	view, err := h.weights.Trend(c.Request.Context(), userID, r)
	if err != nil {
		h.fail(c, "weight.Trend", err)
		return
	}
	c.JSON(http.StatusOK, TrendResponse{
		Range:   string(view.Range),
		Records: ToRecordResponses(view.Records),
		Trend:   view.Trend,
	})
}

// Get возвращает запись веса.
//
//	@Summary	Запись веса
//	@Tags		weights
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id			path		string	true	"ID записи"
//	@Success	200			{object}	RecordResponse
//	@Failure	400,401,404	{object}	response.ErrorResponse
//	@Router		/weights/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.PathID(c, "id")
	if !ok {
		return
	}

	rec, err := h.weights.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, "weight.Get", err)
		return
	}
	c.JSON(http.StatusOK, ToRecordResponse(*rec))
}

// Delete удаляет запись веса.
//
//	@Summary	Удаление записи веса
//	@Tags		weights
//	@Security	BearerAuth
//	@Param		id	path	string	true	"ID записи"
//	@Success	204
//	@Failure	400,401,404	{object}	response.ErrorResponse
//	@Router		/weights/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.weights.Delete(c.Request.Context(), userID, id); err != nil {
		h.fail(c, "weight.Delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseRange(c *gin.Context) (domain.Range, bool) {
	r, ok := domain.ParseRange(c.Query("range"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "validation_error", "Окно должно быть 1m, 3m, 6m или all", gin.H{"param": "range"})
		return "", false
	}
	return r, true
}

func (h *Handler) fail(c *gin.Context, handler string, err error) {
	switch {
	case errors.Is(err, weightuc.ErrValidation):
		response.Validation(c, err)
	case errors.Is(err, repo.ErrNotFound):
		response.Error(c, http.StatusNotFound, "weight_record_not_found", "Запись веса не найдена", nil)
	default:
		response.Internal(c, handler, err)
	}
}
