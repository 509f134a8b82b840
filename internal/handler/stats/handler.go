package stats

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fittrack/internal/handler/request"
	"fittrack/internal/handler/response"
	statsuc "fittrack/internal/usecase/stats"
)

// Handler обрабатывает HTTP-запросы статистики.
type Handler struct {
	stats statsuc.Service
	now   func() time.Time
}

// NewHandler создаёт новый StatsHandler.
func NewHandler(stats statsuc.Service) *Handler {
	return &Handler{
		stats: stats,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard возвращает сводку главной страницы.
//
//	@Summary	Сводка
//	@Tags		stats
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	DashboardResponse
//	@Failure	401	{object}	response.ErrorResponse
//	@Router		/stats/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	d, err := h.stats.Dashboard(c.Request.Context(), userID, h.now())
	if err != nil {
		response.Internal(c, "stats.Dashboard", err)
		return
	}
	c.JSON(http.StatusOK, toDashboardResponse(d))
}

// Overview возвращает данные страницы статистики.
//
//	@Summary	Статистика
//	@Tags		stats
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	statsuc.Overview
//	@Failure	401	{object}	response.ErrorResponse
//	@Router		/stats/overview [get]
func (h *Handler) Overview(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	o, err := h.stats.Overview(c.Request.Context(), userID, h.now())
	if err != nil {
		response.Internal(c, "stats.Overview", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Calendar возвращает дни месяца, в которые есть тренировки или записи веса.
// Без параметров используется текущий месяц.
//
//	@Summary	Календарь
//	@Tags		stats
//	@Produce	json
//	@Security	BearerAuth
//	@Param		year	query		int	false	"Год"
//	@Param		month	query		int	false	"Месяц 1..12"
//	@Success	200		{object}	CalendarResponse
//	@Failure	400,401	{object}	response.ErrorResponse
//	@Router		/stats/calendar [get]
func (h *Handler) Calendar(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	now := h.now()
	year, ok := request.QueryInt(c, "year", now.Year())
	if !ok {
		return
	}
	month, ok := request.QueryInt(c, "month", int(now.Month()))
	if !ok {
		return
	}

	cal, err := h.stats.Calendar(c.Request.Context(), userID, year, time.Month(month))
	if err != nil {
		h.fail(c, "stats.Calendar", err)
		return
	}
	c.JSON(http.StatusOK, toCalendarResponse(cal))
}

// Day возвращает события одного дня.
//
//	@Summary	События дня
//	@Tags		stats
//	@Produce	json
//	@Security	BearerAuth
//	@Param		date	query		string	true	"Дата (YYYY-MM-DD)"
//	@Success	200		{object}	DayResponse
//	@Failure	400,401	{object}	response.ErrorResponse
//	@Router		/stats/calendar/day [get]
func (h *Handler) Day(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	date, ok := request.QueryDate(c, "date")
	if !ok {
		return
	}
	if date == nil {
		response.Error(c, http.StatusBadRequest, "validation_error", "Параметр date обязателен", gin.H{"param": "date"})
		return
	}

	day, err := h.stats.Day(c.Request.Context(), userID, *date)
	if err != nil {
		h.fail(c, "stats.Day", err)
		return
	}
	c.JSON(http.StatusOK, toDayResponse(*day))
}

func (h *Handler) fail(c *gin.Context, handler string, err error) {
	if errors.Is(err, statsuc.ErrValidation) {
		response.Validation(c, err)
		return
	}
	response.Internal(c, handler, err)
}
