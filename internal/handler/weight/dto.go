package weight

import (
	"time"

	"fittrack/internal/aggregation"
	domain "fittrack/internal/domain/weight"
	"fittrack/internal/handler/request"
)

// AddWeightRequest описывает тело запроса новой записи веса.
// Пустая дата означает сегодня.
type AddWeightRequest struct {
	Date   string   `json:"date"`
	Weight *float64 `json:"weight" binding:"required"`
	Notes  string   `json:"notes"`
}

// RecordResponse: запись веса в ответах API.
type RecordResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Weight    float64   `json:"weight"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse: история веса.
type ListResponse struct {
	Records []RecordResponse `json:"records"`
}

// TrendResponse: данные графика веса за окно.
type TrendResponse struct {
	Range   string                  `json:"range"`
	Records []RecordResponse        `json:"records"`
	Trend   aggregation.WeightTrend `json:"trend"`
}

// ToRecordResponse преобразует запись веса в DTO.
func ToRecordResponse(r domain.Record) RecordResponse {
	return RecordResponse{
		ID:        r.ID.String(),
		Date:      r.Date.Format(request.DateLayout),
		Weight:    r.Weight,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
}

// ToRecordResponses преобразует список записей; nil превращается в пустой список.
func ToRecordResponses(records []domain.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToRecordResponse(r))
	}
	return out
}
