package weight

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"fittrack/internal/aggregation"
	domain "fittrack/internal/domain/weight"
	repo "fittrack/internal/repository/interfaces"
)

// ErrValidation оборачивает ошибки проверки входных данных.
var ErrValidation = errors.New("validation failed")

const (
	maxWeight      = 999.99 // NUMERIC(5,2)
	maxNotesLength = 2000
	maxListLimit   = 1000
)

// ChangeNotifier получает уведомление после каждого изменения данных пользователя.
type ChangeNotifier interface {
	UserDataChanged(userID uuid.UUID, kind string)
}

// Service описывает usecase-слой журнала веса.
type Service interface {
	Add(ctx context.Context, userID uuid.UUID, input AddInput) (*domain.Record, error)
	List(ctx context.Context, userID uuid.UUID, input ListInput) ([]domain.Record, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Record, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// Trend возвращает записи окна (по возрастанию даты) и изменение веса за окно.
	Trend(ctx context.Context, userID uuid.UUID, r domain.Range) (*TrendView, error)
}

// AddInput описывает новую запись веса.
type AddInput struct {
	Date   time.Time
	Weight float64
	Notes  string
}

// ListInput задаёт выборку истории. Range применяется, если From не задан.
type ListInput struct {
	From      *time.Time
	To        *time.Time
	Range     domain.Range
	Ascending bool
	Limit     int
}

// TrendView: данные для графика веса.
type TrendView struct {
	Range   domain.Range
	Records []domain.Record
	Trend   aggregation.WeightTrend
}

type service struct {
	weights  repo.WeightRepository
	notifier ChangeNotifier
	now      func() time.Time
}

// NewService создаёт сервис журнала веса. notifier может быть nil.
func NewService(weights repo.WeightRepository, notifier ChangeNotifier) Service {
	return &service{
		weights:  weights,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddInput) (*domain.Record, error) {
	if math.IsNaN(input.Weight) || input.Weight <= 0 {
		return nil, fmt.Errorf("%w: weight must be positive", ErrValidation)
	}
	if input.Weight > maxWeight {
		return nil, fmt.Errorf("%w: weight must be at most %.2f", ErrValidation, maxWeight)
	}
	notes := strings.TrimSpace(input.Notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, fmt.Errorf("%w: notes must be at most %d characters", ErrValidation, maxNotesLength)
	}

	now := s.now()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	rec := &domain.Record{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      aggregation.TruncateDay(date),
		Weight:    math.Round(input.Weight*100) / 100,
		Notes:     notes,
		CreatedAt: now,
	}
	if err := s.weights.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create weight record: %w", err)
	}
	s.changed(userID)
	return rec, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, input ListInput) ([]domain.Record, error) {
	if input.Limit < 0 || input.Limit > maxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 0 and %d", ErrValidation, maxListLimit)
	}
	if input.From != nil && input.To != nil && input.From.After(*input.To) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrValidation)
	}

	params := domain.ListParams{
		From:      input.From,
		To:        input.To,
		Ascending: input.Ascending,
		Limit:     input.Limit,
	}
	if params.From == nil {
		params.From = s.rangeStart(input.Range)
	}
	return s.weights.List(ctx, userID, params)
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Record, error) {
	return s.weights.GetByID(ctx, userID, id)
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.weights.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID)
	return nil
}

func (s *service) Trend(ctx context.Context, userID uuid.UUID, r domain.Range) (*TrendView, error) {
	if r == "" {
		r = domain.RangeAll
	}
	records, err := s.weights.List(ctx, userID, domain.ListParams{
		From:      s.rangeStart(r),
		Ascending: true,
	})
	if err != nil {
		return nil, err
	}
	return &TrendView{
		Range:   r,
		Records: records,
		Trend:   aggregation.ComputeWeightTrend(records),
	}, nil
}

// rangeStart возвращает нижнюю границу окна или nil для всей истории.
func (s *service) rangeStart(r domain.Range) *time.Time {
	months := r.Months()
	if months == 0 {
		return nil
	}
	from := aggregation.TruncateDay(s.now()).AddDate(0, -months, 0)
	return &from
}

func (s *service) changed(userID uuid.UUID) {
	if s.notifier != nil {
		s.notifier.UserDataChanged(userID, "weight")
	}
}
