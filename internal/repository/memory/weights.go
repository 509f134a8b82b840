package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"fittrack/internal/aggregation"
	domain "fittrack/internal/domain/weight"
	repo "fittrack/internal/repository/interfaces"
)

// WeightRepository хранит записи веса в памяти.
type WeightRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.Record
	Err     error
}

var _ repo.WeightRepository = (*WeightRepository)(nil)

func NewWeightRepository() *WeightRepository {
	return &WeightRepository{records: make(map[uuid.UUID]domain.Record)}
}

func (r *WeightRepository) Create(_ context.Context, rec *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.records[rec.ID]; ok {
		return repo.ErrConflict
	}
	r.records[rec.ID] = *rec
	return nil
}

func (r *WeightRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return nil, repo.ErrNotFound
	}
	return &rec, nil
}

func (r *WeightRepository) List(_ context.Context, userID uuid.UUID, params domain.ListParams) ([]domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var out []domain.Record
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		d := aggregation.TruncateDay(rec.Date)
		if params.From != nil && d.Before(aggregation.TruncateDay(*params.From)) {
			continue
		}
		if params.To != nil && d.After(aggregation.TruncateDay(*params.To)) {
			continue
		}
		out = append(out, rec)
	}

	out = aggregation.SortRecordsAsc(out)
	if !params.Ascending {
		slices.Reverse(out)
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *WeightRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return repo.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *WeightRepository) Count(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	var n int64
	for _, rec := range r.records {
		if rec.UserID == userID {
			n++
		}
	}
	return n, nil
}
