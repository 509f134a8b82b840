package weight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/aggregation"
	domain "fittrack/internal/domain/weight"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/internal/repository/memory"
)

type recordingNotifier struct {
	calls []string
}

func (n *recordingNotifier) UserDataChanged(userID uuid.UUID, kind string) {
	n.calls = append(n.calls, userID.String()+":"+kind)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(now time.Time) (*service, *memory.WeightRepository, *recordingNotifier) {
	weights := memory.NewWeightRepository()
	notifier := &recordingNotifier{}
	svc := NewService(weights, notifier).(*service)
	svc.now = func() time.Time { return now }
	return svc, weights, notifier
}

func TestAdd(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	svc, _, notifier := newTestService(now)
	ctx := context.Background()
	userID := uuid.New()

	rec, err := svc.Add(ctx, userID, AddInput{Date: date(2024, 3, 9), Weight: 80.456, Notes: " morning "})
	require.NoError(t, err)
	assert.Equal(t, 80.46, rec.Weight)
	assert.Equal(t, "morning", rec.Notes)
	assert.Equal(t, date(2024, 3, 9), rec.Date)
	assert.Equal(t, []string{userID.String() + ":weight"}, notifier.calls)

	// без даты берётся сегодняшний день
	rec, err = svc.Add(ctx, userID, AddInput{Weight: 80})
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 10), rec.Date)
}

func TestAdd_Validation(t *testing.T) {
	svc, weights, notifier := newTestService(time.Now())
	ctx := context.Background()
	userID := uuid.New()

	for _, w := range []float64{0, -1, 1000} {
		_, err := svc.Add(ctx, userID, AddInput{Weight: w})
		require.ErrorIs(t, err, ErrValidation, "weight %v", w)
	}

	n, err := weights.Count(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, notifier.calls)
}

func TestAdd_RepositoryError(t *testing.T) {
	svc, weights, notifier := newTestService(time.Now())
	weights.Err = errors.New("connection reset")

	_, err := svc.Add(context.Background(), uuid.New(), AddInput{Weight: 70})
	require.Error(t, err)
	assert.Empty(t, notifier.calls)
}

func TestList(t *testing.T) {
	now := date(2024, 6, 15)
	svc, _, _ := newTestService(now)
	ctx := context.Background()
	userID := uuid.New()

	for _, d := range []time.Time{date(2024, 1, 1), date(2024, 5, 20), date(2024, 6, 1), date(2024, 6, 14)} {
		_, err := svc.Add(ctx, userID, AddInput{Date: d, Weight: 80})
		require.NoError(t, err)
	}
	// чужая запись не попадает в выборку
	_, err := svc.Add(ctx, uuid.New(), AddInput{Date: date(2024, 6, 14), Weight: 60})
	require.NoError(t, err)

	all, err := svc.List(ctx, userID, ListInput{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, date(2024, 6, 14), all[0].Date)

	month, err := svc.List(ctx, userID, ListInput{Range: domain.Range1M, Ascending: true})
	require.NoError(t, err)
	require.Len(t, month, 3)
	assert.Equal(t, date(2024, 5, 20), month[0].Date)

	limited, err := svc.List(ctx, userID, ListInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	from, to := date(2024, 6, 1), date(2024, 6, 1)
	exact, err := svc.List(ctx, userID, ListInput{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, exact, 1)

	_, err = svc.List(ctx, userID, ListInput{From: &now, To: &from})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.List(ctx, userID, ListInput{Limit: -1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestGetAndDelete_Ownership(t *testing.T) {
	svc, _, notifier := newTestService(time.Now())
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	rec, err := svc.Add(ctx, owner, AddInput{Weight: 75})
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger, rec.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, stranger, rec.ID), repo.ErrNotFound)

	got, err := svc.Get(ctx, owner, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, owner, rec.ID))
	_, err = svc.Get(ctx, owner, rec.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
	assert.Len(t, notifier.calls, 2)
}

func TestTrend(t *testing.T) {
	now := date(2024, 6, 15)
	svc, _, _ := newTestService(now)
	ctx := context.Background()
	userID := uuid.New()

	empty, err := svc.Trend(ctx, userID, domain.RangeAll)
	require.NoError(t, err)
	assert.Nil(t, empty.Trend.Current)
	assert.Nil(t, empty.Trend.Direction)

	for _, in := range []AddInput{
		{Date: date(2024, 1, 10), Weight: 90},
		{Date: date(2024, 5, 20), Weight: 85},
		{Date: date(2024, 6, 10), Weight: 84},
	} {
		_, err := svc.Add(ctx, userID, in)
		require.NoError(t, err)
	}

	all, err := svc.Trend(ctx, userID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.RangeAll, all.Range)
	require.Len(t, all.Records, 3)
	assert.Equal(t, date(2024, 1, 10), all.Records[0].Date)
	assert.Equal(t, -6.0, *all.Trend.Change)
	assert.Equal(t, aggregation.DirectionDown, *all.Trend.Direction)

	month, err := svc.Trend(ctx, userID, domain.Range1M)
	require.NoError(t, err)
	require.Len(t, month.Records, 2)
	assert.Equal(t, 85.0, *month.Trend.Previous)
	assert.Equal(t, 84.0, *month.Trend.Current)
	assert.Equal(t, -1.0, *month.Trend.Change)
}
