package aggregation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/aggregation"
	"fittrack/internal/domain/workout"
)

func intPtr(v int) *int { return &v }

func TestParseReps(t *testing.T) {
	cases := map[string]int{
		"10":    10,
		" 8 ":   8,
		"12abc": 12,
		"":      0,
		"abc":   0,
		"7.9":   7,
		"-3":    -3,
		"+4":    4,
	}
	for in, want := range cases {
		assert.Equal(t, want, aggregation.ParseReps(in), "input %q", in)
	}
}

func TestParseWeight(t *testing.T) {
	cases := map[string]float64{
		"50":    50,
		"52.5":  52.5,
		"52,5":  52.5,
		"60kg":  60,
		".5":    0.5,
		"":      0,
		"heavy": 0,
		"12.":   12,
	}
	for in, want := range cases {
		assert.InDelta(t, want, aggregation.ParseWeight(in), 1e-9, "input %q", in)
	}
}

func TestSummarizeExercise_Averages(t *testing.T) {
	sets := []workout.ExerciseSet{
		{SetNumber: 1, Reps: 10, Weight: 50},
		{SetNumber: 2, Reps: 8, Weight: 55},
	}

	got := aggregation.SummarizeExercise(sets)
	assert.Equal(t, aggregation.Summary{Sets: 2, AvgReps: 9, AvgWeight: 52.5}, got)
}

func TestSummarizeExercise_Rounding(t *testing.T) {
	sets := []workout.ExerciseSet{
		{Reps: 10, Weight: 20},
		{Reps: 10, Weight: 20},
		{Reps: 11, Weight: 21},
	}

	got := aggregation.SummarizeExercise(sets)
	assert.Equal(t, 3, got.Sets)
	assert.Equal(t, 10, got.AvgReps)
	assert.Equal(t, 20.3, got.AvgWeight)
}

func TestSummarizeExercise_SetsEqualsLength(t *testing.T) {
	for n := 1; n <= 6; n++ {
		sets := make([]workout.ExerciseSet, n)
		for i := range sets {
			sets[i] = workout.ExerciseSet{Reps: i, Weight: float64(i)}
		}
		assert.Equal(t, n, aggregation.SummarizeExercise(sets).Sets)
	}
}

func TestSummarizeExercise_EmptyUsesPlaceholder(t *testing.T) {
	got := aggregation.SummarizeExercise(nil)
	assert.Equal(t, aggregation.Summary{Sets: 1}, got)
}

func TestNormalizeSets_FiltersAndNumbers(t *testing.T) {
	sets := aggregation.NormalizeSets([]aggregation.SetInput{
		{Reps: "10", Weight: "50", RPE: intPtr(8)},
		{Reps: "", Weight: ""},
		{Reps: "0", Weight: "60"},
		{Reps: "abc", Weight: "x"},
		{Reps: "5", Weight: "", RPE: intPtr(11)},
	})

	require.Len(t, sets, 3)
	for i, s := range sets {
		assert.Equal(t, i+1, s.SetNumber)
	}
	assert.Equal(t, 10, sets[0].Reps)
	require.NotNil(t, sets[0].RPE)
	assert.Equal(t, 8, *sets[0].RPE)
	assert.Equal(t, 60.0, sets[1].Weight)
	assert.Nil(t, sets[2].RPE)
}

func TestNormalizeSets_AllBlankYieldsOnePlaceholder(t *testing.T) {
	sets := aggregation.NormalizeSets([]aggregation.SetInput{
		{Reps: "", Weight: ""},
		{Reps: "0", Weight: "0"},
	})

	require.Len(t, sets, 1)
	assert.Equal(t, workout.ExerciseSet{SetNumber: 1}, sets[0])

	assert.Len(t, aggregation.NormalizeSets(nil), 1)
}

func TestNormalizeSets_NegativeValuesCoercedToZero(t *testing.T) {
	sets := aggregation.NormalizeSets([]aggregation.SetInput{
		{Reps: "-5", Weight: "20"},
	})

	require.Len(t, sets, 1)
	assert.Equal(t, 0, sets[0].Reps)
	assert.Equal(t, 20.0, sets[0].Weight)
}

func TestSyntheticSets(t *testing.T) {
	ex := workout.Exercise{Sets: 3, Reps: 8, Weight: 40}

	sets := aggregation.SyntheticSets(ex)
	require.Len(t, sets, 3)
	assert.Equal(t, 3, sets[2].SetNumber)
	assert.Equal(t, 8, sets[1].Reps)
	assert.Equal(t, 40.0, sets[0].Weight)

	assert.Len(t, aggregation.SyntheticSets(workout.Exercise{}), 1)
}
