package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/loan"
)

func samplePool() []loan.Record {
	return []loan.Record{
		{ID: "a", NoteRate: 6.0, Coupon: 5.5, Term: 360, Age: 0, CurrentBalance: 100000},
		{ID: "b", NoteRate: 3.5, Coupon: 3.0, Term: 180, Age: 40, CurrentBalance: 64000},
		{ID: "c", NoteRate: 4.25, Coupon: 3.75, Term: 360, Age: 250, CurrentBalance: 21000},
		{ID: "d", NoteRate: 2.875, Coupon: 2.5, Term: 240, Age: 12, CurrentBalance: 310000},
	}
}

func TestAggregate_ZeroCPRIsSimpleSum(t *testing.T) {
	t.Parallel()

	pool := samplePool()
	schedules, err := loan.AmortizeAll(context.Background(), pool, 0, 1)
	require.NoError(t, err)

	got, err := Aggregate(context.Background(), schedules, 1)
	require.NoError(t, err)
	require.Equal(t, 360, got.MaxWAM)

	wantBal := make([]float64, 361)
	wantInt := make([]float64, 361)
	wantPrin := make([]float64, 361)
	for _, s := range schedules {
		for k := range s.Balance {
			wantBal[k] += s.Balance[k]
			wantInt[k] += s.Interest[k]
			wantPrin[k] += s.Principal[k]
		}
	}
	assert.Equal(t, wantBal, got.Balance)
	assert.Equal(t, wantInt, got.Interest)
	assert.Equal(t, wantPrin, got.Principal)

	// Any worker count gives the same sums up to reassociation.
	par, err := Aggregate(context.Background(), schedules, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, wantBal, par.Balance, 1e-6)
	assert.InDeltaSlice(t, wantPrin, par.Principal, 1e-6)
}

func TestAggregate_TwoLoansAlignedOnValuationDate(t *testing.T) {
	t.Parallel()

	pool := []loan.Record{
		{NoteRate: 5.0, Coupon: 4.5, Term: 360, Age: 100, CurrentBalance: 80000},
		{NoteRate: 4.0, Coupon: 3.5, Term: 180, Age: 10, CurrentBalance: 120000},
	}
	f, err := Project(context.Background(), pool, 10, 2)
	require.NoError(t, err)

	assert.Equal(t, 260, f.MaxWAM)
	assert.Len(t, f.Balance, 261)
	assert.Equal(t, 200000.0, f.Balance[0])
	assert.Equal(t, 1.0, f.BalFrac[0])

	// The shorter loan is zero-padded after month 170.
	s, err := loan.Amortize(pool[0], 10)
	require.NoError(t, err)
	for t2 := 171; t2 <= 260; t2++ {
		assert.InDelta(t, s.Balance[t2], f.Balance[t2], 1e-9)
		assert.InDelta(t, s.Principal[t2], f.Principal[t2], 1e-9)
	}
	assert.Zero(t, f.Balance[260])
}

func TestAggregate_BalFracMonotone(t *testing.T) {
	t.Parallel()

	f, err := Project(context.Background(), samplePool(), 8, 0)
	require.NoError(t, err)

	assert.Equal(t, 1.0, f.BalFrac[0])
	for t2 := 1; t2 <= f.MaxWAM; t2++ {
		assert.LessOrEqual(t, f.Balance[t2], f.Balance[t2-1])
		assert.LessOrEqual(t, f.BalFrac[t2], f.BalFrac[t2-1])
	}
	assert.InDelta(t, 0, f.BalFrac[f.MaxWAM], 1e-12)
	assert.Less(t, f.BalFrac[120], 0.5)
}

func TestAggregate_Errors(t *testing.T) {
	t.Parallel()

	_, err := Aggregate(context.Background(), nil, 1)
	assert.True(t, errors.Is(err, errs.ErrInput))

	_, err = Aggregate(context.Background(), []loan.Schedule{{Balance: []float64{1, 0}, Interest: []float64{0}}}, 1)
	assert.True(t, errors.Is(err, errs.ErrInput))

	_, err = Project(context.Background(), nil, 5, 1)
	assert.True(t, errors.Is(err, errs.ErrInput))

	_, err = Project(context.Background(), samplePool(), 1200, 1)
	assert.True(t, errors.Is(err, errs.ErrInput))

	pool := samplePool()
	pool[1].NoteRate = 100000
	_, err = Project(context.Background(), pool, 5, 2)
	assert.True(t, errors.Is(err, errs.ErrDomain), "%v", err)
}

func TestMonthsToRunoff(t *testing.T) {
	t.Parallel()

	f := Forecast{
		MaxWAM:    4,
		Balance:   []float64{100, 80, 55, 20, 0},
		Principal: []float64{0, 20, 25, 35, 20},
		BalFrac:   []float64{1, 0.8, 0.55, 0.2, 0},
	}
	m, ok := f.MonthsToRunoff(0.5)
	assert.True(t, ok)
	assert.Equal(t, 3, m)

	m, ok = f.MonthsToRunoff(0.05)
	assert.True(t, ok)
	assert.Equal(t, 4, m)

	_, ok = f.MonthsToRunoff(0)
	assert.False(t, ok)

	assert.InDelta(t, 22.5, f.AverageRunoff(2), 1e-12)
	assert.InDelta(t, 25, f.AverageRunoff(12), 1e-12)
	assert.Zero(t, f.AverageRunoff(0))
}

func TestChunks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, [][2]int{{0, 4}, {4, 7}, {7, 10}}, Chunks(10, 3))
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, Chunks(2, 8))
	assert.Equal(t, [][2]int{{0, 5}}, Chunks(5, 0))
}
