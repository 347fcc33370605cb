package loan

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/rmbs/errs"
)

func TestAmortize_ScheduleShape(t *testing.T) {
	t.Parallel()

	recs := []Record{
		{ID: "new", NoteRate: 6.0, Coupon: 5.5, Term: 360, Age: 0, CurrentBalance: 100000},
		{ID: "seasoned", NoteRate: 3.25, Coupon: 2.5, Term: 360, Age: 117, CurrentBalance: 231456.78},
		{ID: "short", NoteRate: 4.875, Coupon: 4.0, Term: 180, Age: 179, CurrentBalance: 812.40},
		{ID: "zero-rate", NoteRate: 0, Coupon: 0, Term: 120, Age: 20, CurrentBalance: 5000},
	}
	for _, cpr := range []float64{0, 6, 25, 100} {
		for _, rec := range recs {
			s, err := Amortize(rec, cpr)
			require.NoError(t, err, rec.ID)

			n := rec.Term - rec.Age + 1
			require.Len(t, s.Balance, n, rec.ID)
			require.Len(t, s.Interest, n, rec.ID)
			require.Len(t, s.Principal, n, rec.ID)
			assert.Equal(t, rec.CurrentBalance, s.Balance[0], rec.ID)
			assert.Zero(t, s.Interest[0])
			assert.Zero(t, s.Principal[0])

			sumPrin := 0.0
			for k := 1; k < n; k++ {
				assert.LessOrEqual(t, s.Balance[k], s.Balance[k-1], "%s cpr=%v k=%d", rec.ID, cpr, k)
				assert.GreaterOrEqual(t, s.Balance[k], 0.0)
				sumPrin += s.Principal[k]
			}
			last := s.Balance[n-1]
			assert.InDelta(t, rec.CurrentBalance-last, sumPrin, 1e-6*rec.CurrentBalance, "%s leakage", rec.ID)
			assert.InDelta(t, 0, last, 1e-6, "%s fully amortizes", rec.ID)
		}
	}
}

func TestAmortize_ClosedFormFirstMonth(t *testing.T) {
	t.Parallel()

	rec := Record{NoteRate: 6.0, Coupon: 5.5, Term: 360, Age: 0, CurrentBalance: 100000}
	s, err := Amortize(rec, 0)
	require.NoError(t, err)

	r := 0.06 / 12
	payment := rec.CurrentBalance * r / (1 - math.Pow(1+r, -360))
	want := rec.CurrentBalance*(1+r) - payment // 99,900.45

	assert.InDelta(t, want, s.Balance[1], 1.0)
	assert.InDelta(t, 99900.45, s.Balance[1], 0.01)
	assert.InDelta(t, 100000*0.055/12, s.Interest[1], 1e-9)
}

func TestAmortize_SeasonedMatchesAnnuityBalance(t *testing.T) {
	t.Parallel()

	// Without prepayment a seasoned loan follows the original level-payment path.
	r := 0.045 / 12
	orig := 250000.0
	payment := orig * r / (1 - math.Pow(1+r, -360))
	balanceAt := func(m int) float64 {
		g := math.Pow(1+r, float64(m))
		return orig*g - payment*(g-1)/r
	}

	rec := Record{NoteRate: 4.5, Coupon: 4.0, Term: 360, Age: 60, CurrentBalance: balanceAt(60)}
	s, err := Amortize(rec, 0)
	require.NoError(t, err)
	for _, k := range []int{1, 12, 120, 299} {
		assert.InDelta(t, balanceAt(60+k), s.Balance[k], 1e-6, "k=%d", k)
	}
}

func TestAmortize_PrepaymentDecay(t *testing.T) {
	t.Parallel()

	rec := Record{NoteRate: 5.0, Coupon: 4.5, Term: 360, Age: 24, CurrentBalance: 150000}
	base, err := Amortize(rec, 0)
	require.NoError(t, err)
	fast, err := Amortize(rec, 12)
	require.NoError(t, err)

	for _, k := range []int{1, 10, 100} {
		want := base.Balance[k] * math.Pow(1-12.0/1200, float64(k))
		assert.InDelta(t, want, fast.Balance[k], 1e-8, "k=%d", k)
	}
}

func TestAmortize_LastPayment(t *testing.T) {
	t.Parallel()

	rec := Record{NoteRate: 6.0, Coupon: 5.0, Term: 360, Age: 359, CurrentBalance: 1000}
	s, err := Amortize(rec, 10)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.InDelta(t, 0, s.Balance[1], 1e-9)
	assert.InDelta(t, 1000, s.Principal[1], 1e-9)
	assert.InDelta(t, 1000*0.05/12, s.Interest[1], 1e-12)
}

func TestAmortize_ZeroNoteRateIsStraightLine(t *testing.T) {
	t.Parallel()

	rec := Record{NoteRate: 0, Coupon: 0, Term: 100, Age: 50, CurrentBalance: 5000}
	s, err := Amortize(rec, 0)
	require.NoError(t, err)
	for k := 1; k <= 50; k++ {
		assert.InDelta(t, 100, s.Principal[k], 1e-9)
	}

	// Near-zero rates converge to the same limit.
	near, err := Amortize(Record{NoteRate: 1e-6, Term: 100, Age: 50, CurrentBalance: 5000}, 0)
	require.NoError(t, err)
	assert.InDelta(t, s.Balance[25], near.Balance[25], 1e-2)
}

func TestAmortize_Errors(t *testing.T) {
	t.Parallel()

	good := Record{NoteRate: 5, Coupon: 4.5, Term: 360, Age: 10, CurrentBalance: 1000}
	tests := []struct {
		name string
		rec  Record
		cpr  float64
	}{
		{"cpr at bound", good, 1200},
		{"cpr above bound", good, 1500},
		{"negative cpr", good, -1},
		{"zero term", Record{NoteRate: 5, Term: 0, CurrentBalance: 1}, 0},
		{"age equals term", Record{NoteRate: 5, Term: 360, Age: 360, CurrentBalance: 1}, 0},
		{"negative age", Record{NoteRate: 5, Term: 360, Age: -1, CurrentBalance: 1}, 0},
		{"zero balance", Record{NoteRate: 5, Term: 360, CurrentBalance: 0}, 0},
		{"negative note rate", Record{NoteRate: -1, Term: 360, CurrentBalance: 1}, 0},
		{"infinite note rate", Record{NoteRate: math.Inf(1), Coupon: 5, Term: 360, CurrentBalance: 1}, 0},
		{"infinite coupon", Record{NoteRate: 5, Coupon: math.Inf(-1), Term: 360, CurrentBalance: 1}, 0},
		{"nan coupon", Record{NoteRate: 5, Coupon: math.NaN(), Term: 360, CurrentBalance: 1}, 0},
	}
	for _, tc := range tests {
		_, err := Amortize(tc.rec, tc.cpr)
		require.Error(t, err, tc.name)
		assert.True(t, errors.Is(err, errs.ErrInput), tc.name)
	}
}

func TestAmortize_OverflowingNoteRate(t *testing.T) {
	t.Parallel()

	for _, rate := range []float64{100000, 1e300} {
		_, err := Amortize(Record{ID: "x", NoteRate: rate, Coupon: 5, Term: 360, CurrentBalance: 1000}, 0)
		require.Error(t, err, "note rate %g", rate)
		assert.True(t, errors.Is(err, errs.ErrDomain), "note rate %g: %v", rate, err)
	}

	// Large but representable rates still amortize to zero.
	s, err := Amortize(Record{NoteRate: 200, Coupon: 5, Term: 360, CurrentBalance: 1000}, 0)
	require.NoError(t, err)
	for k, b := range s.Balance {
		assert.False(t, math.IsNaN(b), "month %d", k)
	}
	assert.Zero(t, s.Balance[360])
}

func TestAmortizeAll_PreservesOrder(t *testing.T) {
	t.Parallel()

	recs := make([]Record, 50)
	for i := range recs {
		recs[i] = Record{NoteRate: 3 + float64(i)/10, Coupon: 2.5, Term: 360, Age: i, CurrentBalance: 1000 * float64(i+1)}
	}
	got, err := AmortizeAll(context.Background(), recs, 7, 4)
	require.NoError(t, err)
	require.Len(t, got, len(recs))
	for i, s := range got {
		want, err := Amortize(recs[i], 7)
		require.NoError(t, err)
		assert.Equal(t, want, s)
	}

	recs[17].Age = 400
	_, err = AmortizeAll(context.Background(), recs, 7, 4)
	assert.True(t, errors.Is(err, errs.ErrInput))
}
