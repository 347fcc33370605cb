package curve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/rmbs/bond"
	"github.com/meenmo/rmbs/config"
)

// Build fits a curve that reprices every par bond in spec to 100 at once.
//
// The unknowns are the log discount factors at each bond maturity. Because a cubic spline
// couples all pillars, the pillars are solved jointly: a multidimensional Newton iteration
// on the repricing errors with a finite-difference Jacobian, stopping when every bond
// reprices within cfg.ConvergenceTolerance.
func Build(spec Spec, cfg config.Config) (*Curve, error) {
	cfg = cfg.WithDefaults()
	if err := spec.validate(); err != nil {
		return nil, err
	}
	bonds, err := spec.bonds()
	if err != nil {
		return nil, err
	}

	n := len(bonds)
	times := make([]float64, n+1)
	x := make([]float64, n)
	for i, b := range bonds {
		times[i+1] = b.node.Time
		// Continuously compounded guess at the par rate.
		x[i] = -b.node.ParRate / 100 * b.node.Time
	}

	residuals := func(x []float64) ([]float64, error) {
		logDF := withOrigin(x)
		spline, err := fitLogDF(times, logDF)
		if err != nil {
			return nil, fmt.Errorf("Build: interpolate: %w", err)
		}
		r := make([]float64, n)
		for i, b := range bonds {
			pv := 0.0
			for k, t := range b.times {
				pv += b.amounts[k] * math.Exp(logDFAt(spline, times, logDF, t))
			}
			r[i] = pv - bond.Face
		}
		return r, nil
	}

	r, err := residuals(x)
	if err != nil {
		return nil, err
	}
	iter := 0
	for ; !(maxAbs(r) < cfg.ConvergenceTolerance); iter++ {
		if iter >= cfg.MaxBootstrapIterations {
			return nil, fmt.Errorf("Build: did not converge after %d iterations (max repricing error %.3e)",
				cfg.MaxBootstrapIterations, maxAbs(r))
		}

		jac := mat.NewDense(n, n, nil)
		bumped := make([]float64, n)
		for j := 0; j < n; j++ {
			copy(bumped, x)
			bumped[j] += cfg.JacobianBump
			rb, err := residuals(bumped)
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				jac.Set(i, j, (rb[i]-r[i])/cfg.JacobianBump)
			}
		}

		rhs := make([]float64, n)
		floats.ScaleTo(rhs, -1, r)
		var step mat.VecDense
		if err := step.SolveVec(jac, mat.NewVecDense(n, rhs)); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) {
				return nil, fmt.Errorf("Build: Newton step at iteration %d: %w", iter, err)
			}
		}
		for j := 0; j < n; j++ {
			dx := step.AtVec(j)
			if math.Abs(dx) > cfg.DampingFactor {
				dx = math.Copysign(cfg.DampingFactor, dx)
			}
			x[j] += dx
		}

		if r, err = residuals(x); err != nil {
			return nil, err
		}
	}

	logDF := withOrigin(x)
	spline, err := fitLogDF(times, logDF)
	if err != nil {
		return nil, fmt.Errorf("Build: interpolate: %w", err)
	}
	nodes := make([]Node, n)
	for i, b := range bonds {
		nodes[i] = b.node
		nodes[i].DF = math.Exp(x[i])
	}
	return &Curve{
		valuation:  spec.ValuationDate,
		nodes:      nodes,
		times:      times,
		logDF:      logDF,
		spline:     spline,
		iterations: iter,
		residual:   maxAbs(r),
	}, nil
}

func withOrigin(x []float64) []float64 {
	out := make([]float64, len(x)+1)
	copy(out[1:], x)
	return out
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m || math.IsNaN(a) {
			m = a
		}
		if math.IsNaN(m) {
			return m
		}
	}
	return m
}
