package isodata

import (
	"math"

	"github.com/cockroachdb/apd/v3"
)

var decCtx = apd.BaseContext.WithPrecision(34)

// accumulator keeps exact decimal sums so the mean and sample standard
// deviation do not depend on replicate order.
type accumulator struct {
	n     int64
	sum   apd.Decimal
	sumSq apd.Decimal
}

// add ignores NaN, which stands for a missing value.
func (a *accumulator) add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	var d, sq apd.Decimal
	if _, err := d.SetFloat64(v); err != nil {
		return
	}
	decCtx.Add(&a.sum, &a.sum, &d)
	decCtx.Mul(&sq, &d, &d)
	decCtx.Add(&a.sumSq, &a.sumSq, &sq)
	a.n++
}

// mean is NaN for an empty accumulator.
func (a *accumulator) mean() float64 {
	if a.n == 0 {
		return math.NaN()
	}
	var n, m apd.Decimal
	n.SetInt64(a.n)
	decCtx.Quo(&m, &a.sum, &n)
	f, _ := m.Float64()
	return f
}

// sd is the Bessel-corrected standard deviation; fewer than two values give 0.
func (a *accumulator) sd() float64 {
	if a.n < 2 {
		return 0
	}
	// (sumSq - sum*sum/n) / (n-1)
	var n, nm1, sq, corr, num, variance, root apd.Decimal
	n.SetInt64(a.n)
	nm1.SetInt64(a.n - 1)
	decCtx.Mul(&sq, &a.sum, &a.sum)
	decCtx.Quo(&corr, &sq, &n)
	decCtx.Sub(&num, &a.sumSq, &corr)
	if num.Negative {
		return 0
	}
	decCtx.Quo(&variance, &num, &nm1)
	decCtx.Sqrt(&root, &variance)
	f, _ := root.Float64()
	return f
}

// MeanSD returns the mean and sample standard deviation of vs, skipping NaN.
func MeanSD(vs []float64) (mean, sd float64) {
	var a accumulator
	for _, v := range vs {
		a.add(v)
	}
	return a.mean(), a.sd()
}
