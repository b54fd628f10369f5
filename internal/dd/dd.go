package dd

import (
	"fmt"
	"math"
	"strconv"
)

// DD is a double-double value Hi + Lo.
type DD struct {
	Hi float64
	Lo float64
}

var (
	Zero = DD{}
	One  = DD{Hi: 1}
)

// rootIterations is the number of Newton passes in Root. Starting from a
// float32 seed, precision doubles per pass; five passes is well past the
// 106 bits a DD can hold.
const rootIterations = 5

// splitter is 2^27 + 1. Splitting a float64 with it yields two halves of at
// most 26 significant bits each, so every partial product is exact.
const splitter = 134217729.0

// FromFloat widens d to a DD with a zero low word.
func FromFloat(d float64) DD {
	return DD{Hi: d}
}

// The explicit float64 conversions below stop the compiler from fusing a
// multiply into a following add; error-free transforms depend on every
// product being rounded on its own.

func split(a float64) (hi, lo float64) {
	t := float64(splitter * a)
	hi = t - (t - a)
	lo = a - hi
	return hi, lo
}

func quickTwoSum(a, b float64) (s, e float64) {
	s = a + b
	e = b - (s - a)
	return s, e
}

func twoSum(a, b float64) (s, e float64) {
	s = a + b
	bb := s - a
	e = (a - (s - bb)) + (b - bb)
	return s, e
}

func twoProd(a, b float64) (p, e float64) {
	p = float64(a * b)
	ah, al := split(a)
	bh, bl := split(b)
	e = ((float64(ah*bh) - p) + float64(ah*bl) + float64(al*bh)) + float64(al*bl)
	return p, e
}

// Add returns a + b. Both low words take part in the compensated sum.
func (a DD) Add(b DD) DD {
	s1, s2 := twoSum(a.Hi, b.Hi)
	t1, t2 := twoSum(a.Lo, b.Lo)
	s2 += t1
	s1, s2 = quickTwoSum(s1, s2)
	s2 += t2
	s1, s2 = quickTwoSum(s1, s2)
	return DD{Hi: s1, Lo: s2}
}

// Sub returns a - b.
func (a DD) Sub(b DD) DD {
	return a.Add(b.Neg())
}

// Neg returns -a.
func (a DD) Neg() DD {
	return DD{Hi: -a.Hi, Lo: -a.Lo}
}

// Mul returns a * b. The rounding error of Hi*Hi is recovered exactly by
// twoProd and folded back in with the cross terms.
func (a DD) Mul(b DD) DD {
	p, e := twoProd(a.Hi, b.Hi)
	e += float64(a.Hi*b.Lo) + float64(a.Lo*b.Hi)
	p, e = quickTwoSum(p, e)
	return DD{Hi: p, Lo: e}
}

// Scale returns a * f.
func (a DD) Scale(f float64) DD {
	return a.Mul(FromFloat(f))
}

// Div returns a / b using one reciprocal estimate of b.Hi and a single
// correction pass on the residual. Division by zero follows float64
// semantics on the high word.
func (a DD) Div(b DD) DD {
	if b.Hi == 0 {
		return DD{Hi: a.Hi / b.Hi}
	}
	xn := 1 / b.Hi
	yn := FromFloat(float64(a.Hi * xn))
	diff := a.Sub(b.Mul(yn)).Hi
	p, e := twoProd(xn, diff)
	return yn.Add(DD{Hi: p, Lo: e})
}

// Abs returns |a|.
func (a DD) Abs() DD {
	if Zero.GreaterThan(a) {
		return a.Neg()
	}
	return a
}

// GreaterThan reports a > b, comparing (Hi, Lo) lexicographically.
func (a DD) GreaterThan(b DD) bool {
	return a.Hi > b.Hi || (a.Hi == b.Hi && a.Lo > b.Lo)
}

// Equal reports whether a and b hold the same pair.
func (a DD) Equal(b DD) bool {
	return a.Hi == b.Hi && a.Lo == b.Lo
}

// GreaterOrEqual reports a >= b.
func (a DD) GreaterOrEqual(b DD) bool {
	return a.GreaterThan(b) || a.Equal(b)
}

// Pow returns a^n by repeated multiplication. Pow(0) is One.
func (a DD) Pow(n uint) DD {
	r := One
	for i := uint(0); i < n; i++ {
		r = r.Mul(a)
	}
	return r
}

// Root returns the positive real n-th root of a. It iterates
//
//	x <- x + x*(1 - a*x^n)/n
//
// which converges to a^(-1/n), then takes the reciprocal.
func (a DD) Root(n uint) (DD, error) {
	if n == 0 {
		return Zero, ErrBadRoot
	}
	if !a.GreaterThan(Zero) {
		return Zero, fmt.Errorf("%w: %v", ErrNonPositive, a)
	}
	if n == 1 {
		return a, nil
	}

	nf := FromFloat(float64(n))
	s := math.Pow(a.Hi, -1/float64(n))
	x := FromFloat(float64(float32(s)))
	if x.Hi == 0 || math.IsInf(x.Hi, 0) {
		// out of float32 range
		x = FromFloat(s)
	}

	for i := 0; i < rootIterations; i++ {
		r := One.Sub(a.Mul(x.Pow(n)))
		x = x.Add(x.Mul(r).Div(nf))
	}
	return One.Div(x).Abs(), nil
}

// Float64 rounds a to the nearest float64.
func (a DD) Float64() float64 {
	return a.Hi + a.Lo
}

// Log2 approximates log2(a) in float64. It is exact for powers of two.
func (a DD) Log2() float64 {
	return math.Log2(a.Hi) + a.Lo/(a.Hi*math.Ln2)
}

// IsValid reports whether neither word is NaN or infinite.
func (a DD) IsValid() bool {
	return !math.IsNaN(a.Hi) && !math.IsInf(a.Hi, 0) && !math.IsNaN(a.Lo) && !math.IsInf(a.Lo, 0)
}

// String formats a for humans. It is lossy; use the command codec to
// persist values.
func (a DD) String() string {
	if a.Lo == 0 {
		return strconv.FormatFloat(a.Hi, 'g', -1, 64)
	}
	sign := " +"
	if a.Lo < 0 {
		sign = " "
	}
	return strconv.FormatFloat(a.Hi, 'g', -1, 64) + sign + strconv.FormatFloat(a.Lo, 'g', 4, 64)
}
