// Package dd implements double-double arithmetic.
//
// A [DD] holds a value as the unevaluated sum of two float64 words,
// Hi + Lo, with |Lo| <= ulp(Hi)/2. This gives roughly 106 bits of
// significand, enough to keep a view transform sharp far past the point
// where a plain float64 magnification would collapse.
//
//   - [FromFloat], [DD.Add], [DD.Sub], [DD.Mul], [DD.Div]: arithmetic
//   - [DD.GreaterThan], [DD.Equal], [DD.Cmp]: ordering on (Hi, Lo)
//   - [DD.Pow], [DD.Root]: integer powers and Newton n-th roots
//
// # Example
//
//	step, _ := dd.FromFloat(2).Root(30)
//	mag := dd.One
//	for i := 0; i < 30; i++ {
//		mag = mag.Mul(step)
//	}
//	// mag is 2 to ~31 significant digits
//
// Values are immutable; every operation returns a new normalized pair.
package dd
