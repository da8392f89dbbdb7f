package calc

import "math/big"

// Format formats a result for display. Integers held exactly are written in
// full without a fractional part. Other values, including integers which were
// rounded to fit their precision, use the shortest decimal representation
// that reads back as x at its precision.
func Format(x *big.Float) string {
	switch {
	case x.Sign() == 0:
		// Includes -0.
		return "0"
	case isExact(x):
		return x.Text('f', 0)
	default:
		return x.Text('g', -1)
	}
}
