package calc

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// BinaryFunc computes an operator's result. It must set z to the result of
// x OP y, where z may alias x or y, and return a non-nil error if the result
// is undefined.
type BinaryFunc func(z, x, y *big.Float) error

// Operator describes a binary operator.
type Operator struct {
	// Prec is the precedence value. Higher is more binding.
	Prec int8
	// Right indicates right-associativity.
	Right bool
	// Func computes the operator.
	Func BinaryFunc
}

// precedes reports whether top, which is already waiting on the operator
// stack, must be applied before op is pushed.
func (top Operator) precedes(op Operator) bool {
	if top.Prec != op.Prec {
		return top.Prec > op.Prec
	}
	return !op.Right
}

// Operators returns a copy of the default operator table.
func Operators() map[string]Operator {
	m := make(map[string]Operator, len(defaultops))
	for k, v := range defaultops {
		m[k] = v
	}
	return m
}

var defaultops = map[string]Operator{
	"+": {1, false, add},
	"-": {1, false, sub},
	"*": {5, false, mul},
	"/": {5, false, quo},
	"×": {5, false, mul},
	"÷": {5, false, quo},
	"^": {15, true, pow},
}

// maxExact is the largest result in bits which integer operations compute
// exactly. Larger results are rounded to the precision of the operands.
const maxExact = 1 << 20

// isExact reports whether x is an integer held without rounding, i.e. every
// bit of its integer part fits in its mantissa.
func isExact(x *big.Float) bool {
	return x.IsInt() && x.MantExp(nil) <= int(x.Prec())
}

// exactInts returns x and y as integers if both are exact.
func exactInts(x, y *big.Float) (a, b *big.Int, ok bool) {
	if !isExact(x) || !isExact(y) {
		return nil, nil, false
	}
	a, _ = x.Int(nil)
	b, _ = y.Int(nil)
	return a, b, true
}

// setExact sets z to n, widening z's precision to hold n without rounding.
func setExact(z *big.Float, n *big.Int) {
	if p := uint(n.BitLen()); p > z.Prec() {
		z.SetPrec(p)
	}
	z.SetInt(n)
}

func add(z, x, y *big.Float) error {
	if a, b, ok := exactInts(x, y); ok {
		setExact(z, a.Add(a, b))
		return nil
	}
	z.Add(x, y)
	return nil
}

func sub(z, x, y *big.Float) error {
	if a, b, ok := exactInts(x, y); ok {
		setExact(z, a.Sub(a, b))
		return nil
	}
	z.Sub(x, y)
	return nil
}

func mul(z, x, y *big.Float) error {
	if a, b, ok := exactInts(x, y); ok && a.BitLen()+b.BitLen() <= maxExact {
		setExact(z, a.Mul(a, b))
		return nil
	}
	z.Mul(x, y)
	return nil
}

func quo(z, x, y *big.Float) error {
	if y.Sign() == 0 {
		return DomainError{X: new(big.Float).Copy(y), Arg: 2, Func: "/"}
	}
	z.Quo(x, y)
	return nil
}

func pow(z, x, y *big.Float) error {
	if x.Sign() == 0 && y.Sign() < 0 {
		return DomainError{X: new(big.Float).Copy(x), Arg: 1, Func: "^"}
	}
	if y.IsInt() {
		if _, acc := y.Int64(); acc != big.Exact {
			return powhuge(z, x, y)
		}
		powint(z, x, y)
		return nil
	}
	// Non-integer powers of negative bases are complex.
	if x.Sign() < 0 {
		return DomainError{X: new(big.Float).Copy(x), Arg: 1, Func: "^"}
	}
	if x.Sign() == 0 {
		z.SetInt64(0)
		return nil
	}
	bigfloat.Pow(z, x, y)
	return nil
}

// powint sets z to x raised to the integer y. An exact x with a non-negative
// y gives an exact result when it fits in maxExact bits. Otherwise powint
// squares repeatedly at the precision of z.
func powint(z, x, y *big.Float) {
	n, _ := y.Int(nil)
	if isExact(x) && n.IsInt64() && n.Sign() >= 0 {
		a, _ := x.Int(nil)
		if k := n.Int64(); k <= maxExact && int64(a.BitLen())*k <= maxExact {
			setExact(z, a.Exp(a, n, nil))
			return
		}
	}
	neg := n.Sign() < 0
	n.Abs(n)
	prec := z.Prec()
	if prec == 0 {
		prec = x.Prec()
	}
	if prec == 0 {
		prec = 64
	}
	r := new(big.Float).SetPrec(prec).SetInt64(1)
	b := new(big.Float).SetPrec(prec).Set(x)
	for i, k := 0, n.BitLen(); i < k; i++ {
		if n.Bit(i) != 0 {
			r.Mul(r, b)
		}
		if i+1 < k {
			b.Mul(b, b)
		}
	}
	if neg {
		r.Quo(b.SetInt64(1), r)
	}
	z.Set(r)
}

// powhuge sets z to x raised to an integer y outside the range of int64. Any
// such power of a base other than ±1 overflows or underflows.
func powhuge(z, x, y *big.Float) error {
	c := new(big.Float).Abs(x).Cmp(big.NewFloat(1))
	switch {
	case c == 0:
		z.SetInt64(1)
	case (c > 0) == (y.Sign() > 0):
		return RangeError{Func: "^"}
	default:
		z.SetInt64(0)
	}
	// y is odd iff its lowest set bit is the ones place.
	if x.Sign() < 0 && y.MantExp(nil) == int(y.MinPrec()) {
		z.Neg(z)
	}
	return nil
}
