package calc

import (
	"math/big"
	"strconv"
)

// OperatorError is an error indicating an operator token that is not in the
// evaluator's operator table. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
}

func (err *OperatorError) Error() string {
	return errpos(err.Col, "unknown operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched brackets in the input. It
// implements InputError.
type BracketError struct {
	// Col is the position of the unmatched bracket.
	Col int
	// Left is the opening bracket, or the empty string if a close bracket had
	// no open bracket.
	Left string
	// Right is the closing bracket, or the empty string if an open bracket
	// was never closed.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// UnderflowError is an error indicating an operator applied with fewer than
// two operands available. It implements InputError.
type UnderflowError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the operator being applied.
	Operator string
	// Have is the number of operands that were available.
	Have int
}

func (err *UnderflowError) Error() string {
	return errpos(err.Col, "operator "+strconv.Quote(err.Operator)+" needs 2 operands, have "+strconv.Itoa(err.Have))
}

func (err *UnderflowError) Pos() int {
	return err.Col
}

// MalformedError is an error indicating that evaluation ended without
// reducing the expression to exactly one value. It implements InputError.
type MalformedError struct {
	// Col is the position at which evaluation ended.
	Col int
	// Values is the number of values left on the operand stack. Zero means
	// the expression was empty.
	Values int
	// Pending is the number of operators left unapplied.
	Pending int
}

func (err *MalformedError) Error() string {
	switch {
	case err.Pending > 0:
		return errpos(err.Col, strconv.Itoa(err.Pending)+" operators left unapplied")
	case err.Values == 0:
		return errpos(err.Col, "no expression")
	default:
		return errpos(err.Col, "malformed expression: "+strconv.Itoa(err.Values)+" values with no operator between them")
	}
}

func (err *MalformedError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the rune column of the token
	// that caused it in the normalized expression.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*UnderflowError)(nil)
	_ InputError = (*MalformedError)(nil)
)

// DomainError is an error returned when an operator is applied to operands
// outside its domain.
type DomainError struct {
	// X is the out-of-domain operand.
	X *big.Float
	// Arg is the 1-based index of the operand, or 0 if the operands are only
	// invalid together.
	Arg int
	// Func is the operator.
	Func string
}

func (err DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

// RangeError is an error returned when a result is too large in magnitude to
// represent.
type RangeError struct {
	// Func is the operator whose result overflowed.
	Func string
}

func (err RangeError) Error() string {
	return "result of " + err.Func + " out of range"
}
