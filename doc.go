// Package calc implements an arbitrary-precision calculator for arithmetic
// on non-negative integers.
//
// Expressions use the binary operators + - * / and ^, where "a^b" is
// exponentiation and may also be written "a**b". Exponentiation is
// right-associative, so "2^3^2" is "2^(3^2)"; the other operators associate
// to the left. Division is real division: "7/2" is 3.5. Operands may be
// written as Roman numerals, so "XII+III" is 15.
//
// Integer arithmetic is exact. Division by zero, and zero raised to a negative
// power, are DomainErrors; results too large to represent are RangeErrors.
//
// Evaluation is a single pass over the tokens with an operator stack and an
// operand stack, reducing as soon as precedence allows. The operator table
// is data; WithOperator adds operators to a Context.
package calc
