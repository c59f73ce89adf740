package calculations

import (
	"errors"
	"fmt"
)

// Errors returned by the operation functions.
var (
	ErrInvalidInput   = errors.New("inputs must contain at least two numbers")
	ErrDivisionByZero = errors.New("cannot divide by zero")
	ErrUnknownType    = errors.New("unknown calculation type")
)

// Sum returns the sum of all elements.
func Sum(inputs []float64) (float64, error) {
	if len(inputs) < 2 {
		return 0, ErrInvalidInput
	}
	total := inputs[0]
	for _, v := range inputs[1:] {
		total += v
	}
	return total, nil
}

// Difference returns the first element minus the sum of the rest.
func Difference(inputs []float64) (float64, error) {
	if len(inputs) < 2 {
		return 0, ErrInvalidInput
	}
	result := inputs[0]
	for _, v := range inputs[1:] {
		result -= v
	}
	return result, nil
}

// Product returns the running product of all elements.
func Product(inputs []float64) (float64, error) {
	if len(inputs) < 2 {
		return 0, ErrInvalidInput
	}
	result := inputs[0]
	for _, v := range inputs[1:] {
		result *= v
	}
	return result, nil
}

// Quotient returns the left-fold quotient: the first element divided
// successively by each subsequent element, in order. Any zero divisor
// fails with ErrDivisionByZero instead of producing Inf or NaN.
func Quotient(inputs []float64) (float64, error) {
	if len(inputs) < 2 {
		return 0, ErrInvalidInput
	}
	result := inputs[0]
	for _, v := range inputs[1:] {
		if v == 0 {
			return 0, ErrDivisionByZero
		}
		result /= v
	}
	return result, nil
}

// Apply computes the result for kind over inputs. It is a pure dispatch
// over the discriminator; repeated calls with the same inputs return the
// same value.
func Apply(kind Kind, inputs []float64) (float64, error) {
	switch kind {
	case Addition:
		return Sum(inputs)
	case Subtraction:
		return Difference(inputs)
	case Multiplication:
		return Product(inputs)
	case Division:
		return Quotient(inputs)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, string(kind))
}
