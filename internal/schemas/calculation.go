package schemas

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calcforge/calcdb/internal/calculations"
	"github.com/calcforge/calcdb/internal/models"
	"github.com/calcforge/calcdb/internal/types"
)

// Violation describes a single failed rule on a named field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated rule, not just the first, so a
// client can fix all of them in one round trip.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// CalculationCreate is the request payload for creating a calculation.
// Inputs tolerates a bare number or numeric strings at parse time; the
// length and zero-divisor rules are enforced by Validate.
type CalculationCreate struct {
	Type   string                            `json:"type"`
	Inputs types.FlexList[types.FlexFloat64] `json:"inputs"`
}

// Validate applies every input rule and returns a *ValidationError listing
// all violations. The calculation never reaches the factory, let alone
// storage, when any rule fails.
func (r *CalculationCreate) Validate() error {
	var violations []Violation

	kind, err := calculations.ParseKind(r.Type)
	if err != nil {
		violations = append(violations, Violation{
			Field:   "type",
			Message: "must be one of: " + kindList(),
		})
	}
	violations = append(violations, validateInputs(kind, r.InputValues())...)

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// InputValues converts the parsed inputs to plain float64 values.
func (r *CalculationCreate) InputValues() []float64 {
	return floatValues(r.Inputs)
}

// CalculationUpdate is the request payload for replacing a calculation's
// inputs. The stored type never changes on update.
type CalculationUpdate struct {
	Inputs types.FlexList[types.FlexFloat64] `json:"inputs"`
}

// Validate applies the input rules for the variant being updated.
func (r *CalculationUpdate) Validate(kind calculations.Kind) error {
	if violations := validateInputs(kind, r.InputValues()); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// InputValues converts the parsed inputs to plain float64 values.
func (r *CalculationUpdate) InputValues() []float64 {
	return floatValues(r.Inputs)
}

// validateInputs checks the rules shared by create and update: at least two
// finite numbers, and no zero divisor from the second position onward when
// the variant is division.
func validateInputs(kind calculations.Kind, inputs []float64) []Violation {
	var violations []Violation

	if len(inputs) < 2 {
		violations = append(violations, Violation{
			Field:   "inputs",
			Message: "must contain at least two numbers",
		})
	}
	for i, v := range inputs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			violations = append(violations, Violation{
				Field:   "inputs",
				Message: fmt.Sprintf("element %d must be a finite number", i),
			})
		}
	}
	if kind == calculations.Division {
		for i, v := range inputs {
			if i > 0 && v == 0 {
				violations = append(violations, Violation{
					Field:   "inputs",
					Message: fmt.Sprintf("cannot divide by zero (element %d)", i),
				})
			}
		}
	}

	return violations
}

func floatValues(list types.FlexList[types.FlexFloat64]) []float64 {
	vals := make([]float64, len(list))
	for i, v := range list {
		vals[i] = v.Float64()
	}
	return vals
}

func kindList() string {
	kinds := calculations.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// CalculationResponse is the wire shape of a stored calculation. Only the
// documented fields leave the service.
type CalculationResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Type      string    `json:"type"`
	Inputs    []float64 `json:"inputs"`
	Result    *float64  `json:"result"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCalculationResponse serializes a model, preferring the stored result
// cache and computing the value when the cache is absent.
func NewCalculationResponse(calc *models.Calculation) CalculationResponse {
	resp := CalculationResponse{
		ID:        calc.ID,
		UserID:    calc.UserID,
		Type:      string(calc.Type),
		Inputs:    []float64(calc.Inputs),
		Result:    calc.Result,
		CreatedAt: calc.CreatedAt,
		UpdatedAt: calc.UpdatedAt,
	}
	if resp.Result == nil {
		if v, err := calc.GetResult(); err == nil {
			resp.Result = &v
		}
	}
	return resp
}

// NewCalculationResponses serializes a list in place.
func NewCalculationResponses(calcs []models.Calculation) []CalculationResponse {
	out := make([]CalculationResponse, len(calcs))
	for i := range calcs {
		out[i] = NewCalculationResponse(&calcs[i])
	}
	return out
}
