package models_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/calcforge/calcdb/internal/calculations"
	"github.com/calcforge/calcdb/internal/models"
)

func TestNewCalculation(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		rawType string
		want    calculations.Kind
	}{
		{"addition", calculations.Addition},
		{"ADDITION", calculations.Addition},
		{"  Division \t", calculations.Division},
		{"Subtraction", calculations.Subtraction},
		{"multiplication", calculations.Multiplication},
	}

	for _, tt := range tests {
		t.Run(tt.rawType, func(t *testing.T) {
			calc, err := models.NewCalculation(tt.rawType, userID, []float64{1, 2, 3})
			if err != nil {
				t.Fatalf("NewCalculation(%q) error = %v", tt.rawType, err)
			}
			if calc.Type != tt.want {
				t.Errorf("Type = %q, want canonical %q", calc.Type, tt.want)
			}
			if calc.UserID != userID {
				t.Errorf("UserID = %v, want %v", calc.UserID, userID)
			}
			if len(calc.Inputs) != 3 || calc.Inputs[0] != 1 || calc.Inputs[2] != 3 {
				t.Errorf("Inputs = %v, want [1 2 3] in order", calc.Inputs)
			}
		})
	}
}

// The discriminator is case-insensitive, so both spellings build the same
// variant and compute the same value.
func TestNewCalculationCaseEquivalence(t *testing.T) {
	userID := uuid.New()

	upper, err := models.NewCalculation("ADDITION", userID, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("NewCalculation(ADDITION) error = %v", err)
	}
	lower, err := models.NewCalculation("addition", userID, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("NewCalculation(addition) error = %v", err)
	}

	if upper.Type != lower.Type {
		t.Errorf("Type mismatch: %q vs %q", upper.Type, lower.Type)
	}
	a, err := upper.GetResult()
	if err != nil {
		t.Fatalf("GetResult error = %v", err)
	}
	b, err := lower.GetResult()
	if err != nil {
		t.Fatalf("GetResult error = %v", err)
	}
	if a != b || a != 6 {
		t.Errorf("results differ or wrong: %v vs %v, want 6", a, b)
	}
}

func TestNewCalculationUnknownType(t *testing.T) {
	calc, err := models.NewCalculation("modulo", uuid.New(), []float64{1, 2})
	if !errors.Is(err, calculations.ErrUnknownType) {
		t.Fatalf("error = %v, want ErrUnknownType", err)
	}
	if calc != nil {
		t.Errorf("entity = %v, want nil on factory failure", calc)
	}
}

func TestNewCalculationShortInputs(t *testing.T) {
	for _, inputs := range [][]float64{{5}, {}, nil} {
		calc, err := models.NewCalculation("addition", uuid.New(), inputs)
		if !errors.Is(err, calculations.ErrInvalidInput) {
			t.Errorf("inputs %v: error = %v, want ErrInvalidInput", inputs, err)
		}
		if calc != nil {
			t.Errorf("inputs %v: entity = %v, want nil", inputs, calc)
		}
	}
}

func TestGetResult(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name string
		calc *models.Calculation
		want float64
	}{
		{"addition", models.NewAddition(userID, []float64{10, 5}), 15},
		{"subtraction", models.NewSubtraction(userID, []float64{10, 5, 2}), 3},
		{"multiplication", models.NewMultiplication(userID, []float64{2, 3, 4}), 24},
		{"division", models.NewDivision(userID, []float64{100, 5, 2}), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.calc.GetResult()
			if err != nil {
				t.Fatalf("GetResult error = %v", err)
			}
			if got != tt.want {
				t.Errorf("GetResult = %v, want %v", got, tt.want)
			}

			again, err := tt.calc.GetResult()
			if err != nil {
				t.Fatalf("second GetResult error = %v", err)
			}
			if again != got {
				t.Errorf("GetResult not idempotent: %v then %v", got, again)
			}
		})
	}
}

// Constructors skip factory validation, so a zero divisor surfaces at
// evaluation time instead.
func TestGetResultDivisionByZero(t *testing.T) {
	calc := models.NewDivision(uuid.New(), []float64{10, 0})
	_, err := calc.GetResult()
	if !errors.Is(err, calculations.ErrDivisionByZero) {
		t.Errorf("error = %v, want ErrDivisionByZero", err)
	}
}

// A record whose Type was mutated after construction fails at evaluation
// time rather than returning garbage.
func TestGetResultTamperedType(t *testing.T) {
	calc := models.NewAddition(uuid.New(), []float64{1, 2})
	calc.Type = calculations.Kind("exponentiation")
	_, err := calc.GetResult()
	if !errors.Is(err, calculations.ErrUnknownType) {
		t.Errorf("error = %v, want ErrUnknownType", err)
	}
}

func TestBeforeCreateAssignsID(t *testing.T) {
	calc := models.NewAddition(uuid.New(), []float64{1, 2})
	if err := calc.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate error = %v", err)
	}
	if calc.ID == uuid.Nil {
		t.Error("BeforeCreate left ID unset")
	}

	fixed := uuid.New()
	calc.ID = fixed
	if err := calc.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate error = %v", err)
	}
	if calc.ID != fixed {
		t.Errorf("BeforeCreate replaced caller-set ID %v with %v", fixed, calc.ID)
	}
}

// Inputs survive the driver boundary with element order intact.
func TestJSONListRoundTrip(t *testing.T) {
	in := models.JSONList{100, 5, 2, -1.5}

	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value error = %v", err)
	}

	var out models.JSONList
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("Scan returned %d elements, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("element %d = %v, want %v (order must hold)", i, out[i], in[i])
		}
	}
}

func TestJSONListScanRejectsNonArray(t *testing.T) {
	var l models.JSONList
	if err := l.Scan([]byte(`{"a": 1}`)); err == nil {
		t.Error("Scan accepted a JSON object, want error")
	}
}
