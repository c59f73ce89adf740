package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calcforge/calcdb/internal/calculations"
)

// Calculation is the single-table record behind all four calculation
// variants. Type is the discriminator; the factory sets it once and it never
// changes afterward. Result holds the cached value of the computation and is
// rewritten whenever Inputs changes.
type Calculation struct {
	ID        uuid.UUID         `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID         `gorm:"type:char(36);not null;index:idx_calculations_user_id"`
	Type      calculations.Kind `gorm:"size:32;not null;index:idx_calculations_type"`
	Inputs    JSONList          `gorm:"not null"`
	Result    *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns the primary key when the caller left it unset.
func (c *Calculation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName overrides the table name for Calculation
func (Calculation) TableName() string {
	return "calculations"
}

// GetResult computes the variant's value over Inputs. Validation runs again
// at evaluation time, so records written around the factory or mutated since
// still fail with the operation errors instead of returning garbage. Repeated
// calls with unchanged Inputs return the same value.
func (c *Calculation) GetResult() (float64, error) {
	return calculations.Apply(c.Type, c.Inputs)
}

// constructors is the fixed discriminator-to-constructor mapping behind
// NewCalculation.
var constructors = map[calculations.Kind]func(uuid.UUID, []float64) *Calculation{
	calculations.Addition:       NewAddition,
	calculations.Subtraction:    NewSubtraction,
	calculations.Multiplication: NewMultiplication,
	calculations.Division:       NewDivision,
}

// NewCalculation is the factory for calculation variants. The discriminator
// match is case-insensitive and ignores surrounding whitespace; the stored
// Type is the canonical lower-case form. Unknown discriminators fail with
// calculations.ErrUnknownType, short input lists with
// calculations.ErrInvalidInput. Nothing is persisted here.
func NewCalculation(rawType string, userID uuid.UUID, inputs []float64) (*Calculation, error) {
	kind, err := calculations.ParseKind(rawType)
	if err != nil {
		return nil, err
	}
	if len(inputs) < 2 {
		return nil, calculations.ErrInvalidInput
	}
	return constructors[kind](userID, inputs), nil
}

// NewAddition builds an addition calculation without factory validation.
func NewAddition(userID uuid.UUID, inputs []float64) *Calculation {
	return newCalculation(calculations.Addition, userID, inputs)
}

// NewSubtraction builds a subtraction calculation without factory validation.
func NewSubtraction(userID uuid.UUID, inputs []float64) *Calculation {
	return newCalculation(calculations.Subtraction, userID, inputs)
}

// NewMultiplication builds a multiplication calculation without factory validation.
func NewMultiplication(userID uuid.UUID, inputs []float64) *Calculation {
	return newCalculation(calculations.Multiplication, userID, inputs)
}

// NewDivision builds a division calculation without factory validation.
func NewDivision(userID uuid.UUID, inputs []float64) *Calculation {
	return newCalculation(calculations.Division, userID, inputs)
}

func newCalculation(kind calculations.Kind, userID uuid.UUID, inputs []float64) *Calculation {
	return &Calculation{
		UserID: userID,
		Type:   kind,
		Inputs: JSONList(inputs),
	}
}
