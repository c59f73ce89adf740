package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"

	"github.com/calcforge/calcdb/internal/calculations"
	"github.com/calcforge/calcdb/internal/models"
)

// TypeCount is one row of the per-variant count summary.
type TypeCount struct {
	Type  calculations.Kind `json:"type"`
	Count int64             `json:"count"`
}

// CreateCalculation builds the variant via the factory, computes the result
// cache, and persists the row. The owning user must exist; the check runs in
// the same transaction as the insert, backed by the foreign key.
func CreateCalculation(db *gorm.DB, rawType string, userID uuid.UUID, inputs []float64) (*models.Calculation, error) {
	calc, err := models.NewCalculation(rawType, userID, inputs)
	if err != nil {
		return nil, err
	}

	result, err := calc.GetResult()
	if err != nil {
		return nil, err
	}
	calc.Result = &result

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("not found")
		}
		return tx.Create(calc).Error
	})
	if err != nil {
		return nil, err
	}

	return calc, nil
}

// GetCalculation retrieves one calculation owned by userID.
func GetCalculation(db *gorm.DB, userID, id uuid.UUID) (*models.Calculation, error) {
	var calc models.Calculation
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&calc).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("not found")
		}
		return nil, err
	}

	return &calc, nil
}

// ListCalculations returns the calculations owned by userID in creation
// order, optionally filtered to a single variant via the type column.
func ListCalculations(db *gorm.DB, userID uuid.UUID, kind calculations.Kind) ([]models.Calculation, error) {
	query := userScope(db, userID)
	if kind != "" {
		query = query.Where("type = ?", kind)
	}

	var calcs []models.Calculation
	if err := query.Order("created_at ASC").Find(&calcs).Error; err != nil {
		return nil, err
	}

	return calcs, nil
}

// CountCalculationsByType returns per-variant counts for userID, ordered by
// type for stable output.
func CountCalculationsByType(db *gorm.DB, userID uuid.UUID) ([]TypeCount, error) {
	var counts []TypeCount
	err := userScope(db.Model(&models.Calculation{}), userID).
		Select("type, COUNT(*) AS count").
		Group("type").
		Order("type ASC").
		Find(&counts).Error
	if err != nil {
		return nil, err
	}

	return counts, nil
}

// UpdateCalculationInputs replaces the inputs of an owned calculation and
// recomputes the result cache inside the same transaction, so a stored result
// can never drift from the stored inputs.
func UpdateCalculationInputs(db *gorm.DB, userID, id uuid.UUID, inputs []float64) (*models.Calculation, error) {
	var calc models.Calculation

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).
			First(&calc).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		calc.Inputs = models.JSONList(inputs)
		result, err := calc.GetResult()
		if err != nil {
			return err
		}
		calc.Result = &result

		return tx.Model(&calc).Updates(map[string]interface{}{
			"inputs": calc.Inputs,
			"result": calc.Result,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &calc, nil
}

// userScope narrows a query to one owner. USE INDEX is MySQL-only syntax, so
// the hint applies on that dialect alone; the other planners do fine without
// it.
func userScope(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	query := db
	if db.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_calculations_user_id"))
	}
	return query.Where("user_id = ?", userID)
}
