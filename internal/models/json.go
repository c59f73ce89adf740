package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONList stores an ordered list of numbers as a JSON array column.
// Element order is preserved exactly as written.
type JSONList []float64

// Value marshals the list as a JSON array through datatypes.JSON so every
// dialect receives the same array text.
func (l JSONList) Value() (driver.Value, error) {
	b, err := json.Marshal([]float64(l))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b).Value()
}

// Scan reads the raw column value and decodes the JSON array. Non-array
// column content is rejected rather than coerced.
func (l *JSONList) Scan(value interface{}) error {
	var raw datatypes.JSON
	if err := raw.Scan(value); err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	var vals []float64
	if err := json.Unmarshal(raw, &vals); err != nil {
		return fmt.Errorf("inputs must be a JSON array of numbers: %w", err)
	}
	*l = vals
	return nil
}

// GormDBDataType ensures the correct data type is used for each database driver.
// This resolves the issue where MSSQL does not support the 'json' data type.
func (JSONList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
