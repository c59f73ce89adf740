// data.go
//
// A calculator data service: per-user polymorphic calculations over SQL
// Copyright (c) 2026 CalcForge <dev@calcforge.io> (https://www.calcforge.io)
//
// This file is part of calcdb.
// calcdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// calcdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with calcdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 CalcForge <dev@calcforge.io> (https://www.calcforge.io)"
//    in this material, copies, or source code of derived works.

package helpers

import (
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/calcforge/calcdb/internal/models"
)

// CreateTestUser creates a user row directly, bypassing the register
// endpoint. The password hash is produced at the cheapest bcrypt cost so
// seeding many users stays fast.
func CreateTestUser(t *testing.T, db *gorm.DB, username, email, password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return &user
}

// CreateTestCalculation creates a calculation row through the factory so the
// stored type is the canonical form, then persists it with its result cache
// filled in.
func CreateTestCalculation(t *testing.T, db *gorm.DB, userID uuid.UUID, calcType string, inputs []float64) *models.Calculation {
	calc, err := models.NewCalculation(calcType, userID, inputs)
	if err != nil {
		t.Fatalf("Failed to construct calculation: %v", err)
	}

	if result, err := calc.GetResult(); err == nil {
		calc.Result = &result
	}

	if err := db.Create(calc).Error; err != nil {
		t.Fatalf("Failed to create calculation: %v", err)
	}
	return calc
}
