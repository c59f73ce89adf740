// calculation_delete.go
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

package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/calcforge/calcdb/internal/models"
)

// DeleteCalculation removes one calculation owned by userID. The row is
// locked first so a concurrent update cannot resurrect it mid-transaction.
func DeleteCalculation(db *gorm.DB, userID, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var calc models.Calculation
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).
			First(&calc).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		return tx.Delete(&calc).Error
	})
}
