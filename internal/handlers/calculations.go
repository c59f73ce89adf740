// calculations.go
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

package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/calcforge/calcdb/internal/calculations"
	"github.com/calcforge/calcdb/internal/schemas"
	"github.com/calcforge/calcdb/internal/services"
	"github.com/calcforge/calcdb/internal/utils"
)

// CalculationHandler handles calculation routes
type CalculationHandler struct {
	DB *gorm.DB
}

// CreateCalculation handles POST /api/calculations
// @Summary Create a calculation
// @Description Validate the request, construct the matching calculation variant, compute its result and store it for the authenticated user
// @Tags Calculations
// @Accept json
// @Produce json
// @Param body body schemas.CalculationCreate true "Calculation to create"
// @Success 201 {object} schemas.CalculationResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /calculations [post]
func (h *CalculationHandler) CreateCalculation(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "calculations.authorization.user")
	}

	var body schemas.CalculationCreate
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "calculations.validation.input")
	}

	if err := body.Validate(); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return utils.ValidationErrorResponse(c, verr)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "calculations.validation.input")
	}

	calc, err := services.CreateCalculation(h.DB, body.Type, userID, body.InputValues())
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("User '%s' not found", userID))
		}
		if isCalculationInputError(err) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "calculations.validation.input")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createCalculation")
	}

	return utils.SuccessResponse(c, schemas.NewCalculationResponse(calc), fiber.StatusCreated)
}

// ListCalculations handles GET /api/calculations?type=...
// @Summary List calculations
// @Description List the authenticated user's calculations in creation order, optionally filtered to one calculation type
// @Tags Calculations
// @Accept json
// @Produce json
// @Param type query string false "Calculation type filter (addition, subtraction, multiplication, division)"
// @Success 200 {array} schemas.CalculationResponse
// @Success 204 "No calculations"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /calculations [get]
func (h *CalculationHandler) ListCalculations(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "calculations.authorization.user")
	}

	kind, err := parseTypeFilter(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "calculations.validation.input")
	}

	calcs, err := services.ListCalculations(h.DB, userID, kind)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listCalculations")
	}

	if len(calcs) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.Status(fiber.StatusOK).JSON(schemas.NewCalculationResponses(calcs))
}

// GetCalculationStats handles GET /api/calculations/stats
// @Summary Calculation counts by type
// @Description Count the authenticated user's calculations grouped by calculation type
// @Tags Calculations
// @Accept json
// @Produce json
// @Success 200 {array} services.TypeCount
// @Success 204 "No calculations"
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /calculations/stats [get]
func (h *CalculationHandler) GetCalculationStats(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "calculations.authorization.user")
	}

	counts, err := services.CountCalculationsByType(h.DB, userID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getCalculationStats")
	}

	if len(counts) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.Status(fiber.StatusOK).JSON(counts)
}

// GetCalculation handles GET /api/calculations/:id
// @Summary Get a calculation
// @Description Get one of the authenticated user's calculations by id
// @Tags Calculations
// @Accept json
// @Produce json
// @Param id path string true "Calculation ID"
// @Success 200 {object} schemas.CalculationResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /calculations/{id} [get]
func (h *CalculationHandler) GetCalculation(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "calculations.authorization.user")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "calculations.validation.input")
	}

	calc, err := services.GetCalculation(h.DB, userID, id)
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("Calculation '%s' not found", id))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getCalculation")
	}

	return c.Status(fiber.StatusOK).JSON(schemas.NewCalculationResponse(calc))
}

// UpdateCalculation handles PUT /api/calculations/:id
// @Summary Replace a calculation's inputs
// @Description Replace the inputs of one of the authenticated user's calculations; the stored type never changes and the result is recomputed with the new inputs
// @Tags Calculations
// @Accept json
// @Produce json
// @Param id path string true "Calculation ID"
// @Param body body schemas.CalculationUpdate true "Replacement inputs"
// @Success 200 {object} schemas.CalculationResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /calculations/{id} [put]
func (h *CalculationHandler) UpdateCalculation(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "calculations.authorization.user")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "calculations.validation.input")
	}

	var body schemas.CalculationUpdate
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "calculations.validation.input")
	}

	// The variant is needed to apply the division rules, so the row is read
	// before validation; the update itself re-reads under a row lock.
	calc, err := services.GetCalculation(h.DB, userID, id)
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("Calculation '%s' not found", id))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "updateCalculation")
	}

	if err := body.Validate(calc.Type); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return utils.ValidationErrorResponse(c, verr)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "calculations.validation.input")
	}

	updated, err := services.UpdateCalculationInputs(h.DB, userID, id, body.InputValues())
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("Calculation '%s' not found", id))
		}
		if isCalculationInputError(err) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "calculations.validation.input")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "updateCalculation")
	}

	return c.Status(fiber.StatusOK).JSON(schemas.NewCalculationResponse(updated))
}

// DeleteCalculation handles DELETE /api/calculations/:id
// @Summary Delete a calculation
// @Description Delete one of the authenticated user's calculations
// @Tags Calculations
// @Accept json
// @Produce json
// @Param id path string true "Calculation ID"
// @Success 204 "Deleted"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /calculations/{id} [delete]
func (h *CalculationHandler) DeleteCalculation(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "calculations.authorization.user")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "calculations.validation.input")
	}

	if err := services.DeleteCalculation(h.DB, userID, id); err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("Calculation '%s' not found", id))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteCalculation")
	}

	return utils.NoContentResponse(c)
}

// isCalculationInputError reports whether err is one of the deterministic
// input errors that map to a 400 rather than a 500.
func isCalculationInputError(err error) bool {
	return errors.Is(err, calculations.ErrInvalidInput) ||
		errors.Is(err, calculations.ErrDivisionByZero) ||
		errors.Is(err, calculations.ErrUnknownType)
}
