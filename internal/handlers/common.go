// common.go
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
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calcforge/calcdb/internal/calculations"
	"github.com/calcforge/calcdb/internal/config"
	"github.com/calcforge/calcdb/internal/services"
)

// CommonHandler serves the endpoints that are not tied to a resource.
type CommonHandler struct {
	DB     *gorm.DB
	Config *config.Config
}

// Root
// @Summary Service banner
// @Description Identifies the service and points at the interesting endpoints
// @Tags common
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *CommonHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":   "calcdb",
		"message":   "calcdb calculation service",
		"ok":        true,
		"docs":      "/swagger/index.html",
		"health":    "/api/health",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GetHealth
// @Summary Service health
// @Description Reports database connectivity and connection pool statistics
// @Tags common
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *CommonHandler) GetHealth(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Config, h.DB)
	if result.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(result)
	}
	return c.JSON(result)
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("no authenticated user")
	}
	return userID, nil
}

// parseTypeFilter reads the optional ?type= query as a calculation kind.
// An absent parameter is not an error, an unknown kind is. The empty kind
// means no filter.
func parseTypeFilter(c *fiber.Ctx) (calculations.Kind, error) {
	raw := c.Query("type", "")
	if raw == "" {
		return "", nil
	}
	return calculations.ParseKind(raw)
}

// parseIDParam reads the :id route parameter as a UUID.
func parseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Params("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid calculation id %q", raw)
	}
	return id, nil
}
