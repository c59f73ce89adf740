package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/calcforge/calcdb/internal/schemas"
	"github.com/calcforge/calcdb/internal/services"
	"github.com/calcforge/calcdb/internal/utils"
)

// UserHandler handles account routes
type UserHandler struct {
	DB *gorm.DB
}

// GetMe handles GET /api/users/me
// @Summary Get the authenticated account
// @Description Get the account behind the presented token
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} schemas.UserResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "users.authorization.user")
	}

	user, err := services.GetUser(h.DB, userID)
	if err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("User '%s' not found", userID))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getUser")
	}

	return c.Status(fiber.StatusOK).JSON(schemas.NewUserResponse(user))
}

// DeleteMe handles DELETE /api/users/me
// @Summary Delete the authenticated account
// @Description Delete the account behind the presented token together with every calculation it owns
// @Tags Users
// @Accept json
// @Produce json
// @Success 204 "Deleted"
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "users.authorization.user")
	}

	if err := services.DeleteUser(h.DB, userID); err != nil {
		if err.Error() == "not found" {
			return utils.NotFoundResponse(c, fmt.Sprintf("User '%s' not found", userID))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteUser")
	}

	return utils.NoContentResponse(c)
}
