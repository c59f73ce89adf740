package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/calcforge/calcdb/internal/config"
	"github.com/calcforge/calcdb/internal/schemas"
	"github.com/calcforge/calcdb/internal/services"
	"github.com/calcforge/calcdb/internal/utils"
)

// AuthHandler handles account registration and login routes
type AuthHandler struct {
	DB     *gorm.DB
	Config *config.Config
}

// Register handles POST /api/auth/register
// @Summary Register an account
// @Description Create a new user account with a bcrypt-hashed password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body schemas.UserRegister true "Account to create"
// @Success 201 {object} schemas.UserResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body schemas.UserRegister
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "auth.validation.input")
	}

	if err := body.Validate(); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return utils.ValidationErrorResponse(c, verr)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "auth.validation.input")
	}

	user, err := services.RegisterUser(h.DB, body.Username, body.Email, body.Password)
	if err != nil {
		if err.Error() == "already exists" {
			return utils.ErrorResponse(c, "Username or email already registered", fiber.StatusConflict, "auth.conflict")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "registerUser")
	}

	return utils.SuccessResponse(c, schemas.NewUserResponse(user), fiber.StatusCreated)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Verify credentials and issue a signed session token; the token is also set as the jwt_token cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body schemas.UserLogin true "Credentials"
// @Success 200 {object} schemas.TokenResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body schemas.UserLogin
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "auth.validation.input")
	}

	if err := body.Validate(); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return utils.ValidationErrorResponse(c, verr)
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "auth.validation.input")
	}

	user, err := services.AuthenticateUser(h.DB, body.Username, body.Password)
	if err != nil {
		if err.Error() == "invalid credentials" {
			return utils.ErrorResponse(c, "Invalid credentials", fiber.StatusUnauthorized, "auth.credentials")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "loginUser")
	}

	ttl := time.Duration(h.Config.JWTExpiryHours) * time.Hour
	token, err := services.IssueToken(user, h.Config.JWTSecret, ttl)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "loginUser")
	}

	// Browser clients authenticate with the cookie, API clients with the
	// Authorization header; both carry the same token.
	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: "Strict",
	})

	return c.Status(fiber.StatusOK).JSON(schemas.TokenResponse{
		Token: token,
		User:  schemas.NewUserResponse(user),
	})
}
