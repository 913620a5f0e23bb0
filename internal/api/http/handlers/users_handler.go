package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/ticketing-service/internal/api/dto"
	"github.com/supportdesk/ticketing-service/internal/domain"
	"github.com/supportdesk/ticketing-service/internal/service"
	apperrors "github.com/supportdesk/ticketing-service/pkg/util"
)

// UsersHandler exposes user account endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// CreateUser handles POST /users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.CreateUser(c.UserContext(), service.UserCreateInput{
		Email: req.Email,
		Name:  req.Name,
		Role:  domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}
