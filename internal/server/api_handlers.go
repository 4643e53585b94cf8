package server

import (
	"errors"

	"warbler/internal/middleware"
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// apiError maps an application error onto its HTTP status.
func apiError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return err
	}

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case models.CodeNotFound:
		status = fiber.StatusNotFound
	case models.CodeValidation:
		status = fiber.StatusBadRequest
	case models.CodeUnauthorized:
		status = fiber.StatusForbidden
	case models.CodeIntegrity:
		status = fiber.StatusConflict
	}
	return models.RespondWithError(c, status, err)
}

func apiUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localsUserID).(uint)
	return id, ok && id != 0
}

// APIToken exchanges a username and password for a bearer token.
func (s *Server) APIToken(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return apiError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	token, err := middleware.IssueToken(user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// APIGetUser returns a user and their counters.
func (s *Server) APIGetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	user, err := s.userService.GetUser(ctx, id)
	if err != nil {
		return apiError(c, err)
	}
	stats, err := s.userService.Stats(ctx, id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":  user,
		"stats": stats,
	})
}

// APIUserMessages returns a user's newest messages.
func (s *Server) APIUserMessages(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	if _, err := s.userService.GetUser(ctx, id); err != nil {
		return apiError(c, err)
	}
	messages, err := s.messageService.ListByUser(ctx, id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(messages)
}

// APIGetMessage returns a single message with its author.
func (s *Server) APIGetMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	msg, err := s.messageService.Get(c.UserContext(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(msg)
}

// APICreateMessage posts a message as the token's user.
func (s *Server) APICreateMessage(c *fiber.Ctx) error {
	userID, ok := apiUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.messageService.Create(c.UserContext(), userID, req.Text)
	if err != nil {
		return apiError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// APIDeleteMessage deletes a message owned by the token's user.
func (s *Server) APIDeleteMessage(c *fiber.Ctx) error {
	userID, ok := apiUserID(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if _, err := s.messageService.Delete(c.UserContext(), userID, id); err != nil {
		return apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
