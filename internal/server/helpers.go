package server

import (
	"errors"
	"fmt"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a positive numeric route parameter. Malformed IDs are
// reported as not found so HTML and API routes answer with 404.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

func userPath(id uint) string {
	return fmt.Sprintf("/users/%d", id)
}

// loggedInID returns the session user's ID, or 0 when anonymous.
func loggedInID(c *fiber.Ctx) uint {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

const (
	msgUsernameTaken        = "Username already taken"
	msgUsernameOrEmailTaken = "Username or email already taken"
)

// flashForError turns a service error into a user-facing flash message. It
// returns false for errors that should propagate as server errors. taken is
// the message shown for uniqueness violations; when empty they propagate too.
func flashForError(err error, taken string) (string, bool) {
	switch {
	case models.IsValidationError(err), models.IsUnauthorized(err):
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr.Message, true
		}
	case models.IsIntegrityError(err) && taken != "":
		return taken, true
	}
	return "", false
}
