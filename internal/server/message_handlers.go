package server

import (
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// NewMessageForm renders the compose form.
func (s *Server) NewMessageForm(c *fiber.Ctx) error {
	if currentUser(c) == nil {
		return s.denyAccess(c)
	}
	return s.render(c, fiber.StatusOK, "message_new.html", fiber.Map{"form": fiber.Map{}})
}

// CreateMessage posts a message as the current user and redirects to their
// profile.
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}

	text := c.FormValue("text")
	if _, err := s.messageService.Create(c.UserContext(), user.ID, text); err != nil {
		msg, ok := flashForError(err, "")
		if !ok {
			return err
		}
		s.flash(c, flashDanger, msg)
		return s.render(c, fiber.StatusOK, "message_new.html", fiber.Map{
			"form": fiber.Map{"text": text},
		})
	}
	return c.Redirect(userPath(user.ID))
}

// ShowMessage renders a single message.
func (s *Server) ShowMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	msg, err := s.messageService.Get(ctx, id)
	if err != nil {
		return err
	}

	viewerID := loggedInID(c)
	liked := map[uint]bool{}
	if viewerID != 0 {
		if liked, err = s.messageService.LikedIDs(ctx, viewerID); err != nil {
			return err
		}
	}

	return s.render(c, fiber.StatusOK, "message_show.html", fiber.Map{
		"message": messageView(msg, viewerID, liked),
	})
}

// DeleteMessage deletes a message owned by the current user.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if _, err := s.messageService.Delete(c.UserContext(), user.ID, id); err != nil {
		if models.IsUnauthorized(err) {
			return s.denyAccess(c)
		}
		return err
	}
	return c.Redirect(userPath(user.ID))
}
