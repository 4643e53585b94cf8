package server

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Home shows the landing page to visitors and the timeline to users.
func (s *Server) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user := currentUser(c)
	if user == nil {
		return s.render(c, fiber.StatusOK, "home_anon.html", nil)
	}

	timeline, err := s.messageService.Timeline(ctx, user.ID)
	if err != nil {
		return err
	}
	liked, err := s.messageService.LikedIDs(ctx, user.ID)
	if err != nil {
		return err
	}
	stats, err := s.userService.Stats(ctx, user.ID)
	if err != nil {
		return err
	}

	return s.render(c, fiber.StatusOK, "home.html", fiber.Map{
		"messages": messagesView(timeline, user.ID, liked),
		"stats":    statsView(stats),
	})
}

// ListUsers renders the user directory, filtered by ?q= when given.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	q := c.Query("q")
	users, err := s.userService.Search(c.UserContext(), q)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "users_index.html", fiber.Map{
		"users": s.withFollowState(c, users),
		"q":     q,
	})
}

// ShowUser renders a profile with its messages and counters.
func (s *Server) ShowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	profile, err := s.userService.GetProfile(ctx, id)
	if err != nil {
		return err
	}
	stats, err := s.userService.Stats(ctx, id)
	if err != nil {
		return err
	}

	viewer := currentUser(c)
	viewerID := loggedInID(c)
	liked := map[uint]bool{}
	if viewer != nil {
		if liked, err = s.messageService.LikedIDs(ctx, viewerID); err != nil {
			return err
		}
	}

	for i := range profile.Messages {
		profile.Messages[i].User = profile
	}

	return s.render(c, fiber.StatusOK, "user_show.html", fiber.Map{
		"user":         userView(profile),
		"messages":     messagesView(profile.Messages, viewerID, liked),
		"stats":        statsView(stats),
		"is_own":       viewerID == profile.ID,
		"is_following": profile.IsFollowedBy(viewer),
	})
}

// ShowFollowing lists the users someone follows. Logged-in users only.
func (s *Server) ShowFollowing(c *fiber.Ctx) error {
	return s.showFollowList(c, "following.html", s.userService.Following)
}

// ShowFollowers lists someone's followers. Logged-in users only.
func (s *Server) ShowFollowers(c *fiber.Ctx) error {
	return s.showFollowList(c, "followers.html", s.userService.Followers)
}

func (s *Server) showFollowList(c *fiber.Ctx, page string, list func(context.Context, uint) ([]models.User, error)) error {
	viewer := currentUser(c)
	if viewer == nil {
		return s.denyAccess(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	user, err := s.userService.GetUser(ctx, id)
	if err != nil {
		return err
	}
	users, err := list(ctx, id)
	if err != nil {
		return err
	}
	stats, err := s.userService.Stats(ctx, id)
	if err != nil {
		return err
	}

	return s.render(c, fiber.StatusOK, page, fiber.Map{
		"user":   userView(user),
		"users":  s.withFollowState(c, users),
		"stats":  statsView(stats),
		"is_own": viewer.ID == user.ID,
	})
}

// ShowLikes lists the messages someone liked. Logged-in users only.
func (s *Server) ShowLikes(c *fiber.Ctx) error {
	viewer := currentUser(c)
	if viewer == nil {
		return s.denyAccess(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	user, err := s.userService.GetUser(ctx, id)
	if err != nil {
		return err
	}
	messages, err := s.messageService.LikedMessages(ctx, id)
	if err != nil {
		return err
	}
	liked, err := s.messageService.LikedIDs(ctx, viewer.ID)
	if err != nil {
		return err
	}
	stats, err := s.userService.Stats(ctx, id)
	if err != nil {
		return err
	}

	return s.render(c, fiber.StatusOK, "likes.html", fiber.Map{
		"user":     userView(user),
		"messages": messagesView(messages, viewer.ID, liked),
		"stats":    statsView(stats),
		"is_own":   viewer.ID == user.ID,
	})
}

// withFollowState adds whether the current user follows each listed user.
func (s *Server) withFollowState(c *fiber.Ctx, users []models.User) []map[string]interface{} {
	views := usersView(users)
	viewerID := loggedInID(c)
	if viewerID == 0 {
		return views
	}

	following, err := s.userService.Following(c.UserContext(), viewerID)
	if err != nil {
		return views
	}
	followed := make(map[int]bool, len(following))
	for _, u := range following {
		followed[int(u.ID)] = true
	}
	for _, v := range views {
		id, _ := v["id"].(int)
		v["is_following"] = followed[id]
		v["is_self"] = uint(id) == viewerID
	}
	return views
}

// Follow makes the current user follow :id.
func (s *Server) Follow(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := s.userService.Follow(c.UserContext(), user.ID, id); err != nil {
		msg, ok := flashForError(err, "")
		if !ok {
			return err
		}
		s.flash(c, flashDanger, msg)
	}
	return c.Redirect(userPath(user.ID) + "/following")
}

// StopFollowing removes the current user's follow of :id.
func (s *Server) StopFollowing(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := s.userService.Unfollow(c.UserContext(), user.ID, id); err != nil {
		return err
	}
	return c.Redirect(userPath(user.ID) + "/following")
}

// ToggleLike likes or unlikes message :id for the current user.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if _, err := s.messageService.ToggleLike(c.UserContext(), user.ID, id); err != nil {
		if models.IsUnauthorized(err) {
			return s.denyAccess(c)
		}
		return err
	}
	return c.Redirect("/")
}

// EditProfileForm renders the profile form of the current user.
func (s *Server) EditProfileForm(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}
	return s.render(c, fiber.StatusOK, "user_edit.html", fiber.Map{
		"form": userView(user),
	})
}

// EditProfile updates the current user once the password checks out.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}

	in := service.UpdateProfileInput{
		UserID:         user.ID,
		Username:       c.FormValue("username"),
		Email:          c.FormValue("email"),
		ImageURL:       c.FormValue("image_url"),
		HeaderImageURL: c.FormValue("header_image_url"),
		Bio:            c.FormValue("bio"),
		Location:       c.FormValue("location"),
		Password:       c.FormValue("password"),
	}

	updated, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		if models.IsUnauthorized(err) {
			msg, _ := flashForError(err, msgUsernameOrEmailTaken)
			return s.flashRedirect(c, flashDanger, msg, "/")
		}
		msg, ok := flashForError(err, msgUsernameOrEmailTaken)
		if !ok {
			return err
		}
		s.flash(c, flashDanger, msg)
		return s.render(c, fiber.StatusOK, "user_edit.html", fiber.Map{
			"form": fiber.Map{
				"username":         in.Username,
				"email":            in.Email,
				"image_url":        in.ImageURL,
				"header_image_url": in.HeaderImageURL,
				"bio":              in.Bio,
				"location":         in.Location,
			},
		})
	}

	c.Locals(localsUser, updated)
	return c.Redirect(userPath(updated.ID))
}

// DeleteCurrentUser removes the account and logs out.
func (s *Server) DeleteCurrentUser(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return s.denyAccess(c)
	}

	if err := s.userService.DeleteUser(c.UserContext(), user.ID); err != nil {
		return err
	}
	s.doLogout(c)
	return c.Redirect("/signup")
}
