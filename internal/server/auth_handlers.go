package server

import (
	"warbler/internal/observability"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupForm renders the signup page. Logged-in users go home.
func (s *Server) SignupForm(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/")
	}
	return s.render(c, fiber.StatusOK, "signup.html", fiber.Map{"form": fiber.Map{}})
}

// Signup creates the account and logs it in.
func (s *Server) Signup(c *fiber.Ctx) error {
	in := service.SignupInput{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		ImageURL: c.FormValue("image_url"),
	}

	user, err := s.userService.Signup(c.UserContext(), in)
	if err != nil {
		msg, ok := flashForError(err, msgUsernameTaken)
		if !ok {
			return err
		}
		s.flash(c, flashDanger, msg)
		return s.render(c, fiber.StatusOK, "signup.html", fiber.Map{
			"form": fiber.Map{"username": in.Username, "email": in.Email, "image_url": in.ImageURL},
		})
	}

	if err := s.doLogin(c, user); err != nil {
		return err
	}
	return c.Redirect("/")
}

// LoginForm renders the login page.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/")
	}
	return s.render(c, fiber.StatusOK, "login.html", fiber.Map{"form": fiber.Map{}})
}

// Login checks the credentials and starts a session.
func (s *Server) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	user, err := s.userService.Authenticate(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		return err
	}
	if user == nil {
		s.flash(c, flashDanger, "Invalid credentials.")
		return s.render(c, fiber.StatusOK, "login.html", fiber.Map{
			"form": fiber.Map{"username": username},
		})
	}

	if err := s.doLogin(c, user); err != nil {
		return err
	}
	return s.flashRedirect(c, flashSuccess, "Hello, "+user.Username+"!", "/")
}

// Logout ends the session.
func (s *Server) Logout(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		observability.RecordAuth("logout", "success")
	}
	s.doLogout(c)
	return s.flashRedirect(c, flashSuccess, "You have successfully logged out.", "/login")
}
