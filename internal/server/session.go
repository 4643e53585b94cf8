package server

import (
	"strings"
	"time"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	sessionCookieName = "warbler_session"
	// currUserKey holds the logged-in user's ID in the session.
	currUserKey = "curr_user"
	flashesKey  = "_flashes"

	localsSession = "session"
	localsUser    = "user"
	localsUserID  = "userID"

	flashSuccess = "success"
	flashDanger  = "danger"

	msgAccessUnauthorized = "Access unauthorized."
)

func newSessionStore(ttl time.Duration, secure bool) *session.Store {
	return session.New(session.Config{
		Expiration:     ttl,
		KeyLookup:      "cookie:" + sessionCookieName,
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: "Lax",
		CookiePath:     "/",
	})
}

// requestSession is the session of the current request. A fiber session must
// not be touched after Save, so it is loaded once and saved once.
type requestSession struct {
	sess  *session.Session
	dirty bool
}

func (rs *requestSession) set(key string, v interface{}) {
	rs.sess.Set(key, v)
	rs.dirty = true
}

func (rs *requestSession) delete(key string) {
	rs.sess.Delete(key)
	rs.dirty = true
}

func getSession(c *fiber.Ctx) *requestSession {
	rs, _ := c.Locals(localsSession).(*requestSession)
	return rs
}

// SessionMiddleware loads the session and its user, runs the handler chain and
// saves the session if a handler changed it. Errors are rendered here so the
// error pages still see the session.
func (s *Server) SessionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := s.sessions.Get(c)
		if err != nil {
			return err
		}
		rs := &requestSession{sess: sess}
		c.Locals(localsSession, rs)

		if err := s.loadCurrentUser(c, rs); err != nil {
			return err
		}

		if err := c.Next(); err != nil {
			if herr := s.handleError(c, err); herr != nil {
				return herr
			}
		}

		if !rs.dirty {
			return nil
		}
		return rs.sess.Save()
	}
}

// loadCurrentUser resolves the session's user into locals. A session pointing
// at a deleted user is cleared.
func (s *Server) loadCurrentUser(c *fiber.Ctx, rs *requestSession) error {
	userID, ok := rs.sess.Get(currUserKey).(uint)
	if !ok || userID == 0 {
		return nil
	}

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		if !models.IsNotFound(err) {
			return err
		}
		rs.delete(currUserKey)
		return nil
	}

	c.Locals(localsUser, user)
	c.Locals(localsUserID, user.ID)
	return nil
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUser).(*models.User)
	return user
}

// doLogin stores user in a regenerated session.
func (s *Server) doLogin(c *fiber.Ctx, user *models.User) error {
	rs := getSession(c)
	if rs == nil {
		return fiber.ErrInternalServerError
	}
	if err := rs.sess.Regenerate(); err != nil {
		return err
	}
	rs.set(currUserKey, user.ID)
	c.Locals(localsUser, user)
	c.Locals(localsUserID, user.ID)
	return nil
}

// doLogout forgets the logged-in user but keeps the session for flashes.
func (s *Server) doLogout(c *fiber.Ctx) {
	if rs := getSession(c); rs != nil {
		rs.delete(currUserKey)
	}
	c.Locals(localsUser, nil)
	c.Locals(localsUserID, nil)
}

// flash queues a message for the next rendered page.
func (s *Server) flash(c *fiber.Ctx, category, message string) {
	rs := getSession(c)
	if rs == nil {
		return
	}
	flashes, _ := rs.sess.Get(flashesKey).([]string)
	rs.set(flashesKey, append(flashes, category+":"+message))
}

// popFlashes returns and clears the queued flashes.
func (s *Server) popFlashes(c *fiber.Ctx) []map[string]interface{} {
	rs := getSession(c)
	if rs == nil {
		return nil
	}
	raw, _ := rs.sess.Get(flashesKey).([]string)
	if len(raw) == 0 {
		return nil
	}
	rs.delete(flashesKey)

	out := make([]map[string]interface{}, 0, len(raw))
	for _, f := range raw {
		category, message, found := strings.Cut(f, ":")
		if !found {
			category, message = "info", f
		}
		out = append(out, map[string]interface{}{"category": category, "message": message})
	}
	return out
}

// flashRedirect queues a flash and redirects to location.
func (s *Server) flashRedirect(c *fiber.Ctx, category, message, location string) error {
	s.flash(c, category, message)
	return c.Redirect(location)
}

// denyAccess is the answer to every unauthorized HTML request.
func (s *Server) denyAccess(c *fiber.Ctx) error {
	return s.flashRedirect(c, flashDanger, msgAccessUnauthorized, "/")
}
