package server

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutTemplate = "base.html"

// Renderer holds the compiled page templates. Pages are rendered on their own
// and then wrapped in the base layout as "content".
type Renderer struct {
	pages map[string]*exec.Template
}

// NewRenderer compiles every embedded template.
func NewRenderer() (*Renderer, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*exec.Template, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		src, err := templateFS.ReadFile(path.Join("templates", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", entry.Name(), err)
		}
		tpl, err := gonja.FromString(string(src))
		if err != nil {
			return nil, fmt.Errorf("compile template %s: %w", entry.Name(), err)
		}
		r.pages[entry.Name()] = tpl
	}
	if _, ok := r.pages[layoutTemplate]; !ok {
		return nil, fmt.Errorf("missing layout template %s", layoutTemplate)
	}
	return r, nil
}

// Render executes page with data and wraps the result in the layout.
func (r *Renderer) Render(page string, data fiber.Map) (string, error) {
	tpl, ok := r.pages[page]
	if !ok {
		return "", fmt.Errorf("unknown template %s", page)
	}

	content, err := tpl.ExecuteToString(exec.NewContext(data))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", page, err)
	}

	layoutData := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		layoutData[k] = v
	}
	layoutData["content"] = content

	out, err := r.pages[layoutTemplate].ExecuteToString(exec.NewContext(layoutData))
	if err != nil {
		return "", fmt.Errorf("render layout: %w", err)
	}
	return out, nil
}

// render writes page with the given status, adding the current user and the
// pending flashes to data.
func (s *Server) render(c *fiber.Ctx, status int, page string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if user := currentUser(c); user != nil {
		data["current_user"] = userView(user)
	}
	data["flashes"] = s.popFlashes(c)

	html, err := s.views.Render(page, data)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).SendString(html)
}

func (s *Server) renderNotFound(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusNotFound, "404.html", nil)
}

// Templates only see plain maps so field names stay stable and lowercase.

func userView(u *models.User) map[string]interface{} {
	if u == nil {
		return nil
	}
	return map[string]interface{}{
		"id":               int(u.ID),
		"username":         u.Username,
		"email":            u.Email,
		"image_url":        u.ImageURL,
		"header_image_url": u.HeaderImageURL,
		"bio":              u.Bio,
		"location":         u.Location,
	}
}

func usersView(users []models.User) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		out = append(out, userView(&users[i]))
	}
	return out
}

func messageView(m *models.Message, viewerID uint, liked map[uint]bool) map[string]interface{} {
	view := map[string]interface{}{
		"id":        int(m.ID),
		"text":      m.Text,
		"timestamp": m.Timestamp.Format("02 January 2006"),
		"own":       viewerID != 0 && m.UserID == viewerID,
		"liked":     liked[m.ID],
		"can_like":  viewerID != 0 && m.UserID != viewerID,
	}
	if m.User != nil {
		view["user"] = userView(m.User)
	}
	return view
}

func messagesView(msgs []models.Message, viewerID uint, liked map[uint]bool) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(msgs))
	for i := range msgs {
		out = append(out, messageView(&msgs[i], viewerID, liked))
	}
	return out
}

func statsView(st *models.UserStats) map[string]interface{} {
	if st == nil {
		st = &models.UserStats{}
	}
	return map[string]interface{}{
		"messages":  int(st.Messages),
		"following": int(st.Following),
		"followers": int(st.Followers),
		"likes":     int(st.Likes),
	}
}
