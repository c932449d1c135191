package handlers

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/facegate/backend/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageHandler renders the HTML pages. Which view a path renders depends on
// the session: /admin shows the login form until an admin session exists,
// and /dashboard falls back to the login view for anonymous visitors.
type PageHandler struct {
	sessions  *middleware.SessionManager
	templates *template.Template
}

func NewPageHandler(sessions *middleware.SessionManager) *PageHandler {
	return &PageHandler{
		sessions:  sessions,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home.html", nil)
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", nil)
}

func (h *PageHandler) Admin(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.FromRequest(r)
	if sess == nil || !sess.IsAdmin {
		h.render(w, "admin_login.html", nil)
		return
	}
	h.render(w, "admin_dashboard.html", map[string]any{"AdminName": sess.UserName})
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.FromRequest(r)
	if sess == nil {
		h.render(w, "login.html", nil)
		return
	}
	h.render(w, "dashboard.html", map[string]any{"UserName": sess.UserName})
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[PAGES] Failed to render %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
