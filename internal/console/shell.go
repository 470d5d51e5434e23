// ABOUTME: Admin shell: navigation rail, persisted active section, flash messages and sign-out
// ABOUTME: The active section is stored on the session row so it survives reloads and sign-outs

package console

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/2389/lot-admin/internal/session"
)

// Sections of the admin shell.
const (
	SectionDashboard = "dashboard"
	SectionUsers     = "users"
	SectionProducts  = "products"
	SectionEstimates = "estimates"
	SectionBlog      = "blog"
)

const flashCookieName = "lot_admin_flash"

var sections = []struct {
	name  string
	label string
}{
	{SectionDashboard, "Dashboard"},
	{SectionUsers, "Users"},
	{SectionProducts, "Products"},
	{SectionEstimates, "Estimates"},
	{SectionBlog, "Blog"},
}

func validSection(name string) bool {
	for _, s := range sections {
		if s.name == name {
			return true
		}
	}
	return false
}

func sectionPath(name string) string {
	if !validSection(name) {
		name = SectionDashboard
	}
	return "/" + name
}

// handleHome sends the operator to the last active section.
func (c *Console) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, sectionPath(getSession(r).ActiveSection), http.StatusSeeOther)
}

// enter records section as the active one and builds the shared page data.
func (c *Console) enter(w http.ResponseWriter, r *http.Request, section, title string) pageData {
	sess := getSession(r)
	if sess.ActiveSection != section {
		if err := c.handle(r).SetSection(r.Context(), section); err != nil {
			c.logger.Warn("failed to persist active section", "section", section, "error", err)
		}
		sess.ActiveSection = section
	}
	return c.page(w, r, section, title)
}

func (c *Console) page(w http.ResponseWriter, r *http.Request, section, title string) pageData {
	sess := getSession(r)
	p := pageData{
		Title:     title,
		Section:   section,
		Operator:  sess.Operator,
		CSRFToken: getCSRFToken(r),
	}
	for _, s := range sections {
		p.Sections = append(p.Sections, sectionLink{
			Name:   s.name,
			Label:  s.label,
			Path:   sectionPath(s.name),
			Active: s.name == section,
		})
	}
	p.Notice, p.Error = c.takeFlash(w, r)

	pending, err := c.handle(r).Pending(r.Context())
	if err != nil {
		c.logger.Warn("failed to load pending action", "error", err)
	} else if pending != nil {
		d := dialogFor(*pending)
		p.Dialog = &d
	}
	return p
}

// setFlash stores a one-shot message shown on the next page render.
func (c *Console) setFlash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(kind + ":" + msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Console) takeFlash(w http.ResponseWriter, r *http.Request) (notice, errMsg string) {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return "", ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", ""
	}
	kind, msg, _ := strings.Cut(raw, ":")
	if kind == "error" {
		return "", msg
	}
	return msg, ""
}

// handleLogout asks for confirmation before signing out.
func (c *Console) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !c.checkForm(w, r, 0) {
		return
	}
	c.propose(w, r, session.Logout())
}

// signOut calls the backend logout best effort, then always clears the local credential.
func (c *Console) signOut(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r)
	ctx, cancel := c.detached(r)
	defer cancel()

	if err := c.api(r).Logout(ctx); err != nil {
		c.logger.Warn("backend logout failed; clearing session anyway", "error", err)
	}
	if err := c.handle(r).Clear(ctx); err != nil {
		c.logger.Error("failed to clear session", "error", err)
	}
	c.dropCaches(sess.ID)

	c.logger.Info("operator signed out", "username", sess.Operator, "session_id", shortID(sess.ID))
	c.setFlash(w, r, "notice", "You have been signed out")
	c.redirect(w, r, "/login")
}
