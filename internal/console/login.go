// ABOUTME: Sign-in handlers: local validation, one in-flight attempt per session, credential storage
// ABOUTME: A rejected sign-in stays on the login page and never touches the stored credential

package console

import (
	"context"
	"net/http"
	"strings"

	"github.com/2389/lot-admin/internal/backend"
	"github.com/2389/lot-admin/internal/model"
)

const loginFailedMessage = "Login failed. Please check your connection and try again."

// staticToken authenticates a single lookup with a token that is not stored yet.
type staticToken string

func (t staticToken) Token(context.Context) (string, error) { return string(t), nil }
func (staticToken) Clear(context.Context) error { return nil }

// handleLoginPage renders the login page
func (c *Console) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if getSession(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	notice, errMsg := c.takeFlash(w, r)
	c.renderLoginPage(w, http.StatusOK, loginData{Notice: notice, Error: errMsg, CSRFToken: getCSRFToken(r)})
}

// handleLogin processes login form submission
func (c *Console) handleLogin(w http.ResponseWriter, r *http.Request) {
	csrfToken := getCSRFToken(r)
	if err := r.ParseForm(); err != nil {
		c.renderLoginPage(w, http.StatusBadRequest, loginData{Error: "Invalid form data", CSRFToken: csrfToken})
		return
	}
	if !c.validateCSRF(r) {
		c.renderLoginPage(w, http.StatusForbidden, loginData{Error: "Invalid request, please try again", CSRFToken: csrfToken})
		return
	}

	creds := model.Credentials{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	if fe := model.ValidateLogin(creds, c.config.MinPasswordLength); fe != nil {
		c.renderLoginPage(w, http.StatusUnprocessableEntity, loginData{Username: creds.Username, Error: fe.Message, CSRFToken: csrfToken})
		return
	}

	sess := getSession(r)
	if _, busy := c.logins.LoadOrStore(sess.ID, struct{}{}); busy {
		c.renderLoginPage(w, http.StatusConflict, loginData{Username: creds.Username, Error: "A sign-in is already in progress", CSRFToken: csrfToken})
		return
	}
	defer c.logins.Delete(sess.ID)

	result, err := c.backend.Login(r.Context(), creds)
	if err != nil {
		c.logger.Info("sign-in rejected", "username", creds.Username, "error", err)
		c.renderLoginPage(w, http.StatusUnauthorized, loginData{Username: creds.Username, Error: backend.UserMessage(err, loginFailedMessage), CSRFToken: csrfToken})
		return
	}

	operator := result.Operator.Username
	if operator == "" {
		if me, err := c.backend.For(staticToken(result.Token)).Me(r.Context()); err == nil && me.Username != "" {
			operator = me.Username
		} else {
			c.logger.Debug("current operator lookup failed", "error", err)
			operator = creds.Username
		}
	}

	if err := c.handle(r).SetCredential(r.Context(), result.Token, operator); err != nil {
		c.logger.Error("failed to store credential", "error", err)
		c.renderLoginPage(w, http.StatusInternalServerError, loginData{Username: creds.Username, Error: "An error occurred", CSRFToken: csrfToken})
		return
	}
	c.dropCaches(sess.ID)

	c.logger.Info("operator signed in", "username", operator, "session_id", shortID(sess.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
