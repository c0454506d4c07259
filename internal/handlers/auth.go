package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/constants"
	"github.com/yukikurage/issue-tracker/internal/dto"
	"github.com/yukikurage/issue-tracker/internal/services"
	"github.com/yukikurage/issue-tracker/internal/session"
)

// AuthHandler coordinates login and logout.
type AuthHandler struct {
	authService *services.AuthService
	log         *slog.Logger
	now         func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *slog.Logger, now func() time.Time) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
		now:         now,
	}
}

// ShowLogin renders the login form, or sends a live session to the issues.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	st := session.Load(sessions.Default(c))
	if st.LoggedIn && !st.Expired(h.now()) {
		c.Redirect(http.StatusSeeOther, constants.IssuesPath)
		return
	}

	render(c, h.log, http.StatusOK, "login.html", gin.H{"Title": "Log in"})
}

// Login checks credentials and starts a fresh session on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderLogin(c, http.StatusBadRequest, form, services.ErrInvalidCredentials.Error())
		return
	}

	s := sessions.Default(c)
	st := session.Load(s)
	attempts := services.LoginAttempts{
		Failed:      st.FailedAttempts,
		LockedUntil: st.LockedUntil,
	}

	person, err := h.authService.Login(services.LoginInput{
		Email:    form.Email,
		Password: form.Password,
	}, &attempts)
	if err != nil {
		st.FailedAttempts = attempts.Failed
		st.LockedUntil = attempts.LockedUntil
		if saveErr := st.Save(s); saveErr != nil {
			h.log.Error("failed to save session", slog.Any("error", saveErr))
		}
		h.respondLoginError(c, form, err)
		return
	}

	session.Reset(s)
	if err := session.LoggedInAs(person, h.now()).Save(s); err != nil {
		internalError(c, h.log, "failed to save session", err)
		return
	}

	h.log.Info("login", slog.Uint64("person_id", person.ID))
	c.Redirect(http.StatusSeeOther, constants.IssuesPath)
}

// Logout clears the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	s := sessions.Default(c)
	session.Reset(s)
	redirectWithFlash(c, h.log, constants.LoginPath, session.FlashSuccess, "You have been logged out")
}

func (h *AuthHandler) respondLoginError(c *gin.Context, form dto.LoginForm, err error) {
	switch {
	case errors.Is(err, services.ErrAccountLocked):
		h.renderLogin(c, http.StatusTooManyRequests, form, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		h.renderLogin(c, http.StatusUnauthorized, form, err.Error())
	default:
		h.log.Error("login failed", slog.Any("error", err))
		_ = c.Error(err)
		h.renderLogin(c, http.StatusInternalServerError, form, genericErrorMessage)
	}
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, form dto.LoginForm, message string) {
	render(c, h.log, status, "login.html", gin.H{
		"Title": "Log in",
		"Email": form.Email,
		"Error": capitalize(message),
	})
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
