package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/dto"
	"github.com/yukikurage/issue-tracker/internal/middleware"
	"github.com/yukikurage/issue-tracker/internal/session"
)

const genericErrorMessage = "A system error occurred, please try again later"

// render writes an HTML page with the values every layout needs: the acting
// user, the CSRF token and pending flashes.
func render(c *gin.Context, log *slog.Logger, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, exists := data["Errors"]; !exists {
		data["Errors"] = dto.FieldErrors{}
	}

	if st, ok := middleware.CurrentState(c); ok {
		data["User"] = st.Actor()
		data["CSRFToken"] = st.CSRFToken
	}

	s := sessions.Default(c)
	data["Flashes"] = session.TakeFlashes(s)
	if err := s.Save(); err != nil {
		log.Error("failed to save session", slog.Any("error", err))
	}

	c.HTML(status, name, data)
}

// renderError writes the error page. Internal details never reach it.
func renderError(c *gin.Context, log *slog.Logger, status int, message string) {
	render(c, log, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Message": message,
	})
}

// internalError logs err with the request id and writes the generic page.
func internalError(c *gin.Context, log *slog.Logger, msg string, err error) {
	log.Error(msg,
		slog.String("request_id", middleware.RequestID(c)),
		slog.String("path", c.Request.URL.Path),
		slog.Any("error", err),
	)
	_ = c.Error(err)
	renderError(c, log, http.StatusInternalServerError, genericErrorMessage)
}

// redirectWithFlash queues a flash and answers 303 See Other.
func redirectWithFlash(c *gin.Context, log *slog.Logger, location, kind, message string) {
	s := sessions.Default(c)
	session.AddFlash(s, kind, message)
	if err := s.Save(); err != nil {
		log.Error("failed to save session", slog.Any("error", err))
	}
	c.Redirect(http.StatusSeeOther, location)
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
