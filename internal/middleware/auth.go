package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/authz"
	"github.com/yukikurage/issue-tracker/internal/constants"
	apierrors "github.com/yukikurage/issue-tracker/internal/errors"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/session"
	"gorm.io/gorm"
)

// PersonLookup loads the account behind a session.
// repository.PersonRepository satisfies it.
type PersonLookup interface {
	FindByID(id uint64) (*models.Person, error)
}

type authOutcome int

const (
	authOK authOutcome = iota
	authAnonymous
	authExpired
	authRevoked
	authUnavailable
)

// RequireAuth redirects anonymous and idle sessions to the login page and
// refreshes the activity timestamp of live ones. The person is reloaded on
// every request so admin rights and deleted accounts take effect at once.
func RequireAuth(persons PersonLookup, log *slog.Logger, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		switch authenticate(c, s, persons, log, now()) {
		case authOK:
			c.Next()
			return
		case authUnavailable:
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"Title":   "Error",
				"Message": "A system error occurred, please try again later",
			})
			c.Abort()
			return
		case authExpired:
			flashAndSave(s, log, "Your session expired, please log in again")
		case authRevoked:
			flashAndSave(s, log, "Your account is no longer available")
		}

		c.Redirect(http.StatusSeeOther, constants.LoginPath)
		c.Abort()
	}
}

// RequireAPIAuth is RequireAuth for JSON routes: it answers 401 instead of
// redirecting
func RequireAPIAuth(persons PersonLookup, log *slog.Logger, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch authenticate(c, sessions.Default(c), persons, log, now()) {
		case authOK:
			c.Next()
		case authExpired:
			apierrors.Unauthorized(c, "Session expired")
		case authUnavailable:
			apierrors.InternalError(c, "")
		default:
			apierrors.Unauthorized(c, "")
		}
	}
}

// authenticate loads the session, expiring it when idle, and refreshes the
// account fields from the person row.
func authenticate(c *gin.Context, s sessions.Session, persons PersonLookup, log *slog.Logger, now time.Time) authOutcome {
	st := session.Load(s)
	if !st.LoggedIn {
		return authAnonymous
	}

	if st.Expired(now) {
		resetAndSave(s, log)
		return authExpired
	}

	person, err := persons.FindByID(st.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("session for deleted person", slog.Uint64("person_id", st.UserID))
		resetAndSave(s, log)
		return authRevoked
	}
	if err != nil {
		log.Error("failed to load session person", slog.Uint64("person_id", st.UserID), slog.Any("error", err))
		return authUnavailable
	}

	st.IsAdmin = person.Admin
	st.UserName = person.FullName()
	st.UserEmail = person.Email
	st.LastActivity = now
	if err := st.Save(s); err != nil {
		log.Error("failed to save session", slog.Any("error", err))
	}

	// Store the session state in context for easy access in handlers
	c.Set(constants.ContextKeySession, st)
	return authOK
}

func resetAndSave(s sessions.Session, log *slog.Logger) {
	session.Reset(s)
	if err := s.Save(); err != nil {
		log.Error("failed to save session", slog.Any("error", err))
	}
}

func flashAndSave(s sessions.Session, log *slog.Logger, message string) {
	session.AddFlash(s, session.FlashError, message)
	if err := s.Save(); err != nil {
		log.Error("failed to save session", slog.Any("error", err))
	}
}

// CurrentState retrieves the session state stored by RequireAuth
func CurrentState(c *gin.Context) (session.State, bool) {
	v, exists := c.Get(constants.ContextKeySession)
	if !exists {
		return session.State{}, false
	}

	st, ok := v.(session.State)
	return st, ok
}

// CurrentActor retrieves the acting user from context
func CurrentActor(c *gin.Context) (authz.Actor, bool) {
	st, ok := CurrentState(c)
	if !ok || !st.LoggedIn {
		return authz.Actor{}, false
	}
	return st.Actor(), true
}
