// Package session maps the server-side session onto a typed login state.
package session

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/google/uuid"
	"github.com/yukikurage/issue-tracker/internal/authz"
	"github.com/yukikurage/issue-tracker/internal/constants"
	"github.com/yukikurage/issue-tracker/internal/models"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
)

// State is everything the application keeps in a session.
type State struct {
	LoggedIn       bool
	UserID         uint64
	UserName       string
	UserEmail      string
	IsAdmin        bool
	CSRFToken      string
	LastActivity   time.Time
	FailedAttempts int
	LockedUntil    time.Time
}

// Load reads the state from s. Missing or malformed values read as zero.
func Load(s sessions.Session) State {
	return State{
		LoggedIn:       toBool(s.Get(constants.SessionKeyLoggedIn)),
		UserID:         toUint64(s.Get(constants.SessionKeyUserID)),
		UserName:       toString(s.Get(constants.SessionKeyUserName)),
		UserEmail:      toString(s.Get(constants.SessionKeyUserEmail)),
		IsAdmin:        toBool(s.Get(constants.SessionKeyIsAdmin)),
		CSRFToken:      toString(s.Get(constants.SessionKeyCSRFToken)),
		LastActivity:   toTime(s.Get(constants.SessionKeyLastActivity)),
		FailedAttempts: int(toUint64(s.Get(constants.SessionKeyFailedAttempts))),
		LockedUntil:    toTime(s.Get(constants.SessionKeyLockedUntil)),
	}
}

// Store writes the state into s without saving.
func (st State) Store(s sessions.Session) {
	s.Set(constants.SessionKeyLoggedIn, st.LoggedIn)
	s.Set(constants.SessionKeyUserID, st.UserID)
	s.Set(constants.SessionKeyUserName, st.UserName)
	s.Set(constants.SessionKeyUserEmail, st.UserEmail)
	s.Set(constants.SessionKeyIsAdmin, st.IsAdmin)
	s.Set(constants.SessionKeyCSRFToken, st.CSRFToken)
	s.Set(constants.SessionKeyLastActivity, unix(st.LastActivity))
	s.Set(constants.SessionKeyFailedAttempts, st.FailedAttempts)
	s.Set(constants.SessionKeyLockedUntil, unix(st.LockedUntil))
}

// Save stores the state and persists the session.
func (st State) Save(s sessions.Session) error {
	st.Store(s)
	return s.Save()
}

// Actor returns the authorization identity of a logged-in state.
func (st State) Actor() authz.Actor {
	if !st.LoggedIn {
		return authz.Actor{}
	}
	return authz.Actor{
		ID:      st.UserID,
		Name:    st.UserName,
		Email:   st.UserEmail,
		IsAdmin: st.IsAdmin,
	}
}

// Expired reports whether the session has been idle longer than the timeout.
func (st State) Expired(now time.Time) bool {
	return !st.LastActivity.IsZero() && now.Sub(st.LastActivity) > constants.SessionIdleTimeout
}

// LoggedInAs builds a fresh state for person with a new CSRF token.
func LoggedInAs(person *models.Person, now time.Time) State {
	return State{
		LoggedIn:     true,
		UserID:       person.ID,
		UserName:     person.FullName(),
		UserEmail:    person.Email,
		IsAdmin:      person.Admin,
		CSRFToken:    NewToken(),
		LastActivity: now,
	}
}

// NewToken returns a random CSRF token.
func NewToken() string {
	return uuid.NewString()
}

// Reset drops every value, including pending flashes.
func Reset(s sessions.Session) {
	s.Clear()
}

// AddFlash queues a message of the given kind for the next page.
func AddFlash(s sessions.Session, kind, message string) {
	s.AddFlash(message, kind)
}

// Flashes holds the messages queued for a page.
type Flashes struct {
	Success []string
	Error   []string
	Warning []string
}

// TakeFlashes removes and returns queued messages. The caller saves the
// session.
func TakeFlashes(s sessions.Session) Flashes {
	return Flashes{
		Success: toStrings(s.Flashes(FlashSuccess)),
		Error:   toStrings(s.Flashes(FlashError)),
		Warning: toStrings(s.Flashes(FlashWarning)),
	}
}

func toStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func toUint64(v interface{}) uint64 {
	switch n := v.(type) {
	case uint64:
		return n
	case uint:
		return uint64(n)
	case int:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case int64:
		if n < 0 {
			return 0
		}
		return uint64(n)
	default:
		return 0
	}
}

func toTime(v interface{}) time.Time {
	n, ok := v.(int64)
	if !ok || n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0)
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
