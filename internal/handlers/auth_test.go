package handlers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker/internal/constants"
	"github.com/yukikurage/issue-tracker/internal/testutil"
)

func TestAuthHandler_LoginShowsIssues(t *testing.T) {
	app := newTestApp(t)
	_, b := app.loginAs(t, "a@b.com", false)

	w := b.get(constants.IssuesPath)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Test User")
	assert.NotEmpty(t, b.csrf)
}

func TestAuthHandler_LoginPageRedirectsLiveSession(t *testing.T) {
	app := newTestApp(t)
	_, b := app.loginAs(t, "a@b.com", false)

	w := b.get(constants.LoginPath)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, constants.IssuesPath, w.Header().Get("Location"))
}

func TestAuthHandler_InvalidCredentials(t *testing.T) {
	app := newTestApp(t)
	testutil.CreateLoginPerson(t, app.db, "a@b.com", testPassword, false)
	b := app.browser()

	w := b.post(constants.LoginPath, url.Values{"email": {"a@b.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
	assert.Contains(t, w.Body.String(), `value="a@b.com"`)

	w = b.post(constants.LoginPath, url.Values{"email": {"nobody@b.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestAuthHandler_Lockout(t *testing.T) {
	app := newTestApp(t)
	testutil.CreateLoginPerson(t, app.db, "a@b.com", testPassword, false)
	b := app.browser()

	for i := 0; i < 4; i++ {
		w := b.post(constants.LoginPath, url.Values{"email": {"a@b.com"}, "password": {"wrong"}})
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}

	w := b.post(constants.LoginPath, url.Values{"email": {"a@b.com"}, "password": {testPassword}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many failed login attempts")

	app.now = app.now.Add(10 * time.Minute)
	w = b.post(constants.LoginPath, url.Values{"email": {"a@b.com"}, "password": {testPassword}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	app.now = app.now.Add(6 * time.Minute)
	w = b.post(constants.LoginPath, url.Values{"email": {"a@b.com"}, "password": {testPassword}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, constants.IssuesPath, w.Header().Get("Location"))
}

func TestAuthHandler_ProtectedRoutesRedirectAnonymous(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()

	for _, path := range []string{"/issues", "/issues/new", "/comments", "/persons"} {
		w := b.get(path)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, constants.LoginPath, w.Header().Get("Location"), path)
	}

	w := b.post("/issues", url.Values{"short_description": {"x"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	var count int64
	require.NoError(t, app.db.Table("issue").Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthHandler_IdleSessionExpires(t *testing.T) {
	app := newTestApp(t)
	_, b := app.loginAs(t, "a@b.com", false)

	app.now = app.now.Add(20 * time.Minute)
	require.Equal(t, http.StatusOK, b.get(constants.IssuesPath).Code)

	app.now = app.now.Add(20 * time.Minute)
	require.Equal(t, http.StatusOK, b.get(constants.IssuesPath).Code)

	app.now = app.now.Add(31 * time.Minute)
	w := b.get(constants.IssuesPath)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, constants.LoginPath, w.Header().Get("Location"))

	w = b.get(constants.LoginPath)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Your session expired")

	w = b.get(constants.IssuesPath)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	app := newTestApp(t)
	_, b := app.loginAs(t, "a@b.com", false)

	w := b.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, constants.LoginPath, w.Header().Get("Location"))

	w = b.get(constants.LoginPath)
	assert.Contains(t, w.Body.String(), "You have been logged out")

	w = b.get(constants.IssuesPath)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestAuthHandler_CSRFTokenRequired(t *testing.T) {
	app := newTestApp(t)
	_, b := app.loginAs(t, "a@b.com", false)

	w := b.post("/logout", url.Values{constants.CSRFFormField: {"forged"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = b.get(constants.IssuesPath)
	assert.Equal(t, http.StatusOK, w.Code)
}
