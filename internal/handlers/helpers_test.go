package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker/internal/constants"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/session"
	"github.com/yukikurage/issue-tracker/internal/storage"
	"github.com/yukikurage/issue-tracker/internal/testutil"
	"gorm.io/gorm"
)

const testPassword = "correct-horse"

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// testApp is a full router over an in-memory database and session store.
type testApp struct {
	db      *gorm.DB
	store   sessions.Store
	router  *gin.Engine
	uploads string
	now     time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithDB(t, testutil.NewDB(t))
}

func newTestAppWithDB(t *testing.T, db *gorm.DB) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &testApp{
		db:      db,
		store:   memstore.NewStore([]byte("test-secret")),
		uploads: filepath.Join(t.TempDir(), "uploads"),
		now:     time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
	}

	attachments, err := storage.NewAttachmentStore(app.uploads)
	require.NoError(t, err)

	app.router, err = NewRouter(Dependencies{
		DB:           db,
		SessionStore: app.store,
		Attachments:  attachments,
		Passwords:    testutil.Passwords(),
		Log:          testutil.Logger(),
		Now:          func() time.Time { return app.now },
		Sleep:        func(time.Duration) {},
	})
	require.NoError(t, err)

	return app
}

// loginAs creates a person and returns a browser logged in as them.
func (app *testApp) loginAs(t *testing.T, email string, admin bool) (*models.Person, *browser) {
	t.Helper()
	person := testutil.CreateLoginPerson(t, app.db, email, testPassword, admin)
	b := app.browser()
	b.login(t, email, testPassword)
	return person, b
}

// seed stores st in a new session without going through the login page.
func (app *testApp) seed(t *testing.T, st session.State) *browser {
	t.Helper()

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, app.store))
	r.GET("/seed", func(c *gin.Context) {
		require.NoError(t, st.Save(sessions.Default(c)))
	})

	b := app.browser()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/seed", nil))
	b.keep(w)
	b.csrf = st.CSRFToken
	return b
}

func (app *testApp) browser() *browser {
	return &browser{app: app, cookies: map[string]*http.Cookie{}}
}

// browser carries the session cookie and CSRF token between requests.
type browser struct {
	app     *testApp
	cookies map[string]*http.Cookie
	csrf    string
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.app.router.ServeHTTP(w, req)
	b.keep(w)
	return w
}

func (b *browser) keep(w *httptest.ResponseRecorder) {
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, values url.Values) *httptest.ResponseRecorder {
	values = b.withToken(values)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postMultipart(t *testing.T, path string, values url.Values, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	values = b.withToken(values)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for key, vs := range values {
		for _, v := range vs {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile(constants.AttachmentFormField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func (b *browser) withToken(values url.Values) url.Values {
	out := url.Values{}
	for k, v := range values {
		out[k] = v
	}
	if b.csrf != "" && out.Get(constants.CSRFFormField) == "" {
		out.Set(constants.CSRFFormField, b.csrf)
	}
	return out
}

func (b *browser) login(t *testing.T, email, password string) {
	t.Helper()

	w := b.post(constants.LoginPath, url.Values{"email": {email}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, constants.IssuesPath, w.Header().Get("Location"))

	w = b.get(constants.IssuesPath)
	require.Equal(t, http.StatusOK, w.Code)
	m := csrfPattern.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2, "no csrf token on the issues page")
	b.csrf = m[1]
}
