// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker/internal/auth"
	"github.com/yukikurage/issue-tracker/internal/config"
	"github.com/yukikurage/issue-tracker/internal/constants"
	"github.com/yukikurage/issue-tracker/internal/database"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDB returns a migrated in-memory SQLite database closed at test cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"}, Logger())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, Logger()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// Date builds a calendar date.
func Date(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// CreatePerson inserts a person with placeholder credentials.
func CreatePerson(t *testing.T, db *gorm.DB, first, last, email string, admin bool) *models.Person {
	t.Helper()
	person := &models.Person{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: "hashedpassword",
		PasswordSalt: "salt",
		Admin:        admin,
	}
	require.NoError(t, db.Create(person).Error)
	return person
}

// CreateIssue inserts an issue assigned to and created by creatorID.
func CreateIssue(t *testing.T, db *gorm.DB, short, project string, priority models.Priority, creatorID uint64) *models.Issue {
	t.Helper()
	issue := &models.Issue{
		ShortDescription: short,
		OpenDate:         Date(2024, time.March, 1),
		Priority:         priority,
		Org:              "Engineering",
		Project:          project,
		AssigneeID:       creatorID,
		CreatorID:        creatorID,
	}
	require.NoError(t, db.Create(issue).Error)
	return issue
}

// CreateComment inserts a comment authored and created by creatorID.
func CreateComment(t *testing.T, db *gorm.DB, issueID, creatorID uint64, short string, posted datatypes.Date) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		IssueID:      issueID,
		AuthorID:     creatorID,
		CreatorID:    creatorID,
		ShortComment: short,
		PostedDate:   posted,
	}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

// Passwords returns a PasswordService at the minimum bcrypt cost.
func Passwords() *auth.PasswordService {
	return auth.NewPasswordServiceForTest(bcrypt.MinCost)
}

// CreateLoginPerson inserts a person whose password really verifies.
func CreateLoginPerson(t *testing.T, db *gorm.DB, email, password string, admin bool) *models.Person {
	t.Helper()
	salt := "0123456789abcdef0123456789abcdef"
	hash, err := Passwords().Hash(password, salt)
	require.NoError(t, err)

	person := &models.Person{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Admin:        admin,
	}
	require.NoError(t, db.Create(person).Error)
	return person
}

// FileHeader builds an uploaded file header the way a multipart request
// carries it.
func FileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile(constants.AttachmentFormField, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File[constants.AttachmentFormField][0]
}

// Page returns the first page at the default size.
func Page() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: constants.DefaultPageSize}
}
