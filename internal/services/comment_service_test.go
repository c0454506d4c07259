package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker/internal/authz"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/repository"
	"github.com/yukikurage/issue-tracker/internal/testutil"
	"gorm.io/gorm"
)

type commentTestEnv struct {
	db      *gorm.DB
	service *CommentService
	now     time.Time
	issue   *models.Issue
	owner   authz.Actor
	other   authz.Actor
	admin   authz.Actor
}

func setupCommentTestEnv(t *testing.T) *commentTestEnv {
	t.Helper()

	db := testutil.NewDB(t)
	owner := testutil.CreatePerson(t, db, "Olive", "Owner", "owner@example.com", false)
	other := testutil.CreatePerson(t, db, "Oscar", "Other", "other@example.com", false)
	admin := testutil.CreatePerson(t, db, "Ada", "Admin", "admin@example.com", true)

	env := &commentTestEnv{
		db:    db,
		now:   time.Date(2024, time.April, 10, 15, 30, 0, 0, time.UTC),
		issue: testutil.CreateIssue(t, db, "Crash on save", "Desktop", models.PriorityHigh, owner.ID),
		owner: authz.Actor{ID: owner.ID},
		other: authz.Actor{ID: other.ID},
		admin: authz.Actor{ID: admin.ID, IsAdmin: true},
	}
	env.service = NewCommentService(
		repository.NewCommentRepository(db),
		repository.NewIssueRepository(db),
		repository.NewPersonRepository(db),
		testutil.Logger(),
	)
	env.service.SetClock(func() time.Time { return env.now })
	return env
}

func TestCommentService_CreateDefaultsAuthorToActor(t *testing.T) {
	env := setupCommentTestEnv(t)

	comment, err := env.service.Create(env.owner, CommentInput{IssueID: env.issue.ID, ShortComment: "Reproduced"})
	require.NoError(t, err)
	assert.Equal(t, env.owner.ID, comment.AuthorID)
	assert.Equal(t, env.owner.ID, comment.CreatorID)
	assert.Equal(t, testutil.Date(2024, time.April, 10), comment.PostedDate)
}

func TestCommentService_CreateWithOtherAuthor(t *testing.T) {
	env := setupCommentTestEnv(t)

	comment, err := env.service.Create(env.owner, CommentInput{
		IssueID:      env.issue.ID,
		AuthorID:     env.other.ID,
		ShortComment: "Relayed from Oscar",
	})
	require.NoError(t, err)
	assert.Equal(t, env.other.ID, comment.AuthorID)
	assert.Equal(t, env.owner.ID, comment.CreatorID)

	comments, err := env.service.ListByIssue(env.issue.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Oscar Other", comments[0].Author.FullName())
}

func TestCommentService_CreateUnknownReferences(t *testing.T) {
	env := setupCommentTestEnv(t)

	_, err := env.service.Create(env.owner, CommentInput{IssueID: 9999, ShortComment: "x"})
	require.ErrorIs(t, err, ErrCommentIssueNotFound)

	_, err = env.service.Create(env.owner, CommentInput{IssueID: env.issue.ID, AuthorID: 9999, ShortComment: "x"})
	require.ErrorIs(t, err, ErrAuthorNotFound)
}

func TestCommentService_UpdateRefreshesPostedDate(t *testing.T) {
	env := setupCommentTestEnv(t)
	comment, err := env.service.Create(env.owner, CommentInput{IssueID: env.issue.ID, ShortComment: "First"})
	require.NoError(t, err)

	env.now = env.now.Add(48 * time.Hour)
	updated, err := env.service.Update(env.owner, comment.ID, CommentInput{
		IssueID:      env.issue.ID,
		ShortComment: "Edited",
		LongComment:  "More detail",
	})
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.ShortComment)
	assert.Equal(t, testutil.Date(2024, time.April, 12), updated.PostedDate)

	got, err := env.service.Get(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "More detail", got.LongComment)
	assert.Equal(t, "Crash on save", got.Issue.ShortDescription)
}

func TestCommentService_NonOwnerCannotModify(t *testing.T) {
	env := setupCommentTestEnv(t)
	comment, err := env.service.Create(env.owner, CommentInput{IssueID: env.issue.ID, ShortComment: "Mine"})
	require.NoError(t, err)

	_, err = env.service.Update(env.other, comment.ID, CommentInput{IssueID: env.issue.ID, ShortComment: "Theirs"})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.service.Delete(env.other, comment.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)

	got, err := env.service.Get(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.ShortComment)
}

func TestCommentService_AdminDeletesAnyComment(t *testing.T) {
	env := setupCommentTestEnv(t)
	comment, err := env.service.Create(env.owner, CommentInput{IssueID: env.issue.ID, ShortComment: "Mine"})
	require.NoError(t, err)

	deleted, err := env.service.Delete(env.admin, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, env.issue.ID, deleted.IssueID)

	_, err = env.service.Get(comment.ID)
	require.ErrorIs(t, err, ErrCommentNotFound)
}

func TestCommentService_ListByUnknownIssue(t *testing.T) {
	env := setupCommentTestEnv(t)

	_, err := env.service.ListByIssue(9999)
	require.ErrorIs(t, err, ErrIssueNotFound)
}

func TestCommentService_List(t *testing.T) {
	env := setupCommentTestEnv(t)
	testutil.CreateComment(t, env.db, env.issue.ID, env.owner.ID, "older", testutil.Date(2024, time.March, 1))
	testutil.CreateComment(t, env.db, env.issue.ID, env.owner.ID, "newer", testutil.Date(2024, time.March, 5))

	comments, total, err := env.service.List(testutil.Page())
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, comments, 2)
	assert.Equal(t, "newer", comments[0].ShortComment)
}
