package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker/internal/dto"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/testutil"
)

func TestCommentHandler_CreateDefaultsAuthor(t *testing.T) {
	app := newTestApp(t)
	owner, b := app.loginAs(t, "owner@example.com", false)
	issue := testutil.CreateIssue(t, app.db, "Needs discussion", "Apollo", models.PriorityLow, owner.ID)

	w := b.get(fmt.Sprintf("/comments/new?issue_id=%d", issue.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`value="%d" selected`, issue.ID))

	w = b.post("/comments", url.Values{
		"issue_id":      {fmt.Sprint(issue.ID)},
		"short_comment": {"First thoughts"},
		"long_comment":  {"A longer note"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/comments", w.Header().Get("Location"))

	var comment models.Comment
	require.NoError(t, app.db.First(&comment).Error)
	assert.Equal(t, owner.ID, comment.AuthorID)
	assert.Equal(t, owner.ID, comment.CreatorID)
	assert.Equal(t, "2024-03-01", dto.FormatDate(comment.PostedDate))

	w = b.get("/comments")
	body := w.Body.String()
	assert.Contains(t, body, "Comment added")
	assert.Contains(t, body, "First thoughts")
	assert.Contains(t, body, "Needs discussion")
}

func TestCommentHandler_ValidationAndUnknownIssue(t *testing.T) {
	app := newTestApp(t)
	_, b := app.loginAs(t, "owner@example.com", false)

	w := b.post("/comments", url.Values{"issue_id": {"1"}, "short_comment": {"  "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Short comment is required")

	w = b.post("/comments", url.Values{"issue_id": {"9999"}, "short_comment": {"Orphan"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Choose a valid issue")
}

func TestCommentHandler_NonOwnerRejected(t *testing.T) {
	app := newTestApp(t)
	owner, ownerB := app.loginAs(t, "owner@example.com", false)
	_, otherB := app.loginAs(t, "other@example.com", false)
	issue := testutil.CreateIssue(t, app.db, "Shared", "Apollo", models.PriorityLow, owner.ID)
	comment := testutil.CreateComment(t, app.db, issue.ID, owner.ID, "Mine", testutil.Date(2024, time.February, 1))
	path := fmt.Sprintf("/comments/%d", comment.ID)

	assert.Equal(t, http.StatusForbidden, otherB.get(path+"/edit").Code)
	w := otherB.post(path, url.Values{"issue_id": {fmt.Sprint(issue.ID)}, "short_comment": {"Theirs"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, http.StatusForbidden, otherB.post(path+"/delete", nil).Code)

	var stored models.Comment
	require.NoError(t, app.db.First(&stored, comment.ID).Error)
	assert.Equal(t, "Mine", stored.ShortComment)

	w = ownerB.post(path, url.Values{"issue_id": {fmt.Sprint(issue.ID)}, "short_comment": {"Edited"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.NoError(t, app.db.First(&stored, comment.ID).Error)
	assert.Equal(t, "Edited", stored.ShortComment)
	assert.Equal(t, "2024-03-01", dto.FormatDate(stored.PostedDate))

	assert.Equal(t, http.StatusSeeOther, ownerB.post(path+"/delete", nil).Code)
	assert.Equal(t, http.StatusNotFound, ownerB.get(path+"/edit").Code)
}

func TestAPIHandler_IssueComments(t *testing.T) {
	app := newTestApp(t)
	owner, b := app.loginAs(t, "owner@example.com", false)
	issue := testutil.CreateIssue(t, app.db, "API", "Apollo", models.PriorityHigh, owner.ID)
	testutil.CreateComment(t, app.db, issue.ID, owner.ID, "older", testutil.Date(2024, time.January, 5))
	testutil.CreateComment(t, app.db, issue.ID, owner.ID, "newer", testutil.Date(2024, time.February, 5))

	w := b.get(fmt.Sprintf("/api/issues/%d/comments", issue.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var comments []dto.CommentDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 2)
	assert.Equal(t, "newer", comments[0].ShortComment)
	assert.Equal(t, "2024-02-05", comments[0].PostedDate)
	assert.Equal(t, "Test User", comments[0].CommenterName)
	assert.Equal(t, "older", comments[1].ShortComment)
}

func TestAPIHandler_IssueCommentsEmpty(t *testing.T) {
	app := newTestApp(t)
	owner, b := app.loginAs(t, "owner@example.com", false)
	issue := testutil.CreateIssue(t, app.db, "Quiet", "Apollo", models.PriorityHigh, owner.ID)

	w := b.get(fmt.Sprintf("/api/issues/%d/comments", issue.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestAPIHandler_Errors(t *testing.T) {
	app := newTestApp(t)

	w := app.browser().get("/api/issues/1/comments")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Not authorized","code":"UNAUTHORIZED"}`, w.Body.String())

	_, b := app.loginAs(t, "owner@example.com", false)

	w = b.get("/api/issues/abc/comments")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid issue id","code":"INVALID_INPUT"}`, w.Body.String())

	w = b.get("/api/issues/9999/comments")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Issue not found","code":"NOT_FOUND"}`, w.Body.String())
}

func TestAPIHandler_Health(t *testing.T) {
	app := newTestApp(t)

	w := app.browser().get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
