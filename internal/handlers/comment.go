package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/authz"
	"github.com/yukikurage/issue-tracker/internal/dto"
	"github.com/yukikurage/issue-tracker/internal/middleware"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/services"
	"github.com/yukikurage/issue-tracker/internal/session"
	"github.com/yukikurage/issue-tracker/internal/utils"
)

const commentsPath = "/comments"

// CommentHandler serves the comment pages.
type CommentHandler struct {
	commentService *services.CommentService
	issueService   *services.IssueService
	personService  *services.PersonService
	log            *slog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService *services.CommentService, issueService *services.IssueService, personService *services.PersonService, log *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		issueService:   issueService,
		personService:  personService,
		log:            log,
	}
}

// ListComments renders one page of all comments.
func (h *CommentHandler) ListComments(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	comments, total, err := h.commentService.List(params)
	if err != nil {
		internalError(c, h.log, "failed to list comments", err)
		return
	}

	render(c, h.log, http.StatusOK, "comments.html", gin.H{
		"Title":      "Comments",
		"Comments":   comments,
		"Pagination": params.Pager(total),
	})
}

// NewComment renders an empty comment form, preselecting ?issue_id.
func (h *CommentHandler) NewComment(c *gin.Context) {
	form := dto.CommentForm{IssueID: c.Query("issue_id")}
	h.renderForm(c, http.StatusOK, form, nil, nil)
}

// CreateComment posts a comment.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	var form dto.CommentForm
	if errs := dto.Bind(c, &form); errs != nil {
		h.renderForm(c, http.StatusBadRequest, form, errs, nil)
		return
	}

	comment, err := h.commentService.Create(actor, form.Input())
	if err != nil {
		h.respondWriteError(c, form, nil, err)
		return
	}

	h.log.Info("comment created", slog.Uint64("comment_id", comment.ID), slog.Uint64("actor_id", actor.ID))
	redirectWithFlash(c, h.log, commentsPath, session.FlashSuccess, "Comment added")
}

// EditComment renders the form for a comment the actor may modify.
func (h *CommentHandler) EditComment(c *gin.Context) {
	comment, ok := h.loadModifiableComment(c)
	if !ok {
		return
	}
	h.renderForm(c, http.StatusOK, dto.NewCommentForm(comment), nil, comment)
}

// UpdateComment writes the form over a comment.
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	comment, ok := h.loadModifiableComment(c)
	if !ok {
		return
	}
	actor, _ := middleware.CurrentActor(c)

	var form dto.CommentForm
	if errs := dto.Bind(c, &form); errs != nil {
		h.renderForm(c, http.StatusBadRequest, form, errs, comment)
		return
	}

	if _, err := h.commentService.Update(actor, comment.ID, form.Input()); err != nil {
		h.respondWriteError(c, form, comment, err)
		return
	}

	h.log.Info("comment updated", slog.Uint64("comment_id", comment.ID), slog.Uint64("actor_id", actor.ID))
	redirectWithFlash(c, h.log, commentsPath, session.FlashSuccess, "Comment updated")
}

// DeleteComment removes a comment.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		renderError(c, h.log, http.StatusNotFound, "Comment not found")
		return
	}
	actor, _ := middleware.CurrentActor(c)

	_, err := h.commentService.Delete(actor, id)
	switch {
	case err == nil:
		h.log.Info("comment deleted", slog.Uint64("comment_id", id), slog.Uint64("actor_id", actor.ID))
		redirectWithFlash(c, h.log, commentsPath, session.FlashSuccess, "Comment deleted")
	case errors.Is(err, services.ErrCommentNotFound):
		renderError(c, h.log, http.StatusNotFound, "Comment not found")
	case errors.Is(err, services.ErrPermissionDenied):
		renderError(c, h.log, http.StatusForbidden, "Permission denied")
	default:
		internalError(c, h.log, "failed to delete comment", err)
	}
}

func (h *CommentHandler) respondWriteError(c *gin.Context, form dto.CommentForm, comment *models.Comment, err error) {
	switch {
	case errors.Is(err, services.ErrCommentIssueNotFound):
		h.renderForm(c, http.StatusBadRequest, form, dto.FieldErrors{"issue_id": "Choose a valid issue"}, comment)
	case errors.Is(err, services.ErrAuthorNotFound):
		h.renderForm(c, http.StatusBadRequest, form, dto.FieldErrors{"author_id": "Choose a valid author"}, comment)
	case errors.Is(err, services.ErrPermissionDenied):
		renderError(c, h.log, http.StatusForbidden, "Permission denied")
	case errors.Is(err, services.ErrCommentNotFound):
		renderError(c, h.log, http.StatusNotFound, "Comment not found")
	default:
		internalError(c, h.log, "failed to save comment", err)
	}
}

func (h *CommentHandler) renderForm(c *gin.Context, status int, form dto.CommentForm, errs dto.FieldErrors, comment *models.Comment) {
	issues, err := h.issueService.ListSummaries()
	if err != nil {
		internalError(c, h.log, "failed to list issues", err)
		return
	}
	persons, err := h.personService.ListAll()
	if err != nil {
		internalError(c, h.log, "failed to list persons", err)
		return
	}

	title, action := "New comment", commentsPath
	if comment != nil {
		title = "Edit comment"
		action = fmt.Sprintf("%s/%d", commentsPath, comment.ID)
	}

	render(c, h.log, status, "comment_form.html", gin.H{
		"Title":   title,
		"Action":  action,
		"Form":    form,
		"Errors":  errs,
		"Issues":  issues,
		"Persons": persons,
	})
}

func (h *CommentHandler) loadModifiableComment(c *gin.Context) (*models.Comment, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		renderError(c, h.log, http.StatusNotFound, "Comment not found")
		return nil, false
	}

	comment, err := h.commentService.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrCommentNotFound) {
			renderError(c, h.log, http.StatusNotFound, "Comment not found")
			return nil, false
		}
		internalError(c, h.log, "failed to load comment", err)
		return nil, false
	}

	actor, _ := middleware.CurrentActor(c)
	if !authz.CanModify(actor, comment.CreatorID) {
		renderError(c, h.log, http.StatusForbidden, "Permission denied")
		return nil, false
	}
	return comment, true
}
