package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/authz"
	"github.com/yukikurage/issue-tracker/internal/constants"
	"github.com/yukikurage/issue-tracker/internal/dto"
	"github.com/yukikurage/issue-tracker/internal/middleware"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/services"
	"github.com/yukikurage/issue-tracker/internal/session"
	"github.com/yukikurage/issue-tracker/internal/storage"
	"github.com/yukikurage/issue-tracker/internal/utils"
)

// IssueHandler serves the issue pages.
type IssueHandler struct {
	issueService   *services.IssueService
	commentService *services.CommentService
	personService  *services.PersonService
	log            *slog.Logger
	now            func() time.Time
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(issueService *services.IssueService, commentService *services.CommentService, personService *services.PersonService, log *slog.Logger, now func() time.Time) *IssueHandler {
	return &IssueHandler{
		issueService:   issueService,
		commentService: commentService,
		personService:  personService,
		log:            log,
		now:            now,
	}
}

// ListIssues renders one page of issues.
func (h *IssueHandler) ListIssues(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	issues, total, err := h.issueService.List(params)
	if err != nil {
		internalError(c, h.log, "failed to list issues", err)
		return
	}

	render(c, h.log, http.StatusOK, "issues.html", gin.H{
		"Title":      "Issues",
		"Issues":     issues,
		"Pagination": params.Pager(total),
	})
}

// NewIssue renders an empty issue form.
func (h *IssueHandler) NewIssue(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)
	form := dto.IssueForm{
		OpenDate:   h.now().Format("2006-01-02"),
		Priority:   string(models.PriorityMedium),
		AssigneeID: fmt.Sprint(actor.ID),
	}
	h.renderForm(c, http.StatusOK, form, nil, nil)
}

// CreateIssue stores a new issue and its optional attachment.
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	var form dto.IssueForm
	errs := dto.Bind(c, &form)
	upload := h.attachmentErrors(c, &errs)
	if errs != nil {
		h.renderForm(c, http.StatusBadRequest, form, errs, nil)
		return
	}

	issue, err := h.issueService.Create(actor, form.Input(), upload)
	if err != nil {
		h.respondWriteError(c, form, nil, err)
		return
	}

	h.log.Info("issue created", slog.Uint64("issue_id", issue.ID), slog.Uint64("actor_id", actor.ID))
	redirectWithFlash(c, h.log, constants.IssuesPath, session.FlashSuccess, "Issue created")
}

// ShowIssue renders one issue with its comments.
func (h *IssueHandler) ShowIssue(c *gin.Context) {
	issue, ok := h.loadIssue(c)
	if !ok {
		return
	}

	comments, err := h.commentService.ListByIssue(issue.ID)
	if err != nil {
		internalError(c, h.log, "failed to list comments", err)
		return
	}

	render(c, h.log, http.StatusOK, "issue_detail.html", gin.H{
		"Title":    issue.ShortDescription,
		"Issue":    issue,
		"Comments": comments,
	})
}

// EditIssue renders the form for an issue the actor may modify.
func (h *IssueHandler) EditIssue(c *gin.Context) {
	issue, ok := h.loadModifiableIssue(c)
	if !ok {
		return
	}
	h.renderForm(c, http.StatusOK, dto.NewIssueForm(issue), nil, issue)
}

// UpdateIssue writes the form over an issue.
func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	issue, ok := h.loadModifiableIssue(c)
	if !ok {
		return
	}
	actor, _ := middleware.CurrentActor(c)

	var form dto.IssueForm
	errs := dto.Bind(c, &form)
	upload := h.attachmentErrors(c, &errs)
	if errs != nil {
		h.renderForm(c, http.StatusBadRequest, form, errs, issue)
		return
	}

	_, err := h.issueService.Update(actor, issue.ID, form.Input(), services.AttachmentChange{
		Upload:       upload,
		KeepExisting: form.KeepExistingPDF,
	})
	if err != nil {
		h.respondWriteError(c, form, issue, err)
		return
	}

	h.log.Info("issue updated", slog.Uint64("issue_id", issue.ID), slog.Uint64("actor_id", actor.ID))
	redirectWithFlash(c, h.log, constants.IssuesPath, session.FlashSuccess, "Issue updated")
}

// DeleteIssue removes an issue, its comments and its attachment.
func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		renderError(c, h.log, http.StatusNotFound, "Issue not found")
		return
	}
	actor, _ := middleware.CurrentActor(c)

	err := h.issueService.Delete(actor, id)
	switch {
	case err == nil:
		h.log.Info("issue deleted", slog.Uint64("issue_id", id), slog.Uint64("actor_id", actor.ID))
		redirectWithFlash(c, h.log, constants.IssuesPath, session.FlashSuccess, "Issue deleted")
	case errors.Is(err, services.ErrAttachmentNotRemoved):
		redirectWithFlash(c, h.log, constants.IssuesPath, session.FlashWarning, "Issue deleted, but its PDF could not be removed")
	case errors.Is(err, services.ErrIssueNotFound):
		renderError(c, h.log, http.StatusNotFound, "Issue not found")
	case errors.Is(err, services.ErrPermissionDenied):
		renderError(c, h.log, http.StatusForbidden, "Permission denied")
	default:
		internalError(c, h.log, "failed to delete issue", err)
	}
}

// DownloadAttachment sends the issue's PDF.
func (h *IssueHandler) DownloadAttachment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		renderError(c, h.log, http.StatusNotFound, "Issue not found")
		return
	}

	_, path, err := h.issueService.AttachmentFile(id)
	switch {
	case err == nil:
		c.FileAttachment(path, fmt.Sprintf("issue-%d.pdf", id))
	case errors.Is(err, services.ErrIssueNotFound):
		renderError(c, h.log, http.StatusNotFound, "Issue not found")
	case errors.Is(err, services.ErrNoAttachment), errors.Is(err, storage.ErrInvalidPath):
		renderError(c, h.log, http.StatusNotFound, "This issue has no PDF")
	default:
		internalError(c, h.log, "failed to find attachment", err)
	}
}

// attachmentErrors returns the uploaded file, if any, and records its
// problems in errs without touching the disk.
func (h *IssueHandler) attachmentErrors(c *gin.Context, errs *dto.FieldErrors) *multipart.FileHeader {
	upload, err := c.FormFile(constants.AttachmentFormField)
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			h.addFieldError(errs, constants.AttachmentFormField, "The file could not be read")
		}
		return nil
	}

	if err := h.issueService.ValidateAttachment(upload); err != nil {
		h.addFieldError(errs, constants.AttachmentFormField, attachmentMessage(err))
		return nil
	}
	return upload
}

func (h *IssueHandler) addFieldError(errs *dto.FieldErrors, field, msg string) {
	if *errs == nil {
		*errs = dto.FieldErrors{}
	}
	errs.Add(field, msg)
}

func (h *IssueHandler) respondWriteError(c *gin.Context, form dto.IssueForm, issue *models.Issue, err error) {
	switch {
	case errors.Is(err, services.ErrAssigneeNotFound):
		h.renderForm(c, http.StatusBadRequest, form, dto.FieldErrors{"assigned_to": "Choose a valid assignee"}, issue)
	case errors.Is(err, storage.ErrNotPDF), errors.Is(err, storage.ErrTooLarge):
		h.renderForm(c, http.StatusBadRequest, form, dto.FieldErrors{constants.AttachmentFormField: attachmentMessage(err)}, issue)
	case errors.Is(err, services.ErrPermissionDenied):
		renderError(c, h.log, http.StatusForbidden, "Permission denied")
	case errors.Is(err, services.ErrIssueNotFound):
		renderError(c, h.log, http.StatusNotFound, "Issue not found")
	default:
		internalError(c, h.log, "failed to save issue", err)
	}
}

func (h *IssueHandler) renderForm(c *gin.Context, status int, form dto.IssueForm, errs dto.FieldErrors, issue *models.Issue) {
	persons, err := h.personService.ListAll()
	if err != nil {
		internalError(c, h.log, "failed to list persons", err)
		return
	}

	title, action := "New issue", constants.IssuesPath
	if issue != nil {
		title = "Edit issue"
		action = fmt.Sprintf("%s/%d", constants.IssuesPath, issue.ID)
	}

	render(c, h.log, status, "issue_form.html", gin.H{
		"Title":         title,
		"Action":        action,
		"Form":          form,
		"Errors":        errs,
		"Persons":       persons,
		"Priorities":    models.Priorities,
		"HasAttachment": issue != nil && issue.PDFAttachment != nil,
	})
}

func (h *IssueHandler) loadIssue(c *gin.Context) (*models.Issue, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		renderError(c, h.log, http.StatusNotFound, "Issue not found")
		return nil, false
	}

	issue, err := h.issueService.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrIssueNotFound) {
			renderError(c, h.log, http.StatusNotFound, "Issue not found")
			return nil, false
		}
		internalError(c, h.log, "failed to load issue", err)
		return nil, false
	}
	return issue, true
}

func (h *IssueHandler) loadModifiableIssue(c *gin.Context) (*models.Issue, bool) {
	issue, ok := h.loadIssue(c)
	if !ok {
		return nil, false
	}

	actor, _ := middleware.CurrentActor(c)
	if !authz.CanModify(actor, issue.CreatorID) {
		renderError(c, h.log, http.StatusForbidden, "Permission denied")
		return nil, false
	}
	return issue, true
}

func attachmentMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotPDF):
		return "Only PDF files are allowed"
	case errors.Is(err, storage.ErrTooLarge):
		return "File size exceeds 2 MB limit"
	default:
		return "The file could not be read"
	}
}
