package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/dto"
	apierrors "github.com/yukikurage/issue-tracker/internal/errors"
	"github.com/yukikurage/issue-tracker/internal/middleware"
	"github.com/yukikurage/issue-tracker/internal/services"
	"gorm.io/gorm"
)

// APIHandler serves the JSON endpoints.
type APIHandler struct {
	commentService *services.CommentService
	db             *gorm.DB
	log            *slog.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(commentService *services.CommentService, db *gorm.DB, log *slog.Logger) *APIHandler {
	return &APIHandler{
		commentService: commentService,
		db:             db,
		log:            log,
	}
}

// IssueComments returns the comments of an issue, newest first.
func (h *APIHandler) IssueComments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid issue id")
		return
	}

	comments, err := h.commentService.ListByIssue(id)
	if err != nil {
		if errors.Is(err, services.ErrIssueNotFound) {
			apierrors.NotFound(c, "Issue not found")
			return
		}
		h.log.Error("failed to list comments",
			slog.String("request_id", middleware.RequestID(c)),
			slog.Uint64("issue_id", id),
			slog.Any("error", err),
		)
		_ = c.Error(err)
		apierrors.InternalError(c, genericErrorMessage)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentDTOs(comments))
}

// Health reports whether the database answers.
func (h *APIHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.log.Error("health check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Issue tracker is running",
	})
}
