package dto

import (
	"strconv"
	"strings"

	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/services"
)

// CommentForm is the comment create and update form
type CommentForm struct {
	IssueID      string `form:"issue_id" label:"Issue" binding:"required,number"`
	AuthorID     string `form:"author_id" label:"Author" binding:"omitempty,number"`
	ShortComment string `form:"short_comment" label:"Short comment" binding:"required,max=255"`
	LongComment  string `form:"long_comment" label:"Long comment" binding:"max=65535"`
}

// NewCommentForm fills the form from a stored comment
func NewCommentForm(comment *models.Comment) CommentForm {
	return CommentForm{
		IssueID:      strconv.FormatUint(comment.IssueID, 10),
		AuthorID:     strconv.FormatUint(comment.AuthorID, 10),
		ShortComment: comment.ShortComment,
		LongComment:  comment.LongComment,
	}
}

// Normalize trims every field
func (f *CommentForm) Normalize() {
	f.IssueID = strings.TrimSpace(f.IssueID)
	f.AuthorID = strings.TrimSpace(f.AuthorID)
	f.ShortComment = strings.TrimSpace(f.ShortComment)
	f.LongComment = strings.TrimSpace(f.LongComment)
}

// Validate checks the binding tags
func (f *CommentForm) Validate() FieldErrors {
	return orNil(validateStruct(f))
}

// Input converts a valid form into service input
func (f *CommentForm) Input() services.CommentInput {
	input := services.CommentInput{
		ShortComment: f.ShortComment,
		LongComment:  f.LongComment,
	}
	input.IssueID, _ = strconv.ParseUint(f.IssueID, 10, 64)
	input.AuthorID, _ = strconv.ParseUint(f.AuthorID, 10, 64)
	return input
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID            uint64 `json:"id"`
	ShortComment  string `json:"short_comment"`
	LongComment   string `json:"long_comment"`
	PostedDate    string `json:"posted_date"`
	CommenterName string `json:"commenter_name"`
}

// ToCommentDTO converts a comment with its author preloaded
func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:            comment.ID,
		ShortComment:  comment.ShortComment,
		LongComment:   comment.LongComment,
		PostedDate:    FormatDate(comment.PostedDate),
		CommenterName: comment.Author.FullName(),
	}
}

// ToCommentDTOs converts a slice of comments
func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	out := make([]CommentDTO, 0, len(comments))
	for _, comment := range comments {
		out = append(out, ToCommentDTO(comment))
	}
	return out
}
