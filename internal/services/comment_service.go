package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yukikurage/issue-tracker/internal/authz"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/repository"
	"github.com/yukikurage/issue-tracker/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound      = errors.New("comment not found")
	ErrCommentIssueNotFound = errors.New("issue for comment does not exist")
	ErrAuthorNotFound       = errors.New("author does not exist")
)

// CommentService handles comment business logic
type CommentService struct {
	commentRepo repository.CommentRepository
	issueRepo   repository.IssueRepository
	personRepo  repository.PersonRepository
	log         *slog.Logger
	now         func() time.Time
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository, issueRepo repository.IssueRepository, personRepo repository.PersonRepository, log *slog.Logger) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		issueRepo:   issueRepo,
		personRepo:  personRepo,
		log:         log,
		now:         time.Now,
	}
}

// SetClock replaces the time source used for posted dates
func (s *CommentService) SetClock(now func() time.Time) {
	s.now = now
}

// CommentInput holds validated comment form values. A zero AuthorID means the
// actor is the author.
type CommentInput struct {
	IssueID      uint64
	AuthorID     uint64
	ShortComment string
	LongComment  string
}

// ListByIssue returns the comments of an existing issue, newest first
func (s *CommentService) ListByIssue(issueID uint64) ([]models.Comment, error) {
	exists, err := s.issueRepo.Exists(issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to check issue: %w", err)
	}
	if !exists {
		return nil, ErrIssueNotFound
	}

	comments, err := s.commentRepo.ListByIssue(issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// List returns a page of all comments
func (s *CommentService) List(params utils.PaginationParams) ([]models.Comment, int64, error) {
	comments, total, err := s.commentRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}

// Get returns a comment with its issue and author
func (s *CommentService) Get(id uint64) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(id, "Issue", "Author")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

// Create posts a comment dated today and created by the actor
func (s *CommentService) Create(actor authz.Actor, input CommentInput) (*models.Comment, error) {
	authorID, err := s.resolveReferences(actor, input)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		IssueID:      input.IssueID,
		AuthorID:     authorID,
		CreatorID:    actor.ID,
		ShortComment: input.ShortComment,
		LongComment:  input.LongComment,
		PostedDate:   today(s.now()),
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// Update changes a comment when the actor may modify it. The posted date
// moves to today.
func (s *CommentService) Update(actor authz.Actor, id uint64, input CommentInput) (*models.Comment, error) {
	comment, err := s.findForModify(actor, id)
	if err != nil {
		return nil, err
	}

	authorID, err := s.resolveReferences(actor, input)
	if err != nil {
		return nil, err
	}

	comment.IssueID = input.IssueID
	comment.AuthorID = authorID
	comment.ShortComment = input.ShortComment
	comment.LongComment = input.LongComment
	comment.PostedDate = today(s.now())

	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment when the actor may modify it
func (s *CommentService) Delete(actor authz.Actor, id uint64) (*models.Comment, error) {
	comment, err := s.findForModify(actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.commentRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to delete comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) findForModify(actor authz.Actor, id uint64) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	if !authz.CanModify(actor, comment.CreatorID) {
		return nil, ErrPermissionDenied
	}
	return comment, nil
}

func (s *CommentService) resolveReferences(actor authz.Actor, input CommentInput) (uint64, error) {
	exists, err := s.issueRepo.Exists(input.IssueID)
	if err != nil {
		return 0, fmt.Errorf("failed to check issue: %w", err)
	}
	if !exists {
		return 0, ErrCommentIssueNotFound
	}

	if input.AuthorID == 0 {
		return actor.ID, nil
	}

	exists, err = s.personRepo.Exists(input.AuthorID)
	if err != nil {
		return 0, fmt.Errorf("failed to check author: %w", err)
	}
	if !exists {
		return 0, ErrAuthorNotFound
	}
	return input.AuthorID, nil
}
