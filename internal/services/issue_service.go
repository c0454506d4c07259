package services

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"

	"github.com/yukikurage/issue-tracker/internal/authz"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/repository"
	"github.com/yukikurage/issue-tracker/internal/storage"
	"github.com/yukikurage/issue-tracker/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrIssueNotFound        = errors.New("issue not found")
	ErrAssigneeNotFound     = errors.New("assigned person does not exist")
	ErrNoAttachment         = errors.New("issue has no attachment")
	ErrAttachmentNotRemoved = errors.New("issue deleted but its attachment could not be removed")
)

// IssueService handles issue business logic
type IssueService struct {
	issueRepo  repository.IssueRepository
	personRepo repository.PersonRepository
	store      *storage.AttachmentStore
	log        *slog.Logger
}

// NewIssueService creates a new IssueService
func NewIssueService(issueRepo repository.IssueRepository, personRepo repository.PersonRepository, store *storage.AttachmentStore, log *slog.Logger) *IssueService {
	return &IssueService{
		issueRepo:  issueRepo,
		personRepo: personRepo,
		store:      store,
		log:        log,
	}
}

// IssueInput holds validated issue form values
type IssueInput struct {
	ShortDescription string
	LongDescription  string
	OpenDate         datatypes.Date
	CloseDate        *datatypes.Date
	Priority         models.Priority
	Org              string
	Project          string
	AssigneeID       uint64
}

// AttachmentChange describes what an update does with the attachment
type AttachmentChange struct {
	Upload       *multipart.FileHeader
	KeepExisting bool
}

// List returns a page of issues with their assignees
func (s *IssueService) List(params utils.PaginationParams) ([]models.Issue, int64, error) {
	issues, total, err := s.issueRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}
	return issues, total, nil
}

// ListSummaries returns id and short description of every issue
func (s *IssueService) ListSummaries() ([]models.Issue, error) {
	issues, err := s.issueRepo.ListSummaries()
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	return issues, nil
}

// Get returns an issue with its assignee and creator
func (s *IssueService) Get(id uint64) (*models.Issue, error) {
	issue, err := s.issueRepo.FindByID(id, "Assignee", "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}
	return issue, nil
}

// Create adds an issue owned by the actor, saving upload first when present
func (s *IssueService) Create(actor authz.Actor, input IssueInput, upload *multipart.FileHeader) (*models.Issue, error) {
	if err := s.ensureAssignee(input.AssigneeID); err != nil {
		return nil, err
	}

	issue := &models.Issue{CreatorID: actor.ID}
	input.apply(issue)

	if upload != nil {
		recorded, err := s.store.Save(upload)
		if err != nil {
			return nil, err
		}
		issue.PDFAttachment = &recorded
	}

	if err := s.issueRepo.Create(issue); err != nil {
		s.discard(issue.PDFAttachment)
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	return issue, nil
}

// Update changes an issue when the actor may modify it
func (s *IssueService) Update(actor authz.Actor, id uint64, input IssueInput, change AttachmentChange) (*models.Issue, error) {
	issue, err := s.findForModify(actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.ensureAssignee(input.AssigneeID); err != nil {
		return nil, err
	}

	if change.Upload != nil {
		if err := s.store.Validate(change.Upload); err != nil {
			return nil, err
		}
	}

	previous := issue.PDFAttachment
	input.apply(issue)

	var saved *string
	switch {
	case change.Upload != nil:
		recorded, err := s.store.Save(change.Upload)
		if err != nil {
			return nil, err
		}
		saved = &recorded
		issue.PDFAttachment = saved
	case !change.KeepExisting:
		issue.PDFAttachment = nil
	}

	if err := s.issueRepo.Update(issue); err != nil {
		s.discard(saved)
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}

	if previous != nil && (issue.PDFAttachment == nil || *issue.PDFAttachment != *previous) {
		s.discard(previous)
	}

	return issue, nil
}

// Delete removes an issue, its comments and its attachment. A leftover file
// is reported with ErrAttachmentNotRemoved after the rows are gone.
func (s *IssueService) Delete(actor authz.Actor, id uint64) error {
	issue, err := s.findForModify(actor, id)
	if err != nil {
		return err
	}

	if err := s.issueRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIssueNotFound
		}
		return fmt.Errorf("failed to delete issue: %w", err)
	}

	if recorded := issue.AttachmentPath(); recorded != "" {
		if err := s.store.Remove(recorded); err != nil {
			s.log.Warn("attachment not removed",
				slog.Uint64("issue_id", id),
				slog.String("path", recorded),
				slog.Any("error", err),
			)
			return ErrAttachmentNotRemoved
		}
	}

	return nil
}

// ValidateAttachment checks an upload without storing it
func (s *IssueService) ValidateAttachment(upload *multipart.FileHeader) error {
	return s.store.Validate(upload)
}

// AttachmentFile resolves the on-disk path of an issue's attachment
func (s *IssueService) AttachmentFile(id uint64) (*models.Issue, string, error) {
	issue, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}
	recorded := issue.AttachmentPath()
	if recorded == "" {
		return nil, "", ErrNoAttachment
	}

	path, err := s.store.Path(recorded)
	if err != nil {
		return nil, "", err
	}
	return issue, path, nil
}

func (s *IssueService) findForModify(actor authz.Actor, id uint64) (*models.Issue, error) {
	issue, err := s.issueRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}

	if !authz.CanModify(actor, issue.CreatorID) {
		return nil, ErrPermissionDenied
	}
	return issue, nil
}

func (s *IssueService) ensureAssignee(id uint64) error {
	exists, err := s.personRepo.Exists(id)
	if err != nil {
		return fmt.Errorf("failed to check assignee: %w", err)
	}
	if !exists {
		return ErrAssigneeNotFound
	}
	return nil
}

func (s *IssueService) discard(recorded *string) {
	if recorded == nil {
		return
	}
	if err := s.store.Remove(*recorded); err != nil {
		s.log.Warn("attachment not removed", slog.String("path", *recorded), slog.Any("error", err))
	}
}

func (in IssueInput) apply(issue *models.Issue) {
	issue.ShortDescription = in.ShortDescription
	issue.LongDescription = in.LongDescription
	issue.OpenDate = in.OpenDate
	issue.CloseDate = in.CloseDate
	issue.Priority = in.Priority
	issue.Org = in.Org
	issue.Project = in.Project
	issue.AssigneeID = in.AssigneeID
}
