package repository

import (
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/utils"
)

// IssueRepository defines the interface for issue data access
type IssueRepository interface {
	// Create inserts a new issue
	Create(issue *models.Issue) error

	// FindByID finds an issue by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Issue, error)

	// List retrieves a page of issues ordered by project, priority and open date
	List(params utils.PaginationParams) ([]models.Issue, int64, error)

	// ListSummaries retrieves id and short description of every issue
	ListSummaries() ([]models.Issue, error)

	// Update writes every column of an issue
	Update(issue *models.Issue) error

	// Delete removes an issue and its comments in one transaction
	Delete(id uint64) error

	// Exists reports whether an issue with the ID exists
	Exists(id uint64) (bool, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create inserts a new comment
	Create(comment *models.Comment) error

	// FindByID finds a comment by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Comment, error)

	// ListByIssue retrieves the comments of an issue, newest first, with authors
	ListByIssue(issueID uint64) ([]models.Comment, error)

	// List retrieves a page of all comments, newest first, with issue and author
	List(params utils.PaginationParams) ([]models.Comment, int64, error)

	// Update writes every column of a comment
	Update(comment *models.Comment) error

	// Delete removes a comment
	Delete(id uint64) error
}

// PersonRepository defines the interface for person data access
type PersonRepository interface {
	// Create inserts a new person
	Create(person *models.Person) error

	// FindByID finds a person by ID
	FindByID(id uint64) (*models.Person, error)

	// FindByEmail finds a person by email
	FindByEmail(email string) (*models.Person, error)

	// List retrieves a page of persons ordered by last and first name
	List(params utils.PaginationParams) ([]models.Person, int64, error)

	// ListAll retrieves every person ordered by first and last name
	ListAll() ([]models.Person, error)

	// Update writes every column of a person
	Update(person *models.Person) error

	// Delete removes a person
	Delete(id uint64) error

	// Exists reports whether a person with the ID exists
	Exists(id uint64) (bool, error)

	// Count returns the number of persons
	Count() (int64, error)
}
