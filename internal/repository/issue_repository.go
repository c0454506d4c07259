package repository

import (
	"github.com/yukikurage/issue-tracker/internal/database"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const priorityOrder = "CASE priority WHEN 'High' THEN 0 WHEN 'Medium' THEN 1 ELSE 2 END"

// GormIssueRepository is a GORM implementation of IssueRepository
type GormIssueRepository struct {
	db *gorm.DB
}

// NewIssueRepository creates a new IssueRepository
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &GormIssueRepository{db: db}
}

// Create inserts a new issue
func (r *GormIssueRepository) Create(issue *models.Issue) error {
	return r.db.Omit(clause.Associations).Create(issue).Error
}

// FindByID finds an issue by ID with optional preloading
func (r *GormIssueRepository) FindByID(id uint64, preload ...string) (*models.Issue, error) {
	var issue models.Issue
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&issue, id).Error; err != nil {
		return nil, err
	}

	return &issue, nil
}

// List retrieves a page of issues with their assignees
func (r *GormIssueRepository) List(params utils.PaginationParams) ([]models.Issue, int64, error) {
	var total int64
	if err := r.db.Model(&models.Issue{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var issues []models.Issue
	err := r.db.
		Preload("Assignee").
		Order("project").
		Order(priorityOrder).
		Order("open_date").
		Order("id").
		Scopes(database.Paginate(params)).
		Find(&issues).Error
	if err != nil {
		return nil, 0, err
	}

	return issues, total, nil
}

// ListSummaries retrieves id and short description of every issue
func (r *GormIssueRepository) ListSummaries() ([]models.Issue, error) {
	var issues []models.Issue
	err := r.db.
		Select("id", "short_description", "project").
		Order("project").
		Order("short_description").
		Find(&issues).Error
	return issues, err
}

// Update writes every column of an issue
func (r *GormIssueRepository) Update(issue *models.Issue) error {
	return r.db.Omit(clause.Associations).Save(issue).Error
}

// Delete removes an issue and its comments
func (r *GormIssueRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("issue_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Issue{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Exists reports whether an issue with the ID exists
func (r *GormIssueRepository) Exists(id uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Issue{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
