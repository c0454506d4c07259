package repository

import (
	"github.com/yukikurage/issue-tracker/internal/database"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/utils"
	"gorm.io/gorm"
)

// GormPersonRepository is a GORM implementation of PersonRepository
type GormPersonRepository struct {
	db *gorm.DB
}

// NewPersonRepository creates a new PersonRepository
func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &GormPersonRepository{db: db}
}

// Create inserts a new person
func (r *GormPersonRepository) Create(person *models.Person) error {
	return r.db.Create(person).Error
}

// FindByID finds a person by ID
func (r *GormPersonRepository) FindByID(id uint64) (*models.Person, error) {
	var person models.Person
	if err := r.db.First(&person, id).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

// FindByEmail finds a person by email
func (r *GormPersonRepository) FindByEmail(email string) (*models.Person, error) {
	var person models.Person
	if err := r.db.Where("email = ?", email).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

// List retrieves a page of persons
func (r *GormPersonRepository) List(params utils.PaginationParams) ([]models.Person, int64, error) {
	var total int64
	if err := r.db.Model(&models.Person{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var persons []models.Person
	err := r.db.
		Order("lname").
		Order("fname").
		Scopes(database.Paginate(params)).
		Find(&persons).Error
	if err != nil {
		return nil, 0, err
	}

	return persons, total, nil
}

// ListAll retrieves every person for selection lists
func (r *GormPersonRepository) ListAll() ([]models.Person, error) {
	var persons []models.Person
	err := r.db.Order("fname").Order("lname").Find(&persons).Error
	return persons, err
}

// Update writes every column of a person
func (r *GormPersonRepository) Update(person *models.Person) error {
	return r.db.Save(person).Error
}

// Delete removes a person
func (r *GormPersonRepository) Delete(id uint64) error {
	result := r.db.Delete(&models.Person{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Exists reports whether a person with the ID exists
func (r *GormPersonRepository) Exists(id uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Person{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Count returns the number of persons
func (r *GormPersonRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Person{}).Count(&count).Error
	return count, err
}
