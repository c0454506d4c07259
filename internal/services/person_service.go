package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/issue-tracker/internal/auth"
	"github.com/yukikurage/issue-tracker/internal/authz"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/repository"
	"github.com/yukikurage/issue-tracker/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrPersonNotFound   = errors.New("person not found")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrCannotDeleteSelf = errors.New("you cannot delete your own account")
)

// PersonService handles the person directory.
type PersonService struct {
	personRepo repository.PersonRepository
	passwords  *auth.PasswordService
	log        *slog.Logger
}

// NewPersonService creates a new PersonService.
func NewPersonService(personRepo repository.PersonRepository, passwords *auth.PasswordService, log *slog.Logger) *PersonService {
	return &PersonService{
		personRepo: personRepo,
		passwords:  passwords,
		log:        log,
	}
}

// PersonInput holds validated person form values. An empty Password on update
// keeps the current one.
type PersonInput struct {
	FirstName string
	LastName  string
	Mobile    string
	Email     string
	Password  string
	Admin     bool
}

// List returns a page of persons.
func (s *PersonService) List(params utils.PaginationParams) ([]models.Person, int64, error) {
	persons, total, err := s.personRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list persons: %w", err)
	}
	return persons, total, nil
}

// ListAll returns every person, for assignee and author choices.
func (s *PersonService) ListAll() ([]models.Person, error) {
	persons, err := s.personRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	return persons, nil
}

// Get returns a person by ID.
func (s *PersonService) Get(id uint64) (*models.Person, error) {
	person, err := s.personRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to find person: %w", err)
	}
	return person, nil
}

// Create adds a person. Any logged-in user may add persons; only an admin may
// grant the admin flag.
func (s *PersonService) Create(actor authz.Actor, input PersonInput) (*models.Person, error) {
	if input.Admin && !authz.CanAdminister(actor) {
		return nil, ErrPermissionDenied
	}

	if err := s.ensureEmailFree(input.Email, 0); err != nil {
		return nil, err
	}

	salt, hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	person := &models.Person{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Mobile:       input.Mobile,
		Email:        input.Email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Admin:        input.Admin,
	}

	if err := s.personRepo.Create(person); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return person, nil
}

// Update changes a person. Admin only.
func (s *PersonService) Update(actor authz.Actor, id uint64, input PersonInput) (*models.Person, error) {
	if !authz.CanAdminister(actor) {
		return nil, ErrPermissionDenied
	}

	person, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(input.Email, person.ID); err != nil {
		return nil, err
	}

	person.FirstName = input.FirstName
	person.LastName = input.LastName
	person.Mobile = input.Mobile
	person.Email = input.Email
	person.Admin = input.Admin

	if input.Password != "" {
		person.PasswordSalt, person.PasswordHash, err = s.hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
	}

	if err := s.personRepo.Update(person); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update person: %w", err)
	}

	return person, nil
}

// Delete removes a person. Admin only, and never the acting admin.
func (s *PersonService) Delete(actor authz.Actor, id uint64) error {
	if !authz.CanAdminister(actor) {
		return ErrPermissionDenied
	}
	if actor.ID == id {
		return ErrCannotDeleteSelf
	}

	if err := s.personRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPersonNotFound
		}
		return fmt.Errorf("failed to delete person: %w", err)
	}

	return nil
}

// EnsureAdmin creates an admin account when the directory is empty. It
// reports whether an account was created.
func (s *PersonService) EnsureAdmin(email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, nil
	}

	count, err := s.personRepo.Count()
	if err != nil {
		return false, fmt.Errorf("failed to count persons: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	salt, hash, err := s.hashPassword(password)
	if err != nil {
		return false, err
	}

	admin := &models.Person{
		FirstName:    "Admin",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Admin:        true,
	}
	if err := s.personRepo.Create(admin); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	s.log.Info("bootstrap admin created", slog.String("email", email))
	return true, nil
}

func (s *PersonService) ensureEmailFree(email string, selfID uint64) error {
	existing, err := s.personRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing.ID != selfID {
		return ErrEmailTaken
	}
	return nil
}

func (s *PersonService) hashPassword(password string) (salt, hash string, err error) {
	salt, err = utils.GenerateSalt()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err = s.passwords.Hash(password, salt)
	if err != nil {
		return "", "", err
	}
	return salt, hash, nil
}
