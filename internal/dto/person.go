package dto

import (
	"fmt"
	"strings"

	"github.com/yukikurage/issue-tracker/internal/constants"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/services"
)

// PersonForm is the person create and update form. The password is required
// only when Creating is set.
type PersonForm struct {
	FirstName string `form:"fname" label:"First name" binding:"required,max=100"`
	LastName  string `form:"lname" label:"Last name" binding:"required,max=100"`
	Mobile    string `form:"mobile" label:"Mobile" binding:"max=50"`
	Email     string `form:"email" label:"Email" binding:"required,email,max=255"`
	Password  string `form:"password" label:"Password" binding:"omitempty,max=128"`
	Admin     bool   `form:"admin"`

	Creating bool `form:"-"`
}

// NewPersonForm fills the form from a stored person. The password stays empty.
func NewPersonForm(person *models.Person) PersonForm {
	return PersonForm{
		FirstName: person.FirstName,
		LastName:  person.LastName,
		Mobile:    person.Mobile,
		Email:     person.Email,
		Admin:     person.Admin,
	}
}

// Normalize trims every field except the password
func (f *PersonForm) Normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Mobile = strings.TrimSpace(f.Mobile)
	f.Email = strings.TrimSpace(f.Email)
}

// Validate checks the binding tags and the password length
func (f *PersonForm) Validate() FieldErrors {
	errs := validateStruct(f)

	switch {
	case f.Password == "" && f.Creating:
		errs.Add("password", "Password is required")
	case f.Password != "" && len(f.Password) < constants.MinPasswordLength:
		errs.Add("password", fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	}

	return orNil(errs)
}

// Input converts a valid form into service input
func (f *PersonForm) Input() services.PersonInput {
	return services.PersonInput{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Mobile:    f.Mobile,
		Email:     f.Email,
		Password:  f.Password,
		Admin:     f.Admin,
	}
}
