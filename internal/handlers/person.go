package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/authz"
	"github.com/yukikurage/issue-tracker/internal/dto"
	"github.com/yukikurage/issue-tracker/internal/middleware"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/services"
	"github.com/yukikurage/issue-tracker/internal/session"
	"github.com/yukikurage/issue-tracker/internal/utils"
)

const personsPath = "/persons"

// PersonHandler serves the person directory.
type PersonHandler struct {
	personService *services.PersonService
	log           *slog.Logger
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(personService *services.PersonService, log *slog.Logger) *PersonHandler {
	return &PersonHandler{
		personService: personService,
		log:           log,
	}
}

// ListPersons renders one page of persons.
func (h *PersonHandler) ListPersons(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	persons, total, err := h.personService.List(params)
	if err != nil {
		internalError(c, h.log, "failed to list persons", err)
		return
	}

	render(c, h.log, http.StatusOK, "persons.html", gin.H{
		"Title":      "People",
		"Persons":    persons,
		"Pagination": params.Pager(total),
	})
}

// NewPerson renders an empty person form.
func (h *PersonHandler) NewPerson(c *gin.Context) {
	h.renderForm(c, http.StatusOK, dto.PersonForm{Creating: true}, nil, nil)
}

// CreatePerson adds a person.
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	form := dto.PersonForm{Creating: true}
	if errs := dto.Bind(c, &form); errs != nil {
		h.renderForm(c, http.StatusBadRequest, form, errs, nil)
		return
	}

	person, err := h.personService.Create(actor, form.Input())
	if err != nil {
		h.respondWriteError(c, form, nil, err)
		return
	}

	h.log.Info("person created", slog.Uint64("person_id", person.ID), slog.Uint64("actor_id", actor.ID))
	redirectWithFlash(c, h.log, personsPath, session.FlashSuccess, "Person added")
}

// EditPerson renders the form for a person. Admin only.
func (h *PersonHandler) EditPerson(c *gin.Context) {
	person, ok := h.loadPersonAsAdmin(c)
	if !ok {
		return
	}
	h.renderForm(c, http.StatusOK, dto.NewPersonForm(person), nil, person)
}

// UpdatePerson writes the form over a person. Admin only.
func (h *PersonHandler) UpdatePerson(c *gin.Context) {
	person, ok := h.loadPersonAsAdmin(c)
	if !ok {
		return
	}
	actor, _ := middleware.CurrentActor(c)

	var form dto.PersonForm
	if errs := dto.Bind(c, &form); errs != nil {
		h.renderForm(c, http.StatusBadRequest, form, errs, person)
		return
	}

	if _, err := h.personService.Update(actor, person.ID, form.Input()); err != nil {
		h.respondWriteError(c, form, person, err)
		return
	}

	h.log.Info("person updated", slog.Uint64("person_id", person.ID), slog.Uint64("actor_id", actor.ID))
	redirectWithFlash(c, h.log, personsPath, session.FlashSuccess, "Person updated")
}

// DeletePerson removes a person. Admin only.
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		renderError(c, h.log, http.StatusNotFound, "Person not found")
		return
	}
	actor, _ := middleware.CurrentActor(c)

	err := h.personService.Delete(actor, id)
	switch {
	case err == nil:
		h.log.Info("person deleted", slog.Uint64("person_id", id), slog.Uint64("actor_id", actor.ID))
		redirectWithFlash(c, h.log, personsPath, session.FlashSuccess, "Person deleted")
	case errors.Is(err, services.ErrCannotDeleteSelf):
		redirectWithFlash(c, h.log, personsPath, session.FlashError, "You cannot delete your own account")
	case errors.Is(err, services.ErrPersonNotFound):
		renderError(c, h.log, http.StatusNotFound, "Person not found")
	case errors.Is(err, services.ErrPermissionDenied):
		renderError(c, h.log, http.StatusForbidden, "Permission denied")
	default:
		internalError(c, h.log, "failed to delete person", err)
	}
}

func (h *PersonHandler) respondWriteError(c *gin.Context, form dto.PersonForm, person *models.Person, err error) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		h.renderForm(c, http.StatusBadRequest, form, dto.FieldErrors{"email": "This email is already registered"}, person)
	case errors.Is(err, services.ErrPermissionDenied):
		renderError(c, h.log, http.StatusForbidden, "Permission denied")
	case errors.Is(err, services.ErrPersonNotFound):
		renderError(c, h.log, http.StatusNotFound, "Person not found")
	default:
		internalError(c, h.log, "failed to save person", err)
	}
}

func (h *PersonHandler) renderForm(c *gin.Context, status int, form dto.PersonForm, errs dto.FieldErrors, person *models.Person) {
	form.Password = ""

	title, action := "New person", personsPath
	if person != nil {
		title = "Edit person"
		action = fmt.Sprintf("%s/%d", personsPath, person.ID)
	}

	render(c, h.log, status, "person_form.html", gin.H{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Errors": errs,
	})
}

func (h *PersonHandler) loadPersonAsAdmin(c *gin.Context) (*models.Person, bool) {
	actor, _ := middleware.CurrentActor(c)
	if !authz.CanAdminister(actor) {
		renderError(c, h.log, http.StatusForbidden, "Permission denied")
		return nil, false
	}

	id, ok := parseID(c, "id")
	if !ok {
		renderError(c, h.log, http.StatusNotFound, "Person not found")
		return nil, false
	}

	person, err := h.personService.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrPersonNotFound) {
			renderError(c, h.log, http.StatusNotFound, "Person not found")
			return nil, false
		}
		internalError(c, h.log, "failed to load person", err)
		return nil, false
	}
	return person, true
}
