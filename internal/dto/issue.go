package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/services"
	"gorm.io/datatypes"
)

// IssueForm is the issue create and update form. Values stay strings so an
// invalid submission re-renders exactly as typed.
type IssueForm struct {
	ShortDescription string `form:"short_description" label:"Short description" binding:"required,max=255"`
	LongDescription  string `form:"long_description" label:"Long description" binding:"max=65535"`
	OpenDate         string `form:"open_date" label:"Open date" binding:"required,datetime=2006-01-02"`
	CloseDate        string `form:"close_date" label:"Close date" binding:"omitempty,datetime=2006-01-02"`
	Priority         string `form:"priority" label:"Priority" binding:"required"`
	Org              string `form:"org" label:"Organization" binding:"required,max=255"`
	Project          string `form:"project" label:"Project" binding:"required,max=255"`
	AssigneeID       string `form:"assigned_to" label:"Assignee" binding:"required,number"`
	KeepExistingPDF  bool   `form:"keep_existing_pdf"`
}

// NewIssueForm fills the form from a stored issue.
func NewIssueForm(issue *models.Issue) IssueForm {
	form := IssueForm{
		ShortDescription: issue.ShortDescription,
		LongDescription:  issue.LongDescription,
		OpenDate:         FormatDate(issue.OpenDate),
		Priority:         string(issue.Priority),
		Org:              issue.Org,
		Project:          issue.Project,
		AssigneeID:       strconv.FormatUint(issue.AssigneeID, 10),
		KeepExistingPDF:  issue.PDFAttachment != nil,
	}
	if issue.CloseDate != nil {
		form.CloseDate = FormatDate(*issue.CloseDate)
	}
	return form
}

// Normalize trims every text field
func (f *IssueForm) Normalize() {
	f.ShortDescription = strings.TrimSpace(f.ShortDescription)
	f.LongDescription = strings.TrimSpace(f.LongDescription)
	f.OpenDate = strings.TrimSpace(f.OpenDate)
	f.CloseDate = strings.TrimSpace(f.CloseDate)
	f.Priority = strings.TrimSpace(f.Priority)
	f.Org = strings.TrimSpace(f.Org)
	f.Project = strings.TrimSpace(f.Project)
	f.AssigneeID = strings.TrimSpace(f.AssigneeID)
}

// Validate checks the binding tags and that the close date does not precede
// the open date
func (f *IssueForm) Validate() FieldErrors {
	errs := validateStruct(f)

	if !errs.Has("priority") && !models.Priority(f.Priority).Valid() {
		names := make([]string, len(models.Priorities))
		for i, p := range models.Priorities {
			names[i] = string(p)
		}
		errs.Add("priority", "Priority must be one of "+strings.Join(names, ", "))
	}

	if !errs.Has("open_date") && !errs.Has("close_date") && f.CloseDate != "" {
		open, _ := time.Parse(dateLayout, f.OpenDate)
		closed, _ := time.Parse(dateLayout, f.CloseDate)
		if closed.Before(open) {
			errs.Add("close_date", "Close date cannot be before the open date")
		}
	}

	return orNil(errs)
}

// Input converts a valid form into service input
func (f *IssueForm) Input() services.IssueInput {
	input := services.IssueInput{
		ShortDescription: f.ShortDescription,
		LongDescription:  f.LongDescription,
		OpenDate:         parseDate(f.OpenDate),
		Priority:         models.Priority(f.Priority),
		Org:              f.Org,
		Project:          f.Project,
	}
	input.AssigneeID, _ = strconv.ParseUint(f.AssigneeID, 10, 64)
	if f.CloseDate != "" {
		closed := parseDate(f.CloseDate)
		input.CloseDate = &closed
	}
	return input
}

// FormatDate renders a date column as YYYY-MM-DD.
func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(dateLayout)
}

func parseDate(s string) datatypes.Date {
	t, _ := time.Parse(dateLayout, s)
	return datatypes.Date(t)
}
