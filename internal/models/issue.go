package models

import (
	"gorm.io/datatypes"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the accepted priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of Priorities.
func (p Priority) Valid() bool {
	for _, candidate := range Priorities {
		if p == candidate {
			return true
		}
	}
	return false
}

type Issue struct {
	ID               uint64          `gorm:"primarykey" json:"id"`
	ShortDescription string          `gorm:"type:varchar(255);not null" json:"short_description"`
	LongDescription  string          `gorm:"type:text" json:"long_description"`
	OpenDate         datatypes.Date  `gorm:"not null" json:"open_date"`
	CloseDate        *datatypes.Date `json:"close_date"`
	Priority         Priority        `gorm:"type:varchar(10);not null" json:"priority"`
	Org              string          `gorm:"type:varchar(255);not null" json:"org"`
	Project          string          `gorm:"type:varchar(255);not null" json:"project"`
	AssigneeID       uint64          `gorm:"not null;index" json:"assignee_id"`
	CreatorID        uint64          `gorm:"not null;index" json:"creator_id"`
	PDFAttachment    *string         `gorm:"column:pdf_attachment;type:varchar(255)" json:"pdf_attachment"`

	// Relations
	Assignee *Person `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Creator  *Person `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

func (Issue) TableName() string {
	return "issue"
}

// AttachmentPath returns the recorded attachment path or "".
func (i *Issue) AttachmentPath() string {
	if i.PDFAttachment == nil {
		return ""
	}
	return *i.PDFAttachment
}
