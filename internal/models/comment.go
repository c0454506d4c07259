package models

import (
	"gorm.io/datatypes"
)

type Comment struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	IssueID      uint64         `gorm:"not null;index" json:"issue_id"`
	AuthorID     uint64         `gorm:"not null" json:"author_id"`
	CreatorID    uint64         `gorm:"not null;index" json:"creator_id"`
	ShortComment string         `gorm:"type:varchar(255);not null" json:"short_comment"`
	LongComment  string         `gorm:"type:text" json:"long_comment"`
	PostedDate   datatypes.Date `gorm:"not null" json:"posted_date"`

	// Relations
	Issue  *Issue  `gorm:"foreignKey:IssueID" json:"issue,omitempty"`
	Author *Person `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Comment) TableName() string {
	return "comment"
}
