package models

import "strings"

type Person struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	FirstName    string `gorm:"column:fname;type:varchar(100);not null" json:"fname"`
	LastName     string `gorm:"column:lname;type:varchar(100);not null" json:"lname"`
	Mobile       string `gorm:"type:varchar(50)" json:"mobile"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:pwd_hash;type:varchar(255);not null" json:"-"`
	PasswordSalt string `gorm:"column:pwd_salt;type:varchar(64);not null" json:"-"`
	Admin        bool   `gorm:"not null;default:false" json:"admin"`
}

func (Person) TableName() string {
	return "person"
}

// FullName returns "first last", or an empty string for a nil person.
func (p *Person) FullName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
