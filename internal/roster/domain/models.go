// Package domain holds roster reference models. Students and groups are
// owned by the center's user management; billing only reads them and relies
// on their foreign keys for integrity.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Student is a learner enrolled at an education center.
type Student struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CenterID  snowflake.ID `gorm:"not null;index" json:"center_id"`
	FullName  string       `gorm:"type:text;not null" json:"full_name"`
	Phone     *string      `gorm:"type:text" json:"phone,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Student) TableName() string { return "students" }

// Group is a study group a student attends, e.g. "Math B2 evening".
type Group struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CenterID  snowflake.ID `gorm:"not null;index" json:"center_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Subject   *string      `gorm:"type:text" json:"subject,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Group) TableName() string { return "study_groups" }
