package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Note is a freeform markdown note owned by a user.
type Note struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title           string         `gorm:"column:title" json:"title"`
	Directory       string         `gorm:"column:directory" json:"directory"`
	ParentDirectory string         `gorm:"column:parent_directory;not null" json:"parent_directory"`
	Summary         string         `gorm:"column:summary" json:"summary"`
	Content         string         `gorm:"column:content" json:"content"`
	Tags            string         `gorm:"column:tags" json:"tags"`
	Comments        datatypes.JSON `gorm:"column:comments;type:jsonb;default:'[]'" json:"comments"`
	CreatedAt       time.Time      `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
	UpdateLog       string         `gorm:"column:update_log" json:"update_log"`
	UserID          string         `gorm:"column:user_id;type:varchar(50);not null;index" json:"user_id"`
	IsPublic        bool           `gorm:"column:is_public;not null;default:false" json:"is_public"`
}

func (Note) TableName() string { return "notes" }
