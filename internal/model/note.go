package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const TableNameNote = "notes"

// Note mapped from table <notes>
type Note struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id" form:"id"`
	Title     string    `gorm:"column:title;type:text;not null" json:"title" form:"title"`
	Content   string    `gorm:"column:content;type:text" json:"content" form:"content"`
	UpdatedAt time.Time `gorm:"column:updated_at;precision:3;index:idx_notes_updated_at;autoUpdateTime:false" json:"updated_at" form:"updated_at"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}

// BeforeCreate assigns a UUID when the row has none
// BeforeCreate 行没有 ID 时分配 UUID
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
