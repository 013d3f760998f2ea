package types

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DocRoleUser  = "user"
	DocRoleAgent = "agent"
)

// DocMessage is one turn of a per-document conversation. Append-only;
// created_at ordering is authoritative.
type DocMessage struct {
	MessageID int64          `gorm:"primaryKey;autoIncrement" json:"message_id"`
	DocID     int64          `gorm:"index;not null" json:"doc_id"`
	Role      string         `gorm:"type:varchar(8);not null" json:"role"`
	Content   string         `gorm:"type:text" json:"content"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (DocMessage) TableName() string { return "doc_messages" }
