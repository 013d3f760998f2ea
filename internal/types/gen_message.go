package types

import "time"

const (
	SenderUser  = "U"
	SenderAgent = "A"
)

// GenMessage is one turn of a general chat. Append-only.
type GenMessage struct {
	GenMessageID int64     `gorm:"primaryKey;autoIncrement" json:"gen_message_id"`
	GenChatID    int64     `gorm:"index;not null" json:"gen_chat_id"`
	SenderType   string    `gorm:"type:varchar(1);not null" json:"sender_type"`
	Content      string    `gorm:"type:text" json:"content"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (GenMessage) TableName() string { return "gen_messages" }
