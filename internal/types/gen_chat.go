package types

import "time"

// GenChat is a user-scoped general chat session outside any trade flow.
type GenChat struct {
	GenChatID int64     `gorm:"primaryKey;autoIncrement" json:"gen_chat_id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"type:varchar(255)" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (GenChat) TableName() string { return "gen_chats" }
