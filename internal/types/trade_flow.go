package types

import "time"

const (
	TradeStatusInProgress = "in_progress"
	TradeStatusCompleted  = "completed"
)

// TradeFlow is the parent of one document per workflow step
// (offer, pi, contract, ci, pl). Deleting it cascades to documents,
// their chunk vectors, and their session memories.
type TradeFlow struct {
	TradeID   int64     `gorm:"primaryKey;autoIncrement" json:"trade_id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"type:varchar(255)" json:"title"`
	Status    string    `gorm:"type:varchar(32);default:in_progress" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TradeFlow) TableName() string { return "trade_flows" }
