package types

import "time"

// User is resolved either by numeric id or employee number. Rows may be
// auto-created in dev mode when an unknown identifier arrives.
type User struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement" json:"user_id"`
	EmpNo     string    `gorm:"type:varchar(64);uniqueIndex" json:"emp_no"`
	Name      string    `gorm:"type:varchar(128)" json:"name"`
	DeptName  string    `gorm:"type:varchar(128);default:Default" json:"dept_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
