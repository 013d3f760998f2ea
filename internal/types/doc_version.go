package types

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// DocVersion is an append-only snapshot of a document's editor content.
// Content is a structured blob holding at least "html" and optionally "title".
type DocVersion struct {
	VersionID int64          `gorm:"primaryKey;autoIncrement" json:"version_id"`
	DocID     int64          `gorm:"index;not null" json:"doc_id"`
	Content   datatypes.JSON `gorm:"type:jsonb" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

func (DocVersion) TableName() string { return "doc_versions" }

// HTML extracts the html body from the content blob, empty when absent.
func (v *DocVersion) HTML() string {
	var body struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(v.Content, &body); err != nil {
		return ""
	}
	return body.HTML
}

// Title extracts the optional title from the content blob.
func (v *DocVersion) Title() string {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(v.Content, &body); err != nil {
		return ""
	}
	return body.Title
}
