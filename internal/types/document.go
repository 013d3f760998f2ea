package types

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DocModeManual = "manual"
	DocModeUpload = "upload"

	UploadStatusNone       = "none"
	UploadStatusUploading  = "uploading"
	UploadStatusProcessing = "processing"
	UploadStatusReady      = "ready"
	UploadStatusError      = "error"
)

// DocTypes lists the workflow steps in order.
var DocTypes = []string{"offer", "pi", "contract", "ci", "pl"}

// DocTypeDisplay maps a doc_type to the label shown to the agent.
var DocTypeDisplay = map[string]string{
	"offer":    "Offer Sheet",
	"pi":       "Proforma Invoice",
	"contract": "Sales Contract",
	"ci":       "Commercial Invoice",
	"pl":       "Packing List",
}

// Document is one workflow step under a TradeFlow. One per
// (trade_id, doc_type) by convention. upload_status only moves forward,
// except error which is terminal for the attempt.
type Document struct {
	DocID            int64          `gorm:"primaryKey;autoIncrement" json:"doc_id"`
	TradeID          int64          `gorm:"index;not null" json:"trade_id"`
	DocType          string         `gorm:"type:varchar(16);not null" json:"doc_type"`
	DocMode          string         `gorm:"type:varchar(16);default:manual" json:"doc_mode"`
	RawObjectKey     string         `gorm:"type:varchar(512)" json:"raw_object_key"`
	OriginalFilename string         `gorm:"type:varchar(255)" json:"original_filename"`
	FileSize         int64          `json:"file_size"`
	MimeType         string         `gorm:"type:varchar(128)" json:"mime_type"`
	UploadStatus     string         `gorm:"type:varchar(16);default:none" json:"upload_status"`
	ErrorMsg         string         `gorm:"type:text" json:"error_msg"`
	VectorPointIDs   datatypes.JSON `gorm:"type:jsonb" json:"vector_point_ids"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Document) TableName() string { return "documents" }
