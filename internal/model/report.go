package model

import "time"

// Report is a generated PDF stored in object storage.
type Report struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	RecordType  string    `json:"record_type"`
	RecordID    string    `json:"record_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}
