package dto

import "github.com/google/uuid"

type CreateReportRequest struct {
	Body        string `json:"body"`
	Category    string `json:"category"`
	Fingerprint string `json:"fingerprint"`
}

type AssessRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type ActionReportRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note"`
}

// BulkActionRequest drives bulk status changes and bulk deletes. Action is
// "status" or "delete"; Status is only read for "status".
type BulkActionRequest struct {
	IDs       []uuid.UUID `json:"ids"`
	Action    string      `json:"action"`
	Status    string      `json:"status"`
	AdminNote string      `json:"admin_note"`
}
