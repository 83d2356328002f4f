package model

import (
	"encoding/json"
	"time"
)

// Packet processing status values stored in the database.
const (
	PacketStatusProcessed = "processed"
	PacketStatusFailed    = "failed"
)

// Packet represents one uploaded claims bundle and its processing outcome.
// This is a pure domain model with no database-specific dependencies or tags.
type Packet struct {
	ID             string          `json:"id"`
	Filename       string          `json:"filename"`
	StoragePath    string          `json:"storage_path"`
	Size           int64           `json:"size"`
	ContentType    string          `json:"content_type"`
	Status         string          `json:"status"`
	TotalDocuments int             `json:"total_documents"`
	Result         json.RawMessage `json:"result,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ValidationResult is the cross-document consistency verdict for a packet.
// Flags are ordered and human-readable; an empty slice means Approved.
type ValidationResult struct {
	Status string   `json:"status"`
	Flags  []string `json:"flags"`
}

// DocumentResult is one logical document in the packet result, numbered
// from 1 in page order.
type DocumentResult struct {
	Number int            `json:"number"`
	Type   string         `json:"type"`
	Data   map[string]any `json:"data"`
}

// PacketResult is the JSON contract returned to downstream claims workflows.
// Field names and ordering are fixed; consumers parse this shape directly.
type PacketResult struct {
	TotalDocuments int              `json:"total_documents"`
	Validation     ValidationResult `json:"validation"`
	Documents      []DocumentResult `json:"documents"`
}
