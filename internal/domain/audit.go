package domain

import "time"

type AuditEventType string

const (
	AuditEventAssetEncoded AuditEventType = "asset.encoded"
	AuditEventAssetDecoded AuditEventType = "asset.decoded"
)

type AuditResult string

const (
	AuditResultSuccess AuditResult = "success"
	AuditResultFailure AuditResult = "failure"
)

// AuditEvent records one encode or decode operation. Payloads carry
// outcome metadata only; the embedded watermark identifier is never
// persisted outside the manifest and the pixels.
type AuditEvent struct {
	ID        string         `json:"id"`
	EventType AuditEventType `json:"event_type"`
	TargetID  string         `json:"target_id,omitempty"`
	Result    AuditResult    `json:"result"`
	ErrorCode string         `json:"error_code,omitempty"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}
