package usecase

import (
	"context"
	"errors"
	"time"

	"provamark/internal/domain"
)

type AuditEmitter struct {
	Repo  AuditEventRepository
	Clock Clock
}

func NewAuditEmitter(repo AuditEventRepository, clock Clock) *AuditEmitter {
	return &AuditEmitter{Repo: repo, Clock: clock}
}

func (e *AuditEmitter) Emit(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	if e == nil || e.Repo == nil {
		return domain.AuditEvent{}, errors.New("audit repository required")
	}
	if event.EventType == "" || event.Result == "" {
		return domain.AuditEvent{}, errors.New("audit event missing required fields")
	}
	if event.Payload == nil {
		event.Payload = map[string]any{}
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = e.now().UTC()
	} else {
		event.CreatedAt = event.CreatedAt.UTC()
	}
	return e.Repo.Append(ctx, event)
}

// EmitAssetEncoded records an encode outcome. The watermark identifier is
// never part of the payload.
func (e *AuditEmitter) EmitAssetEncoded(ctx context.Context, assetID string, resized bool, opErr error) error {
	result := domain.AuditResultSuccess
	errorCode := ""
	if opErr != nil {
		result = domain.AuditResultFailure
		errorCode = opErr.Error()
	}
	_, err := e.Emit(ctx, domain.AuditEvent{
		EventType: domain.AuditEventAssetEncoded,
		TargetID:  assetID,
		Result:    result,
		ErrorCode: errorCode,
		Payload: map[string]any{
			"resized": resized,
		},
	})
	return err
}

func (e *AuditEmitter) EmitAssetDecoded(ctx context.Context, assetID string, manifestFound, watermarkFound bool) error {
	_, err := e.Emit(ctx, domain.AuditEvent{
		EventType: domain.AuditEventAssetDecoded,
		TargetID:  assetID,
		Result:    domain.AuditResultSuccess,
		Payload: map[string]any{
			"manifest_found":  manifestFound,
			"watermark_found": watermarkFound,
		},
	})
	return err
}

func (e *AuditEmitter) now() time.Time {
	if e != nil && e.Clock != nil {
		return e.Clock()
	}
	return time.Now().UTC()
}
