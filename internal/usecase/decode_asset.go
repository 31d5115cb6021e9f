package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"provamark/internal/domain"

	"github.com/google/uuid"
)

type DecodeAssetRequest struct {
	Filename string
	Image    []byte
}

// DecodeAssetResponse carries two independent sub-results. A nil Manifest
// with an empty ManifestErr means the file carries no manifest; the error
// strings report extraction failures without failing the request.
type DecodeAssetResponse struct {
	Manifest     json.RawMessage
	ManifestErr  string
	Watermark    *domain.WatermarkResult
	WatermarkErr string
}

// DecodeAsset runs manifest extraction and watermark extraction against
// the same upload; neither failure aborts the other.
type DecodeAsset struct {
	Codec     Codec
	Manifests ManifestReader
	Audit     *AuditEmitter // optional

	UploadDir string
}

func (uc *DecodeAsset) Execute(ctx context.Context, req DecodeAssetRequest) (*DecodeAssetResponse, error) {
	if len(req.Image) == 0 {
		return nil, domain.ErrEmptyImage
	}

	base := uuid.NewString()
	inputPath := filepath.Join(uc.UploadDir, base+"_decode"+filepath.Ext(req.Filename))
	if err := os.WriteFile(inputPath, req.Image, 0o644); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	// The decode upload is intentionally left on disk; see DESIGN.md.

	resp := &DecodeAssetResponse{}

	manifest, err := uc.Manifests.ReadManifest(ctx, inputPath)
	if err != nil {
		resp.ManifestErr = err.Error()
	} else {
		resp.Manifest = manifest
	}

	watermark, err := uc.Codec.Extract(ctx, inputPath)
	if err != nil {
		resp.WatermarkErr = err.Error()
	} else {
		resp.Watermark = &watermark
	}

	uc.emitDecodeAudit(ctx, base, resp)
	return resp, nil
}

func (uc *DecodeAsset) emitDecodeAudit(ctx context.Context, assetID string, resp *DecodeAssetResponse) {
	if uc.Audit == nil {
		return
	}
	manifestFound := len(resp.Manifest) > 0
	watermarkFound := resp.Watermark != nil && resp.Watermark.Present
	if err := uc.Audit.EmitAssetDecoded(ctx, assetID, manifestFound, watermarkFound); err != nil {
		log.Printf("audit decode %s: %v", assetID, err)
	}
}
