package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"provamark/internal/domain"

	"github.com/google/uuid"
)

type EncodeAssetRequest struct {
	Filename   string
	Image      []byte
	Attributes ManifestAttributes
}

type EncodeAssetResponse struct {
	SignedImage []byte
	WatermarkID string
	Resized     bool
}

// EncodeAsset drives the encode pipeline: save upload, downscale oversized
// images, embed the watermark, build and sign the manifest, return the
// signed bytes. Every artifact it creates is removed before Execute
// returns, success or failure.
type EncodeAsset struct {
	Codec  Codec
	Signer Signer
	Images ImageScaler
	Policy PolicyGate    // optional
	Audit  *AuditEmitter // optional

	Schema    domain.Schema
	Variant   string
	UploadDir string
	OutputDir string
	MaxPixels int64
}

func (uc *EncodeAsset) Execute(ctx context.Context, req EncodeAssetRequest) (resp *EncodeAssetResponse, err error) {
	if len(req.Image) == 0 {
		return nil, domain.ErrEmptyImage
	}
	if uc.Policy != nil {
		if err := uc.checkPolicy(ctx, req.Attributes); err != nil {
			return nil, err
		}
	}

	base := uuid.NewString()
	// Random base names are not checked for collisions; UUIDv4 makes the
	// odds negligible and the originals never share a request.
	var artifacts []string
	defer func() {
		uc.removeArtifacts(artifacts)
		uc.emitEncodeAudit(ctx, base, resp, err)
	}()

	inputPath := filepath.Join(uc.UploadDir, base+"_original"+filepath.Ext(req.Filename))
	artifacts = append(artifacts, inputPath)
	if err := os.WriteFile(inputPath, req.Image, 0o644); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	ingredientPath, err := filepath.Abs(inputPath)
	if err != nil {
		ingredientPath = inputPath
	}

	// Oversized uploads are downscaled before embedding to bound codec
	// cost. The manifest keeps referencing the original upload even though
	// the resized copy is what gets watermarked and signed.
	coverPath := inputPath
	resized := false
	if uc.Images != nil && uc.MaxPixels > 0 {
		resizedPath := filepath.Join(uc.OutputDir, base+"_resized.png")
		artifacts = append(artifacts, resizedPath)
		resized, err = uc.Images.Downscale(inputPath, resizedPath, uc.MaxPixels)
		if err != nil {
			return nil, fmt.Errorf("downscale: %w", err)
		}
		if resized {
			coverPath = resizedPath
		}
	}

	watermarkID := NewWatermarkID(uc.Codec.Capacity())
	watermarkedPath := filepath.Join(uc.OutputDir, base+"_watermarked.png")
	artifacts = append(artifacts, watermarkedPath)
	if err := uc.Codec.Embed(ctx, coverPath, watermarkedPath, watermarkID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCodecFailed, err)
	}

	manifest := BuildManifest(watermarkID, uc.Schema, uc.Variant, ingredientPath, req.Attributes)
	manifest = uc.Signer.AttachCredentials(manifest)
	manifestPath := filepath.Join(uc.OutputDir, base+".json")
	artifacts = append(artifacts, manifestPath)
	manifestJSON, err := json.MarshalIndent(manifest, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, manifestJSON, 0o644); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}

	signedPath := filepath.Join(uc.OutputDir, base+"_signed.png")
	artifacts = append(artifacts, signedPath)
	if err := uc.Signer.Sign(ctx, watermarkedPath, manifestPath, signedPath); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigningFailed, err)
	}

	// Read the signed output into memory so cleanup can reclaim it before
	// the response leaves this function.
	signedBytes, err := os.ReadFile(signedPath)
	if err != nil {
		return nil, fmt.Errorf("read signed output: %w", err)
	}

	return &EncodeAssetResponse{
		SignedImage: signedBytes,
		WatermarkID: watermarkID,
		Resized:     resized,
	}, nil
}

func (uc *EncodeAsset) checkPolicy(ctx context.Context, attrs ManifestAttributes) error {
	result, err := uc.Policy.Evaluate(ctx, domain.PolicyInput{
		SoftwareAgent:     attrs.SoftwareAgent,
		Title:             attrs.Title,
		Author:            attrs.Author,
		TrainingPolicy:    attrs.TrainingPolicy,
		DigitalSourceType: attrs.DigitalSourceType,
	})
	if err != nil {
		return fmt.Errorf("evaluate encode policy: %w", err)
	}
	if !result.Allow {
		if len(result.Deny) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrPolicyDenied, strings.Join(result.Deny, "; "))
		}
		return domain.ErrPolicyDenied
	}
	return nil
}

// removeArtifacts deletes every path best-effort. A failed removal is
// logged and must not stop the remaining removals or mask the request's
// primary result.
func (uc *EncodeAsset) removeArtifacts(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("cleanup %s: %v", path, err)
		}
	}
}

func (uc *EncodeAsset) emitEncodeAudit(ctx context.Context, assetID string, resp *EncodeAssetResponse, err error) {
	if uc.Audit == nil {
		return
	}
	resized := resp != nil && resp.Resized
	if auditErr := uc.Audit.EmitAssetEncoded(ctx, assetID, resized, err); auditErr != nil {
		log.Printf("audit encode %s: %v", assetID, auditErr)
	}
}
