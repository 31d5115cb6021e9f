package usecase

import (
	"context"
	"encoding/json"
	"time"

	"provamark/internal/domain"
)

// Codec is the watermark embedding/extraction capability. Capacity is the
// payload bit length the active model/schema combination carries.
type Codec interface {
	Capacity() int
	Embed(ctx context.Context, inputPath, outputPath, bits string) error
	Extract(ctx context.Context, inputPath string) (domain.WatermarkResult, error)
}

// Signer seals a manifest onto a target file through the external signing
// tool. AttachCredentials injects the algorithm, timestamp-authority URL
// and key/certificate references; it is the only writer of those fields.
type Signer interface {
	AttachCredentials(m domain.Manifest) domain.Manifest
	Sign(ctx context.Context, targetPath, manifestPath, outputPath string) error
}

// ManifestReader extracts an embedded manifest from a signed file. A nil
// result with a nil error means the file carries no manifest.
type ManifestReader interface {
	ReadManifest(ctx context.Context, path string) (json.RawMessage, error)
}

// ImageScaler downscales an image when its pixel count exceeds maxPixels,
// reporting whether a resized copy was written to outputPath.
type ImageScaler interface {
	Downscale(inputPath, outputPath string, maxPixels int64) (bool, error)
}

type PolicyGate interface {
	Evaluate(ctx context.Context, input domain.PolicyInput) (domain.PolicyResult, error)
}

type AuditEventRepository interface {
	Append(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error)
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}

type Clock func() time.Time
