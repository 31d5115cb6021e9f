package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"provamark/internal/domain"
)

// fakeCodec stamps the payload bits into the output file so a paired
// extract can recover them without a real model.
type fakeCodec struct {
	capacity   int
	embedErr   error
	extractErr error

	lastInput  string
	lastOutput string
	lastBits   string
}

func (f *fakeCodec) Capacity() int { return f.capacity }

func (f *fakeCodec) Embed(_ context.Context, inputPath, outputPath, bits string) error {
	f.lastInput = inputPath
	f.lastOutput = outputPath
	f.lastBits = bits
	if f.embedErr != nil {
		return f.embedErr
	}
	return os.WriteFile(outputPath, []byte("wm:"+bits), 0o644)
}

func (f *fakeCodec) Extract(_ context.Context, inputPath string) (domain.WatermarkResult, error) {
	if f.extractErr != nil {
		return domain.WatermarkResult{}, f.extractErr
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return domain.WatermarkResult{}, err
	}
	bits, ok := strings.CutPrefix(string(data), "wm:")
	if !ok {
		return domain.WatermarkResult{Present: false}, nil
	}
	return domain.WatermarkResult{Present: true, Secret: bits, Schema: domain.SchemaBCH4}, nil
}

type fakeSigner struct {
	signErr error

	signedManifest domain.Manifest
	lastTarget     string
	lastManifest   string
}

func (f *fakeSigner) AttachCredentials(m domain.Manifest) domain.Manifest {
	m.Alg = "es256"
	m.TAURL = "http://timestamp.digicert.com"
	m.PrivateKey = "keys/es256_private.key"
	m.SignCert = "keys/es256_certs.pem"
	return m
}

func (f *fakeSigner) Sign(_ context.Context, targetPath, manifestPath, outputPath string) error {
	f.lastTarget = targetPath
	f.lastManifest = manifestPath
	if f.signErr != nil {
		return f.signErr
	}
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &f.signedManifest); err != nil {
		return err
	}
	data, err := os.ReadFile(targetPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

type fakeScaler struct {
	resize bool
	err    error
}

func (f *fakeScaler) Downscale(inputPath, outputPath string, maxPixels int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if !f.resize {
		return false, nil
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(outputPath, append([]byte("resized:"), data...), 0o644)
}

type fakePolicy struct {
	result domain.PolicyResult
	err    error
}

func (f *fakePolicy) Evaluate(context.Context, domain.PolicyInput) (domain.PolicyResult, error) {
	return f.result, f.err
}

func newEncodeAsset(t *testing.T, codec *fakeCodec, signer *fakeSigner) *EncodeAsset {
	t.Helper()
	return &EncodeAsset{
		Codec:     codec,
		Signer:    signer,
		Images:    &fakeScaler{},
		Schema:    domain.SchemaBCH4,
		Variant:   "Q",
		UploadDir: t.TempDir(),
		OutputDir: t.TempDir(),
		MaxPixels: 4096 * 2160,
	}
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestEncodeAssetSuccess(t *testing.T) {
	codec := &fakeCodec{capacity: 68}
	signer := &fakeSigner{}
	uc := newEncodeAsset(t, codec, signer)

	resp, err := uc.Execute(context.Background(), EncodeAssetRequest{
		Filename: "photo.jpg",
		Image:    []byte("jpeg-bytes"),
		Attributes: ManifestAttributes{
			Author: "Jane Doe",
		},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(resp.SignedImage) == 0 {
		t.Fatal("expected signed image bytes")
	}
	if len(resp.WatermarkID) != 68 {
		t.Fatalf("expected 68-bit watermark id, got %d bits", len(resp.WatermarkID))
	}
	if resp.Resized {
		t.Fatal("did not expect a resize")
	}

	if codec.lastBits != resp.WatermarkID {
		t.Fatalf("codec embedded %q, response carries %q", codec.lastBits, resp.WatermarkID)
	}
	if signer.lastTarget != codec.lastOutput {
		t.Fatalf("signer target %q must be the watermarked file %q", signer.lastTarget, codec.lastOutput)
	}

	// The manifest handed to the signer binds the same identifier.
	binding := signer.signedManifest.Assertion(domain.AssertionSoftBinding)
	if binding == nil {
		t.Fatal("signed manifest missing soft-binding assertion")
	}
	value := binding.Data["blocks"].([]any)[0].(map[string]any)["value"].(string)
	if want := "2*" + resp.WatermarkID; value != want {
		t.Fatalf("soft-binding value %q, want %q", value, want)
	}
	if !signer.signedManifest.HasCredentials() {
		t.Fatal("signed manifest missing credentials")
	}

	// Every artifact is gone once the response is in memory.
	if names := dirEntries(t, uc.UploadDir); len(names) != 0 {
		t.Fatalf("upload dir not cleaned: %v", names)
	}
	if names := dirEntries(t, uc.OutputDir); len(names) != 0 {
		t.Fatalf("output dir not cleaned: %v", names)
	}
}

func TestEncodeAssetResized(t *testing.T) {
	codec := &fakeCodec{capacity: 40}
	signer := &fakeSigner{}
	uc := newEncodeAsset(t, codec, signer)
	uc.Images = &fakeScaler{resize: true}

	resp, err := uc.Execute(context.Background(), EncodeAssetRequest{
		Filename: "big.png",
		Image:    []byte("png-bytes"),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !resp.Resized {
		t.Fatal("expected a resize")
	}
	if !strings.HasSuffix(codec.lastInput, "_resized.png") {
		t.Fatalf("codec must embed into the resized copy, got %q", codec.lastInput)
	}
	// The manifest still points at the original upload.
	if len(signer.signedManifest.IngredientPaths) != 1 ||
		!strings.HasSuffix(signer.signedManifest.IngredientPaths[0], "_original.png") {
		t.Fatalf("unexpected ingredient paths %v", signer.signedManifest.IngredientPaths)
	}
	if names := dirEntries(t, uc.OutputDir); len(names) != 0 {
		t.Fatalf("output dir not cleaned: %v", names)
	}
}

func TestEncodeAssetEmptyImage(t *testing.T) {
	uc := newEncodeAsset(t, &fakeCodec{capacity: 68}, &fakeSigner{})

	_, err := uc.Execute(context.Background(), EncodeAssetRequest{Filename: "photo.png"})
	if !errors.Is(err, domain.ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if names := dirEntries(t, uc.UploadDir); len(names) != 0 {
		t.Fatalf("empty upload must create nothing, found %v", names)
	}
}

func TestEncodeAssetEmbedFailureCleansUp(t *testing.T) {
	codec := &fakeCodec{capacity: 68, embedErr: errors.New("model not found")}
	uc := newEncodeAsset(t, codec, &fakeSigner{})

	_, err := uc.Execute(context.Background(), EncodeAssetRequest{
		Filename: "photo.png",
		Image:    []byte("png-bytes"),
	})
	if !errors.Is(err, domain.ErrCodecFailed) {
		t.Fatalf("expected ErrCodecFailed, got %v", err)
	}
	if names := dirEntries(t, uc.UploadDir); len(names) != 0 {
		t.Fatalf("upload dir not cleaned after failure: %v", names)
	}
	if names := dirEntries(t, uc.OutputDir); len(names) != 0 {
		t.Fatalf("output dir not cleaned after failure: %v", names)
	}
}

func TestEncodeAssetSignFailureCleansUp(t *testing.T) {
	signer := &fakeSigner{signErr: errors.New("certificate expired")}
	uc := newEncodeAsset(t, &fakeCodec{capacity: 68}, signer)

	_, err := uc.Execute(context.Background(), EncodeAssetRequest{
		Filename: "photo.png",
		Image:    []byte("png-bytes"),
	})
	if !errors.Is(err, domain.ErrSigningFailed) {
		t.Fatalf("expected ErrSigningFailed, got %v", err)
	}
	if names := dirEntries(t, uc.UploadDir); len(names) != 0 {
		t.Fatalf("upload dir not cleaned after failure: %v", names)
	}
	if names := dirEntries(t, uc.OutputDir); len(names) != 0 {
		t.Fatalf("output dir not cleaned after failure: %v", names)
	}
}

func TestEncodeAssetPolicyDenied(t *testing.T) {
	uc := newEncodeAsset(t, &fakeCodec{capacity: 68}, &fakeSigner{})
	uc.Policy = &fakePolicy{result: domain.PolicyResult{Allow: false, Deny: []string{"agent not allowed"}}}

	_, err := uc.Execute(context.Background(), EncodeAssetRequest{
		Filename: "photo.png",
		Image:    []byte("png-bytes"),
	})
	if !errors.Is(err, domain.ErrPolicyDenied) {
		t.Fatalf("expected ErrPolicyDenied, got %v", err)
	}
	if !strings.Contains(err.Error(), "agent not allowed") {
		t.Fatalf("denial reason missing from %v", err)
	}
	if names := dirEntries(t, uc.UploadDir); len(names) != 0 {
		t.Fatalf("denied request must create nothing, found %v", names)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := &fakeCodec{capacity: 61}
	uc := newEncodeAsset(t, codec, &fakeSigner{})

	encResp, err := uc.Execute(context.Background(), EncodeAssetRequest{
		Filename: "photo.png",
		Image:    []byte("png-bytes"),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dec := &DecodeAsset{
		Codec:     codec,
		Manifests: fakeManifestReader{manifest: json.RawMessage(`{"title":"photo.png"}`)},
		UploadDir: t.TempDir(),
	}
	decResp, err := dec.Execute(context.Background(), DecodeAssetRequest{
		Filename: "signed.png",
		Image:    encResp.SignedImage,
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decResp.Watermark == nil || !decResp.Watermark.Present {
		t.Fatal("expected the embedded watermark to come back")
	}
	if decResp.Watermark.Secret != encResp.WatermarkID {
		t.Fatalf("round-trip mismatch: embedded %q, extracted %q", encResp.WatermarkID, decResp.Watermark.Secret)
	}
}
