// Package c2patool adapts the external c2patool binary for manifest
// signing and extraction.
package c2patool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"provamark/internal/domain"
)

const DefaultBinary = "c2patool"

type Credentials struct {
	Alg        string
	TAURL      string
	PrivateKey string
	SignCert   string
}

// CredentialsFromDir resolves the es256 key pair layout under keysDir.
func CredentialsFromDir(keysDir, taURL string) Credentials {
	return Credentials{
		Alg:        "es256",
		TAURL:      taURL,
		PrivateKey: filepath.Join(keysDir, "es256_private.key"),
		SignCert:   filepath.Join(keysDir, "es256_certs.pem"),
	}
}

type Tool struct {
	binary string
	creds  Credentials
	runner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// New resolves the binary: a configured path that does not exist falls
// back to a PATH lookup of the plain tool name.
func New(binary string, creds Credentials) *Tool {
	if binary == "" {
		binary = DefaultBinary
	} else if _, err := os.Stat(binary); err != nil {
		binary = DefaultBinary
	}
	return &Tool{binary: binary, creds: creds}
}

// WithRunner sets a custom command runner (for testing).
func (t *Tool) WithRunner(runner func(ctx context.Context, name string, args ...string) (string, string, error)) {
	t.runner = runner
}

// AttachCredentials returns a copy of the manifest with the signing
// credential references injected. The manifest builder never writes these
// fields, so a manifest cannot reach Sign already carrying them twice.
func (t *Tool) AttachCredentials(m domain.Manifest) domain.Manifest {
	m.Alg = t.creds.Alg
	m.TAURL = t.creds.TAURL
	m.PrivateKey = t.creds.PrivateKey
	m.SignCert = t.creds.SignCert
	return m
}

// Sign seals manifestPath onto targetPath, writing outputPath. Any
// non-zero exit is fatal; signing failures are not transient and are not
// retried.
func (t *Tool) Sign(ctx context.Context, targetPath, manifestPath, outputPath string) error {
	_, stderr, err := t.run(ctx, targetPath, "-m", manifestPath, "-f", "-o", outputPath)
	if err != nil {
		return fmt.Errorf("%s: %w: %s", t.binary, err, strings.TrimSpace(stderr))
	}
	return nil
}

// ReadManifest returns the manifest embedded in the file at path, or nil
// when the tool reports none.
func (t *Tool) ReadManifest(ctx context.Context, path string) (json.RawMessage, error) {
	stdout, stderr, err := t.run(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", t.binary, err, strings.TrimSpace(stderr))
	}
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return nil, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, fmt.Errorf("%s: invalid manifest output", t.binary)
	}
	return json.RawMessage(trimmed), nil
}

func (t *Tool) run(ctx context.Context, args ...string) (string, string, error) {
	if t.runner != nil {
		return t.runner(ctx, t.binary, args...)
	}
	cmd := exec.CommandContext(ctx, t.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
