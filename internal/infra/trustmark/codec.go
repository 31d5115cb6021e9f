// Package trustmark adapts the trustmark CLI as a watermark codec.
package trustmark

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"provamark/internal/domain"
)

const (
	DefaultBinary = "trustmark"

	foundPrefix   = "Found watermark:"
	corruptMarker = "Corrupt or missing watermark"
)

type Config struct {
	Binary    string
	ModelsDir string
	Variant   string
	Schema    domain.Schema
}

type Codec struct {
	cfg    Config
	runner func(ctx context.Context, name string, args ...string) (string, error)
}

func New(cfg Config) *Codec {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	return &Codec{cfg: cfg}
}

// WithRunner sets a custom command runner (for testing).
func (c *Codec) WithRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) {
	c.runner = runner
}

func (c *Codec) Capacity() int {
	return c.cfg.Schema.Capacity()
}

func (c *Codec) Embed(ctx context.Context, inputPath, outputPath, bits string) error {
	args := []string{
		"--models", c.cfg.ModelsDir,
		"encode",
		"-i", inputPath,
		"-o", outputPath,
		"--watermark", bits,
		"--version", c.cfg.Schema.String(),
		"--variant", c.cfg.Variant,
	}
	_, err := c.run(ctx, args...)
	return err
}

// Extract recovers the embedded bitstring. A corrupt or missing watermark
// is a negative result, not an error; only invocation failures error. The
// CLI decodes with the configured schema and rejects payloads from other
// schemas itself, so the reported schema is the configured one.
func (c *Codec) Extract(ctx context.Context, inputPath string) (domain.WatermarkResult, error) {
	args := []string{
		"--models", c.cfg.ModelsDir,
		"decode",
		"-i", inputPath,
		"--variant", c.cfg.Variant,
	}
	out, err := c.run(ctx, args...)
	if err != nil {
		return domain.WatermarkResult{}, err
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, foundPrefix) {
			return domain.WatermarkResult{
				Present: true,
				Secret:  strings.TrimSpace(strings.TrimPrefix(line, foundPrefix)),
				Schema:  c.cfg.Schema,
			}, nil
		}
		if strings.Contains(line, corruptMarker) {
			return domain.WatermarkResult{Present: false, Schema: c.cfg.Schema}, nil
		}
	}
	return domain.WatermarkResult{}, fmt.Errorf("unexpected trustmark output: %q", strings.TrimSpace(out))
}

func (c *Codec) run(ctx context.Context, args ...string) (string, error) {
	if c.runner != nil {
		return c.runner(ctx, c.cfg.Binary, args...)
	}
	cmd := exec.CommandContext(ctx, c.cfg.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", c.cfg.Binary, err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}
