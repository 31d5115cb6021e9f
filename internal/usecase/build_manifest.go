package usecase

import (
	"path/filepath"
	"strconv"
	"strings"

	"provamark/internal/domain"
)

const (
	defaultClaimGenerator = "Provamark"
	defaultAuthorName     = "Anonymous"
	defaultConstraintInfo = "Contact asset creator for details."

	softBindingAlgPrefix    = "com.adobe.trustmark."
	digitalSourceTypePrefix = "http://cv.iptc.org/newscodes/digitalsourcetype/"
)

// ManifestAttributes are the caller-supplied optional fields. Empty means
// absent; malformed or unrecognized values degrade by omission, never by
// error, so metadata problems cannot block the encode pipeline.
type ManifestAttributes struct {
	SoftwareAgent     string
	Title             string
	Author            string
	Description       string
	CreativeWorkURL   string
	TrainingPolicy    string
	ConstraintInfo    string
	DigitalSourceType string
}

// BuildManifest assembles the provenance manifest binding watermarkID to
// the asset at ingredientPath. Pure: no filesystem access, no errors.
func BuildManifest(watermarkID string, schema domain.Schema, variant, ingredientPath string, attrs ManifestAttributes) domain.Manifest {
	claimGenerator := attrs.SoftwareAgent
	if claimGenerator == "" {
		claimGenerator = defaultClaimGenerator
	}
	title := attrs.Title
	if title == "" {
		title = filepath.Base(ingredientPath)
	}

	manifest := domain.Manifest{
		ClaimGenerator:  claimGenerator,
		Title:           title,
		IngredientPaths: []string{ingredientPath},
	}

	assertions := []domain.Assertion{
		buildSoftBinding(softBindingAlgPrefix+variant, strconv.Itoa(int(schema))+"*"+watermarkID),
		buildCreativeWork(attrs),
	}
	if iptc, ok := buildIPTCMetadata(attrs); ok {
		assertions = append(assertions, iptc)
	}
	if training, ok := buildTrainingMining(attrs); ok {
		assertions = append(assertions, training)
	}
	assertions = append(assertions, buildActions(claimGenerator, attrs))

	manifest.Assertions = assertions
	return manifest
}

func buildSoftBinding(alg, value string) domain.Assertion {
	return domain.Assertion{
		Label: domain.AssertionSoftBinding,
		Data: map[string]any{
			"alg": alg,
			"blocks": []any{
				map[string]any{
					"scope": map[string]any{},
					"value": value,
				},
			},
		},
	}
}

func buildCreativeWork(attrs ManifestAttributes) domain.Assertion {
	author := attrs.Author
	if author == "" {
		author = defaultAuthorName
	}
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "CreativeWork",
		"author": []any{
			map[string]any{"@type": "Person", "name": author},
		},
	}
	if attrs.Title != "" {
		data["name"] = attrs.Title
	}
	if attrs.Description != "" {
		data["description"] = attrs.Description
	}
	if attrs.CreativeWorkURL != "" {
		data["url"] = attrs.CreativeWorkURL
	}
	return domain.Assertion{Label: domain.AssertionCreativeWork, Data: data}
}

// buildIPTCMetadata emits descriptive metadata only when the caller
// actually supplied an author or a description; the creative-work default
// author does not count.
func buildIPTCMetadata(attrs ManifestAttributes) (domain.Assertion, bool) {
	if attrs.Author == "" && attrs.Description == "" {
		return domain.Assertion{}, false
	}
	data := map[string]any{
		"@context": map[string]any{
			"dc":           "http://purl.org/dc/elements/1.1/",
			"Iptc4xmpCore": "http://iptc.org/std/Iptc4xmpCore/1.0/xmlns/",
		},
	}
	if attrs.Author != "" {
		data["dc:creator"] = []any{attrs.Author}
	}
	if attrs.Description != "" {
		data["Iptc4xmpCore:Description"] = []any{
			map[string]any{"@language": "en-US", "@value": attrs.Description},
		}
	}
	return domain.Assertion{Label: domain.AssertionIPTCMetadata, Data: data}, true
}

// buildTrainingMining maps the training policy onto all four usage
// entries. A constrained policy attaches the justification to the
// data-mining entry only; the other three entries stay bare. Unrecognized
// policy values suppress the assertion entirely.
func buildTrainingMining(attrs ManifestAttributes) (domain.Assertion, bool) {
	policy := attrs.TrainingPolicy
	switch policy {
	case "allowed", "notAllowed", "constrained":
	default:
		return domain.Assertion{}, false
	}
	entries := map[string]any{
		"c2pa.ai_generative_training": map[string]any{"use": policy},
		"c2pa.ai_inference":           map[string]any{"use": policy},
		"c2pa.ai_training":            map[string]any{"use": policy},
		"c2pa.data_mining":            map[string]any{"use": policy},
	}
	if policy == "constrained" {
		info := attrs.ConstraintInfo
		if info == "" {
			info = defaultConstraintInfo
		}
		entries["c2pa.data_mining"] = map[string]any{
			"use":             policy,
			"constraint_info": info,
		}
	}
	return domain.Assertion{
		Label: domain.AssertionTrainingMining,
		Data:  map[string]any{"entries": entries},
	}, true
}

func buildActions(claimGenerator string, attrs ManifestAttributes) domain.Assertion {
	created := map[string]any{
		"action":        domain.ActionCreated,
		"softwareAgent": claimGenerator,
	}
	if strings.HasPrefix(attrs.DigitalSourceType, digitalSourceTypePrefix) {
		created["digitalSourceType"] = attrs.DigitalSourceType
	}
	return domain.Assertion{
		Label: domain.AssertionActions,
		Data: map[string]any{
			"actions": []any{
				created,
				map[string]any{"action": domain.ActionWatermarked},
			},
		},
	}
}
