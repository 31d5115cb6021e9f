package domain

import "fmt"

// Schema identifies the BCH error-correction scheme the watermark codec
// encodes payloads with. The integer value is the wire code recorded in
// the soft-binding assertion.
type Schema int

const (
	SchemaBCHSuper Schema = 0
	SchemaBCH5     Schema = 1
	SchemaBCH4     Schema = 2
	SchemaBCH3     Schema = 3
)

// Capacity returns the number of payload data bits the schema carries.
func (s Schema) Capacity() int {
	switch s {
	case SchemaBCHSuper:
		return 40
	case SchemaBCH5:
		return 61
	case SchemaBCH4:
		return 68
	case SchemaBCH3:
		return 75
	default:
		return 0
	}
}

func (s Schema) String() string {
	switch s {
	case SchemaBCHSuper:
		return "BCH_SUPER"
	case SchemaBCH5:
		return "BCH_5"
	case SchemaBCH4:
		return "BCH_4"
	case SchemaBCH3:
		return "BCH_3"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

func ParseSchema(name string) (Schema, error) {
	switch name {
	case "BCH_SUPER":
		return SchemaBCHSuper, nil
	case "BCH_5":
		return SchemaBCH5, nil
	case "BCH_4":
		return SchemaBCH4, nil
	case "BCH_3":
		return SchemaBCH3, nil
	default:
		return 0, fmt.Errorf("unknown watermark schema %q", name)
	}
}

// WatermarkResult is the outcome of a watermark extraction attempt.
type WatermarkResult struct {
	Present bool   `json:"present"`
	Secret  string `json:"secret"`
	Schema  Schema `json:"schema"`
}
