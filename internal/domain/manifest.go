package domain

// Assertion labels emitted by the manifest builder.
const (
	AssertionSoftBinding    = "c2pa.soft-binding"
	AssertionCreativeWork   = "stds.schema-org.CreativeWork"
	AssertionIPTCMetadata   = "stds.iptc"
	AssertionTrainingMining = "c2pa.training-mining"
	AssertionActions        = "c2pa.actions"
)

// Actions recorded in the c2pa.actions assertion.
const (
	ActionCreated     = "c2pa.created"
	ActionWatermarked = "c2pa.watermarked"
)

type Assertion struct {
	Label string         `json:"label"`
	Data  map[string]any `json:"data"`
}

// Manifest is the c2patool manifest definition. The signing fields at the
// bottom are written only by the signing adapter's AttachCredentials; the
// manifest builder never sets them.
type Manifest struct {
	ClaimGenerator  string      `json:"claim_generator"`
	Title           string      `json:"title"`
	IngredientPaths []string    `json:"ingredient_paths"`
	Assertions      []Assertion `json:"assertions"`

	Alg        string `json:"alg,omitempty"`
	TAURL      string `json:"ta_url,omitempty"`
	PrivateKey string `json:"private_key,omitempty"`
	SignCert   string `json:"sign_cert,omitempty"`
}

// HasCredentials reports whether signing credentials have been attached.
func (m Manifest) HasCredentials() bool {
	return m.Alg != "" || m.PrivateKey != "" || m.SignCert != ""
}

// Assertion returns the first assertion with the given label, or nil.
func (m Manifest) Assertion(label string) *Assertion {
	for i := range m.Assertions {
		if m.Assertions[i].Label == label {
			return &m.Assertions[i]
		}
	}
	return nil
}
