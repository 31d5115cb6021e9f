package domain

// PolicyInput is the document handed to the encode policy gate. It mirrors
// the caller-supplied manifest attributes so rego rules can gate on them.
type PolicyInput struct {
	SoftwareAgent     string `json:"software_agent,omitempty"`
	Title             string `json:"title,omitempty"`
	Author            string `json:"author,omitempty"`
	TrainingPolicy    string `json:"training_policy,omitempty"`
	DigitalSourceType string `json:"digital_source_type,omitempty"`
}

type PolicyResult struct {
	Allow bool     `json:"allow"`
	Deny  []string `json:"deny,omitempty"`
}
