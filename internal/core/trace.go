package core

// Source is a kind of entity consulted while resolving an attribute.
type Source string

const (
	SourceUser  Source = "user"
	SourceRole  Source = "role"
	SourceGroup Source = "group"
)

// SourceResult captures what a single source yielded during resolution.
type SourceResult struct {
	Source  Source `yaml:"source" json:"source"`
	Enabled bool   `yaml:"enabled" json:"enabled"`

	// Consulted is false for enabled sources skipped because an earlier source matched.
	Consulted bool `yaml:"consulted" json:"consulted"`

	// Bearer names the user, role or group the value was taken from.
	Bearer string `yaml:"bearer,omitempty" json:"bearer,omitempty"`
	Value  string `yaml:"value,omitempty" json:"value,omitempty"`
	Found  bool   `yaml:"found" json:"found"`
}

// ExecutionTrace explains the decision of a single execution.
type ExecutionTrace struct {
	Alias         string      `yaml:"alias" json:"alias"`
	Authenticator string      `yaml:"authenticator" json:"authenticator"`
	Requirement   Requirement `yaml:"requirement" json:"requirement"`

	ResolvedName  string         `yaml:"resolved_name,omitempty" json:"resolved_name,omitempty"`
	RequiredValue string         `yaml:"required_value,omitempty" json:"required_value,omitempty"`
	Sources       []SourceResult `yaml:"sources,omitempty" json:"sources,omitempty"`

	Allowed bool   `yaml:"allowed" json:"allowed"`
	Reason  string `yaml:"reason,omitempty" json:"reason,omitempty"`

	// NotReached is set for executions after the one that halted the flow.
	NotReached bool `yaml:"not_reached,omitempty" json:"not_reached,omitempty"`
}

// EvaluationTrace captures the detailed trace of a flow evaluation.
type EvaluationTrace struct {
	// CorrelationID is the unique identifier for the evaluation request.
	CorrelationID string `yaml:"correlation_id" json:"correlation_id"`

	User     *UserRef `yaml:"user" json:"user"`
	ClientID string   `yaml:"client_id" json:"client_id"`

	Executions []ExecutionTrace `yaml:"executions" json:"executions"`

	// FinalDecision indicates whether the flow would let the user through.
	FinalDecision bool `yaml:"final_decision" json:"final_decision"`

	// DeniedBy is the alias of the execution that halted the flow, if any.
	DeniedBy string `yaml:"denied_by,omitempty" json:"denied_by,omitempty"`
}
