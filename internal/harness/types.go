package harness

import "github.com/bryanerjunyet/GuitarHero-Game/internal/ir"

// TraceStep is one applied event in a scenario trace.
type TraceStep struct {
	Seq   int64    `json:"seq"`
	Event ir.Event `json:"-"`
	State ir.State `json:"state"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation and invariant holds.
	Pass bool `json:"pass"`

	// Trace contains every applied event and the state after it.
	Trace []TraceStep `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the state after the last event.
	Final ir.State `json:"final"`

	// Fingerprint is ir.StateFingerprint(Final).
	Fingerprint string `json:"fingerprint"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceStep{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
