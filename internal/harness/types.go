package harness

import "strings"

// restartMarker separates the two halves of a transcript around a restart.
const restartMarker = "--- restart ---"

// StepResult is what one step printed.
type StepResult struct {
	Input   string `json:"input,omitempty"`
	Restart bool   `json:"restart,omitempty"`
	Output  string `json:"output"`
	// Code is the error code of a rejected command, empty on success.
	Code string `json:"code,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect and assertion matched.
	Pass bool `json:"pass"`

	// Steps holds one entry per executed step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Transcript renders the session the way an operator would have seen it:
// each input echoed after "> ", followed by its output.
func (r *Result) Transcript() string {
	var b strings.Builder
	for _, step := range r.Steps {
		if step.Restart {
			b.WriteString(restartMarker + "\n")
			continue
		}
		b.WriteString("> " + step.Input + "\n")
		b.WriteString(step.Output)
	}
	return b.String()
}
