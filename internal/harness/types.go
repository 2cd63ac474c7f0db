package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Op     string `json:"op"`
	Slot   string `json:"slot,omitempty"`
	Input  string `json:"input,omitempty"`  // rendered value for set steps
	Result string `json:"result,omitempty"` // rendered value for reads
	Error  string `json:"error,omitempty"`  // error code, if the step failed
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// InstanceID is the ID of the instance the steps ran against.
	InstanceID string `json:"instance_id"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State holds the explicitly assigned slots at the end of the run,
	// rendered with props.Describe. The model is included when set.
	State map[string]string `json:"state,omitempty"`

	// Dump is a rendering of the raw store, filled only when the scenario
	// failed.
	Dump string `json:"dump,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]string),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
