package check

// Condition outcome statuses
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Condition describes a pass/fail predicate attached to a check before it runs
type Condition struct {
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Info identifies the check that produced a result
type Info struct {
	Type    string                 `json:"type"`
	Name    string                 `json:"name"`
	Summary string                 `json:"summary"`
	Params  map[string]interface{} `json:"params"`
}

// ConditionResult is the evaluated outcome of one condition
type ConditionResult struct {
	Status    string `json:"Status"`
	Condition string `json:"Condition"`
	MoreInfo  string `json:"More Info"`
}

// Passed reports whether the condition held
func (c ConditionResult) Passed() bool {
	return c.Status == StatusPass
}

// Result is the structured report of one check run
type Result struct {
	Type              string            `json:"type"`
	Check             Info              `json:"check"`
	Header            string            `json:"header"`
	Value             interface{}       `json:"value"`
	ConditionsResults []ConditionResult `json:"conditions_results"`
	Display           []interface{}     `json:"display"`
}

// FirstCondition returns the first condition outcome, if any
func (r *Result) FirstCondition() (ConditionResult, bool) {
	if r == nil || len(r.ConditionsResults) == 0 {
		return ConditionResult{}, false
	}
	return r.ConditionsResults[0], true
}
