package models

// Step outcomes recorded in a SagaResult.
const (
	StepOK      = "ok"
	StepBlocked = "blocked"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

// BlockingRoles is what an owning service answers for
// GET /internal/blocking-roles/{userId}.
type BlockingRoles struct {
	UserID   int64    `json:"userId"`
	Blocking bool     `json:"blocking"`
	Reasons  []string `json:"reasons"`
}

type StepResult struct {
	Step    string `json:"step"`
	Service string `json:"service"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
}

// SagaResult is the ordered record of one deletion attempt.
type SagaResult struct {
	UserID  int64        `json:"userId"`
	Deleted bool         `json:"deleted"`
	Steps   []StepResult `json:"steps"`
}

func (r *SagaResult) Record(step, service, status, detail string) {
	r.Steps = append(r.Steps, StepResult{Step: step, Service: service, Status: status, Detail: detail})
}
