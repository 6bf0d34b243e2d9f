package models

// Verdict literals returned by the audit model. Kept as the Chinese strings
// the model is instructed to emit: 通过 (pass), 未通过 (fail), 待核验
// (pending manual review).
const (
	VerdictPass    = "通过"
	VerdictFail    = "未通过"
	VerdictPending = "待核验"
)

// Match values for a single criterion.
const (
	MatchYes     = "Yes"
	MatchNo      = "No"
	MatchUnknown = "Unknown"
)

// UnknownValue is the sentinel for derived fields that could not be computed.
const UnknownValue = "未知"

// AgeCutoff is the age boundary the model extracted from the job text.
// Op is "on_or_after" or "on_or_before"; Date is an ISO date.
type AgeCutoff struct {
	Op   string `json:"op"`
	Date string `json:"date"`
}

// DerivedFields carries the deterministic values computed alongside the model
// call. CandidateAge and NormalizedMajor are always present in a final result
// (falling back to 未知); AgeCutoff is populated only by the model.
type DerivedFields struct {
	CandidateAge    string     `json:"candidate_age"`
	AgeCutoff       *AgeCutoff `json:"age_cutoff,omitempty"`
	NormalizedMajor string     `json:"normalized_major"`
}

// Criterion is one requirement-vs-evidence comparison produced by the model.
type Criterion struct {
	Name              string `json:"name"`
	JobRequirement    string `json:"job_requirement"`
	CandidateEvidence string `json:"candidate_evidence"`
	Match             string `json:"match"`
	Rationale         string `json:"rationale"`
}

// EvaluationResult is the structured audit record for one request. It is
// built fresh per request and never persisted.
type EvaluationResult struct {
	Verdict       string        `json:"verdict"`
	DerivedFields DerivedFields `json:"derived_fields"`
	Criteria      []Criterion   `json:"criteria"`
	MissingData   []string      `json:"missing_data"`
	PolicyFlags   []string      `json:"policy_flags"`
}
