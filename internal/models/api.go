package models

// AuditRequest is the body of POST /audit.
type AuditRequest struct {
	Candidate       *Candidate `json:"candidate"`
	JobRequirements string     `json:"job_requirements"`
}

// AuditData is the payload of a successful audit response.
type AuditData struct {
	Summary string            `json:"summary"`
	Result  *EvaluationResult `json:"result"`
}

// AuditMetadata summarizes a completed audit for the response envelope.
type AuditMetadata struct {
	AuditID          string `json:"audit_id"`
	CandidateName    string `json:"candidate_name"`
	Verdict          string `json:"verdict"`
	CriteriaCount    int    `json:"criteria_count"`
	MissingDataCount int    `json:"missing_data_count"`
	PolicyFlagsCount int    `json:"policy_flags_count"`
}

// AuditResponse is the full envelope of POST /audit.
type AuditResponse struct {
	Success  bool          `json:"success"`
	Data     AuditData     `json:"data"`
	Metadata AuditMetadata `json:"metadata"`
}

// MajorMatchRequest is the body of POST /major/match.
type MajorMatchRequest struct {
	Major             string   `json:"major"`
	AllowedCategories []string `json:"allowed_categories"`
}

// MajorMatchData is the payload of POST /major/match. IsAcceptable is null
// when no allowed categories were supplied.
type MajorMatchData struct {
	OriginalMajor     string   `json:"original_major"`
	MappedCategory    string   `json:"mapped_category"`
	IsAcceptable      *bool    `json:"is_acceptable"`
	AllowedCategories []string `json:"allowed_categories"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
