package models

// Candidate is the profile submitted for an audit. Every field is optional;
// an empty value means the caller did not supply it, and the evaluator must
// record it as missing rather than guess.
type Candidate struct {
	Name            string   `json:"name,omitempty"`
	Birthdate       string   `json:"birthdate,omitempty"`
	Education       string   `json:"education,omitempty"`
	Degree          string   `json:"degree,omitempty"`
	Major           string   `json:"major,omitempty"`
	PoliticalStatus string   `json:"political_status,omitempty"`
	Location        string   `json:"location,omitempty"`
	Certificates    []string `json:"certificates,omitempty"`
	Experience      string   `json:"experience,omitempty"`
}
