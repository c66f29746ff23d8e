// Package extract turns rendered job-page text into structured JobPosting
// records via LLM extraction with strict schema validation.
package extract

// JobPosting is the structured record of one job opportunity. Immutable once
// produced; ApplicationURL and Source are always populated.
type JobPosting struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	// Salary and ApplicationDeadline are optional; empty means the page did
	// not state them.
	Salary              string `json:"salary,omitempty"`
	ApplicationDeadline string `json:"application_deadline,omitempty"`
	ApplicationURL      string `json:"application_url"`
	Source              string `json:"source"`
}
