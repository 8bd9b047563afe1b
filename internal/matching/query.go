package matching

import "strings"

// Query selects how jobs are matched. It is either ByApplicantID or BySkills.
type Query interface {
	// Describe returns a short human readable form of the query.
	Describe() string

	query()
}

// ByApplicantID matches jobs against the declared skills of a known applicant.
type ByApplicantID struct {
	ID string
}

// BySkills matches jobs against an explicit list of skills.
// Callers must supply at least one skill.
type BySkills struct {
	Skills []string
}

func (q ByApplicantID) Describe() string { return "applicant " + q.ID }

func (q BySkills) Describe() string { return "skills " + strings.Join(q.Skills, ",") }

func (ByApplicantID) query() {}

func (BySkills) query() {}
