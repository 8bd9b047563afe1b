package records

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	ApplicantsTable = "userprofile"
	JobsTable       = "job"
)

type Applicant struct {
	ApplicantID string `json:"applicantId" mapstructure:"applicantId"`
	Skills      string `json:"skills" mapstructure:"skills"`
}

type Job struct {
	Position  string  `json:"position" mapstructure:"position"`
	Location  string  `json:"location" mapstructure:"location"`
	Skills    string  `json:"skills" mapstructure:"skills"`
	Vacancies int     `json:"vacancies" mapstructure:"vacancies"`
	MinExp    float64 `json:"minExp" mapstructure:"minExp"`
}

type Applicants struct {
	Items []*Applicant
}

type Jobs struct {
	Items []*Job

	indexOnce sync.Once
	index     []SkillSet
}

// Tables holds both read-only tables of the store.
type Tables struct {
	Applicants *Applicants
	Jobs       *Jobs
}

func NewTables(applicants []*Applicant, jobs []*Job) *Tables {
	return &Tables{
		Applicants: &Applicants{Items: applicants},
		Jobs:       &Jobs{Items: jobs},
	}
}

// CheckEncoding reports the first text value that is not valid UTF-8.
func (t *Tables) CheckEncoding() error {
	for idx, applicant := range t.Applicants.Items {
		for _, value := range []string{applicant.ApplicantID, applicant.Skills} {
			if !utf8.ValidString(value) {
				return fmt.Errorf("%s row %d: %w", ApplicantsTable, idx+1, ErrInvalidEncoding)
			}
		}
	}

	for idx, job := range t.Jobs.Items {
		for _, value := range []string{job.Position, job.Location, job.Skills} {
			if !utf8.ValidString(value) {
				return fmt.Errorf("%s row %d: %w", JobsTable, idx+1, ErrInvalidEncoding)
			}
		}
	}

	return nil
}

// SkillSet is the case-normalized set of tokens of a skills field.
type SkillSet map[string]struct{}

// ParseSkills splits a comma-joined skills field into a set.
// Tokens are trimmed and lower-cased. Blank tokens are kept, so an empty
// field is the set of a single empty skill.
func ParseSkills(s string) SkillSet {
	set := make(SkillSet)
	for _, token := range strings.Split(s, ",") {
		set[NormalizeSkill(token)] = struct{}{}
	}
	return set
}

func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s SkillSet) Has(skill string) bool {
	_, ok := s[skill]
	return ok
}

// Intersects reports whether both sets share at least one skill.
func (s SkillSet) Intersects(other SkillSet) bool {
	small, big := s, other
	if len(small) > len(big) {
		small, big = big, small
	}
	for skill := range small {
		if big.Has(skill) {
			return true
		}
	}
	return false
}

func (s SkillSet) Sorted() []string {
	skills := make([]string, 0, len(s))
	for skill := range s {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

func (a *Applicants) Len() int {
	return len(a.Items)
}

func (a *Applicants) FindByID(id string) *Applicant {
	for _, applicant := range a.Items {
		if applicant.ApplicantID == id {
			return applicant
		}
	}
	return nil
}

// IDs returns applicant identifiers in table order.
func (a *Applicants) IDs() []string {
	ids := make([]string, 0, len(a.Items))
	for _, applicant := range a.Items {
		ids = append(ids, applicant.ApplicantID)
	}
	return ids
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

// Index returns the precomputed skill set of every job, aligned with Items.
// It is built once on first use, so Items must not change afterwards.
func (j *Jobs) Index() []SkillSet {
	j.indexOnce.Do(func() {
		j.index = make([]SkillSet, 0, len(j.Items))
		for _, job := range j.Items {
			j.index = append(j.index, ParseSkills(job.Skills))
		}
	})
	return j.index
}

// Skills returns distinct non-blank normalized skills across all jobs, sorted alphabetically.
func (j *Jobs) Skills() []string {
	all := make(SkillSet)
	for _, set := range j.Index() {
		for skill := range set {
			if skill != "" {
				all[skill] = struct{}{}
			}
		}
	}
	return all.Sorted()
}
