package matching

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/records"
	"github.com/spigell/job-recommender/internal/utils"
)

const (
	// DefaultTopN is the match cap used when none is configured.
	DefaultTopN = 3

	maxLogLength = 120
)

var (
	// ErrApplicantNotFound is returned when the queried applicant is absent from the table.
	// It is an expected outcome, not a fault.
	ErrApplicantNotFound = errors.New("applicant not found")
	// ErrNoSkills is returned for a skills query without any usable skill.
	ErrNoSkills = errors.New("at least one skill is required")
)

// CapMode controls how TopN applies to a multi-skill query.
type CapMode string

const (
	// CapPerSkill caps every skill of the query independently, so a query of k
	// skills may return up to k*TopN jobs.
	CapPerSkill CapMode = "per-skill"
	// CapGlobal caps the whole result at TopN.
	CapGlobal CapMode = "global"
)

// ParseCapMode accepts the configuration spelling of a cap mode. Empty means CapPerSkill.
func ParseCapMode(s string) (CapMode, error) {
	switch mode := CapMode(strings.TrimSpace(strings.ToLower(s))); mode {
	case "":
		return CapPerSkill, nil
	case CapPerSkill, CapGlobal:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported cap mode: %s", s)
	}
}

// JobMatch is a matched job, copied verbatim from the job row.
type JobMatch struct {
	Position  string  `json:"position"`
	Location  string  `json:"location"`
	Skills    string  `json:"skills"`
	Vacancies int     `json:"vacancies"`
	MinExp    float64 `json:"minExp"`
}

func newJobMatch(job *records.Job) JobMatch {
	return JobMatch{
		Position:  job.Position,
		Location:  job.Location,
		Skills:    job.Skills,
		Vacancies: job.Vacancies,
		MinExp:    job.MinExp,
	}
}

// Options configures a Matcher.
type Options struct {
	TopN    int
	CapMode CapMode
}

// Matcher scans the job table in order and returns the first matching jobs.
type Matcher struct {
	topN    int
	capMode CapMode
	logger  *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	capMode := opts.CapMode
	if capMode == "" {
		capMode = CapPerSkill
	}

	return &Matcher{
		topN:    topN,
		capMode: capMode,
		logger:  logger,
	}
}

func (m *Matcher) TopN() int { return m.topN }

func (m *Matcher) CapMode() CapMode { return m.capMode }

// WithTopN returns a copy of the matcher with another cap. Non-positive values keep the current one.
func (m *Matcher) WithTopN(topN int) *Matcher {
	if topN <= 0 || topN == m.topN {
		return m
	}
	clone := *m
	clone.topN = topN
	return &clone
}

// Match runs q against tables. The result is never nil on success.
func (m *Matcher) Match(q Query, tables *records.Tables) ([]JobMatch, error) {
	if tables == nil || tables.Applicants == nil || tables.Jobs == nil {
		return nil, errors.New("tables are not loaded")
	}

	var (
		matches []JobMatch
		err     error
	)

	switch q := q.(type) {
	case ByApplicantID:
		matches, err = m.matchApplicant(q, tables)
	case BySkills:
		matches, err = m.matchSkills(q, tables.Jobs)
	default:
		return nil, fmt.Errorf("unsupported query type %T", q)
	}
	if err != nil {
		return nil, err
	}

	m.logger.Debug("jobs matched",
		zap.String("query", utils.TruncateForLog(q.Describe(), maxLogLength)),
		zap.Int("top_n", m.topN),
		zap.String("cap_mode", string(m.capMode)),
		zap.Int("matches", len(matches)),
	)

	return matches, nil
}

func (m *Matcher) matchApplicant(q ByApplicantID, tables *records.Tables) ([]JobMatch, error) {
	applicant := tables.Applicants.FindByID(q.ID)
	if applicant == nil {
		return nil, fmt.Errorf("%w: %s", ErrApplicantNotFound, q.ID)
	}

	skills := records.ParseSkills(applicant.Skills)
	index := tables.Jobs.Index()

	matches := make([]JobMatch, 0, m.topN)
	for idx, job := range tables.Jobs.Items {
		if !skills.Intersects(index[idx]) {
			continue
		}
		matches = append(matches, newJobMatch(job))
		if len(matches) == m.topN {
			break
		}
	}

	return matches, nil
}

func (m *Matcher) matchSkills(q BySkills, jobs *records.Jobs) ([]JobMatch, error) {
	skills := make([]string, 0, len(q.Skills))
	for _, skill := range q.Skills {
		if skill = records.NormalizeSkill(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	if len(skills) == 0 {
		return nil, ErrNoSkills
	}

	index := jobs.Index()

	matches := make([]JobMatch, 0, m.topN)
	for _, skill := range skills {
		found := 0
		for idx, job := range jobs.Items {
			if !index[idx].Has(skill) {
				continue
			}
			matches = append(matches, newJobMatch(job))
			found++
			if found == m.topN {
				break
			}
		}

		if m.capMode == CapGlobal && len(matches) >= m.topN {
			return matches[:m.topN], nil
		}
	}

	return matches, nil
}
