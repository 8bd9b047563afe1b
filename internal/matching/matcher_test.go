package matching

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-recommender/internal/records"
)

func positions(matches []JobMatch) []string {
	result := make([]string, 0, len(matches))
	for _, match := range matches {
		result = append(result, match.Position)
	}
	return result
}

// scenarioTables has python at rows 2 and 4 and sql at row 5.
func scenarioTables() *records.Tables {
	return records.NewTables(
		[]*records.Applicant{
			{ApplicantID: "A1", Skills: "Python, SQL"},
			{ApplicantID: "A2", Skills: "cobol"},
			{ApplicantID: "A3", Skills: ""},
		},
		[]*records.Job{
			{Position: "row1", Location: "Berlin", Skills: "java", Vacancies: 1, MinExp: 1},
			{Position: "row2", Location: "Paris", Skills: "Python", Vacancies: 2, MinExp: 2},
			{Position: "row3", Location: "Oslo", Skills: "kotlin,swift", Vacancies: 3, MinExp: 0},
			{Position: "row4", Location: "Rome", Skills: "python,django", Vacancies: 4, MinExp: 3.5},
			{Position: "row5", Location: "Riga", Skills: "sql", Vacancies: 5, MinExp: 1},
		},
	)
}

func TestMatchByApplicantID(t *testing.T) {
	t.Parallel()

	matcher := New(Options{TopN: 3}, zap.NewNop())

	matches, err := matcher.Match(ByApplicantID{ID: "A1"}, scenarioTables())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expect := []string{"row2", "row4", "row5"}
	if got := positions(matches); !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}

	want := JobMatch{Position: "row4", Location: "Rome", Skills: "python,django", Vacancies: 4, MinExp: 3.5}
	if matches[1] != want {
		t.Fatalf("expected row copied verbatim, got %+v", matches[1])
	}
}

func TestMatchByApplicantIDStopsAtTopN(t *testing.T) {
	t.Parallel()

	matcher := New(Options{TopN: 2}, nil)

	matches, err := matcher.Match(ByApplicantID{ID: "A1"}, scenarioTables())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expect := []string{"row2", "row4"}
	if got := positions(matches); !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}
}

func TestMatchByApplicantIDOutcomes(t *testing.T) {
	t.Parallel()

	matcher := New(Options{}, nil)
	tables := scenarioTables()

	_, err := matcher.Match(ByApplicantID{ID: "missing"}, tables)
	if !errors.Is(err, ErrApplicantNotFound) {
		t.Fatalf("expected ErrApplicantNotFound, got %v", err)
	}

	for _, id := range []string{"A2", "A3"} {
		matches, err := matcher.Match(ByApplicantID{ID: id}, tables)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", id, err)
		}
		if matches == nil || len(matches) != 0 {
			t.Fatalf("%s: expected an empty non-nil result, got %v", id, matches)
		}
	}
}

func TestMatchByApplicantIDOnlyIntersectingJobs(t *testing.T) {
	t.Parallel()

	tables := scenarioTables()
	matcher := New(Options{TopN: 10}, nil)

	for _, applicant := range tables.Applicants.Items {
		matches, err := matcher.Match(ByApplicantID{ID: applicant.ApplicantID}, tables)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		skills := records.ParseSkills(applicant.Skills)
		last := -1
		for _, match := range matches {
			if !skills.Intersects(records.ParseSkills(match.Skills)) {
				t.Fatalf("%s: job %s does not share a skill", applicant.ApplicantID, match.Position)
			}
			pos := -1
			for idx, job := range tables.Jobs.Items {
				if job.Position == match.Position {
					pos = idx
				}
			}
			if pos <= last {
				t.Fatalf("%s: matches are not in table order", applicant.ApplicantID)
			}
			last = pos
		}
	}
}

func TestMatchByApplicantIDBlankSkillTokens(t *testing.T) {
	t.Parallel()

	tables := records.NewTables(
		[]*records.Applicant{
			{ApplicantID: "E", Skills: ""},
			{ApplicantID: "T", Skills: "sql,"},
			{ApplicantID: "S", Skills: "sql"},
		},
		[]*records.Job{
			{Position: "empty", Skills: ""},
			{Position: "trail", Skills: "python,"},
			{Position: "java", Skills: "java"},
		},
	)
	matcher := New(Options{}, nil)

	tests := []struct {
		id     string
		expect []string
	}{
		{id: "E", expect: []string{"empty", "trail"}},
		{id: "T", expect: []string{"empty", "trail"}},
		{id: "S", expect: []string{}},
	}

	for _, tt := range tests {
		matches, err := matcher.Match(ByApplicantID{ID: tt.id}, tables)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.id, err)
		}
		if got := positions(matches); !reflect.DeepEqual(got, tt.expect) {
			t.Fatalf("%s: expected %v, got %v", tt.id, tt.expect, got)
		}
	}

	// blank query entries are skipped rather than matched against blank tokens
	if _, err := matcher.Match(BySkills{Skills: []string{""}}, tables); !errors.Is(err, ErrNoSkills) {
		t.Fatalf("expected ErrNoSkills, got %v", err)
	}
}

func TestMatchBySkills(t *testing.T) {
	t.Parallel()

	tables := records.NewTables(nil, []*records.Job{
		{Position: "j1", Skills: "java"},
		{Position: "s1", Skills: "sql"},
		{Position: "j2", Skills: "Java,Spring"},
		{Position: "js", Skills: "java,sql"},
		{Position: "s2", Skills: "postgres, SQL"},
		{Position: "go", Skills: "go"},
	})

	tests := []struct {
		name    string
		skills  []string
		capMode CapMode
		expect  []string
	}{
		{
			name:   "fewer matches than top n are not padded",
			skills: []string{"spring"},
			expect: []string{"j2"},
		},
		{
			name:   "case and whitespace insensitive",
			skills: []string{" GO "},
			expect: []string{"go"},
		},
		{
			name:   "cap is applied per skill",
			skills: []string{"java", "sql"},
			expect: []string{"j1", "j2", "js", "s1", "js", "s2"},
		},
		{
			name:    "global cap truncates the concatenation",
			skills:  []string{"java", "sql"},
			capMode: CapGlobal,
			expect:  []string{"j1", "j2", "js"},
		},
		{
			name:    "global cap keeps later skills when room is left",
			skills:  []string{"spring", "sql"},
			capMode: CapGlobal,
			expect:  []string{"j2", "s1", "js"},
		},
		{
			name:   "blank skills are skipped",
			skills: []string{"  ", "go"},
			expect: []string{"go"},
		},
		{
			name:   "unknown skill",
			skills: []string{"rust"},
			expect: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			matcher := New(Options{TopN: 3, CapMode: tt.capMode}, nil)
			matches, err := matcher.Match(BySkills{Skills: tt.skills}, tables)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := positions(matches); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestMatchBySkillsScenarios(t *testing.T) {
	t.Parallel()

	tables := records.NewTables(nil, []*records.Job{
		{Position: "java-1", Skills: "java"},
		{Position: "sql-1", Skills: "sql"},
		{Position: "java-2", Skills: "java"},
		{Position: "java-3", Skills: "java"},
		{Position: "sql-2", Skills: "sql"},
	})
	matcher := New(Options{}, nil)

	matches, err := matcher.Match(BySkills{Skills: []string{"java", "sql"}}, tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 5 {
		t.Fatalf("expected 3 + 2 matches, got %d", len(matches))
	}

	for _, query := range []string{"Python", " python ", "PYTHON"} {
		tables := records.NewTables(nil, []*records.Job{{Position: "py", Skills: "python"}})
		matches, err := matcher.Match(BySkills{Skills: []string{query}}, tables)
		if err != nil || len(matches) != 1 {
			t.Fatalf("%q: expected a single match, got %v (%v)", query, matches, err)
		}
	}
}

func TestMatchBySkillsUpperBound(t *testing.T) {
	t.Parallel()

	jobs := make([]*records.Job, 0, 20)
	for i := 0; i < 20; i++ {
		jobs = append(jobs, &records.Job{Position: "any", Skills: "a,b,c"})
	}
	tables := records.NewTables(nil, jobs)

	skills := []string{"a", "b", "c", "d"}
	for topN := 1; topN <= 4; topN++ {
		matches, err := New(Options{TopN: topN}, nil).Match(BySkills{Skills: skills}, tables)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(matches) > len(skills)*topN {
			t.Fatalf("top_n=%d: %d matches exceed k*top_n", topN, len(matches))
		}
		if len(matches) != 3*topN {
			t.Fatalf("top_n=%d: expected %d matches, got %d", topN, 3*topN, len(matches))
		}
	}
}

func TestMatchErrors(t *testing.T) {
	t.Parallel()

	matcher := New(Options{}, nil)

	if _, err := matcher.Match(BySkills{}, scenarioTables()); !errors.Is(err, ErrNoSkills) {
		t.Fatalf("expected ErrNoSkills, got %v", err)
	}
	if _, err := matcher.Match(BySkills{Skills: []string{" "}}, scenarioTables()); !errors.Is(err, ErrNoSkills) {
		t.Fatalf("expected ErrNoSkills for blank skills, got %v", err)
	}
	if _, err := matcher.Match(ByApplicantID{ID: "A1"}, nil); err == nil {
		t.Fatalf("expected an error for missing tables")
	}
}

func TestMatchLogsQuery(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	matcher := New(Options{TopN: 3}, zap.New(core))

	if _, err := matcher.Match(ByApplicantID{ID: "A1"}, scenarioTables()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("jobs matched").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["query"] != "applicant A1" {
		t.Fatalf("unexpected query field: %v", ctx["query"])
	}
	if ctx["matches"] != int64(3) {
		t.Fatalf("unexpected matches field: %v", ctx["matches"])
	}
}

func TestParseCapMode(t *testing.T) {
	t.Parallel()

	for input, expect := range map[string]CapMode{"": CapPerSkill, "Per-Skill": CapPerSkill, " global ": CapGlobal} {
		got, err := ParseCapMode(input)
		if err != nil || got != expect {
			t.Fatalf("%q: expected %s, got %s (%v)", input, expect, got, err)
		}
	}

	if _, err := ParseCapMode("best"); err == nil {
		t.Fatalf("expected an error for unknown mode")
	}
}

func TestWithTopN(t *testing.T) {
	t.Parallel()

	matcher := New(Options{TopN: 3}, nil)
	if matcher.WithTopN(0) != matcher {
		t.Fatalf("expected the same matcher for non-positive top n")
	}

	wider := matcher.WithTopN(5)
	if wider.TopN() != 5 || matcher.TopN() != 3 {
		t.Fatalf("expected a copy with top n 5, got %d (original %d)", wider.TopN(), matcher.TopN())
	}
}
