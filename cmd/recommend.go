package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/matching"
	"github.com/spigell/job-recommender/internal/records"
	"github.com/spigell/job-recommender/internal/snapshot"
)

const (
	PromptApplicantID = "Applicant ID"
	PromptSkills      = "Skills"
	PromptDone        = "done"
)

var modePrompt = promptui.Select{
	Label: "Select an option",
	Items: []string{PromptApplicantID, PromptSkills},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend jobs for an applicant or a set of skills",
	Long: `Recommend jobs for an applicant or a set of skills.
Without --applicant or --skill an interactive form is shown.`,
	Run: func(cmd *cobra.Command, _ []string) {
		recommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("applicant", "a", "", "applicant identifier to recommend jobs for")
	recommendCmd.Flags().StringSliceP("skill", "k", nil, "skill to recommend jobs for, may be repeated")
	recommendCmd.Flags().IntP("top-n", "n", 0, "maximum number of jobs (per skill in skills mode)")
}

func recommend(cmd *cobra.Command) {
	logger, config := setup()

	matcher, err := newMatcher(config, logger)
	if err != nil {
		logger.Fatal("creating matcher", zap.Error(err))
	}

	if topN, _ := cmd.Flags().GetInt("top-n"); topN != 0 {
		if topN < 0 {
			logger.Fatal("top-n must be positive", zap.Int("top-n", topN))
		}
		matcher = matcher.WithTopN(topN)
	}

	tables, err := snapshot.Load(config.Snapshot)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			logger.Fatal("snapshot not found",
				zap.String("snapshot", config.Snapshot),
				zap.String("hint", "run 'job-recommender snapshot build' first"),
			)
		}
		logger.Fatal("loading snapshot", zap.Error(err))
	}

	applicant, _ := cmd.Flags().GetString("applicant")
	skills, _ := cmd.Flags().GetStringSlice("skill")

	var q matching.Query
	switch {
	case applicant != "" && len(skills) != 0:
		logger.Fatal("--applicant and --skill are mutually exclusive")
	case applicant != "":
		q = matching.ByApplicantID{ID: applicant}
	case len(skills) != 0:
		q = matching.BySkills{Skills: skills}
	default:
		q, err = promptQuery(tables)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	matches, err := matcher.Match(q, tables)
	switch {
	case errors.Is(err, matching.ErrApplicantNotFound):
		logger.Info("exiting", zap.String("reason", "applicant not found"), zap.String("query", q.Describe()))
		return
	case err != nil:
		logger.Fatal("matching jobs", zap.Error(err))
	}

	if len(matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no matching jobs found"), zap.String("query", q.Describe()))
		return
	}

	logger.Info("recommended jobs", zap.String("query", q.Describe()), zap.Int("count", len(matches)))
	printMatches(os.Stdout, matches)
}

// promptQuery runs the interactive form: mode, then an applicant or a list of skills.
func promptQuery(tables *records.Tables) (matching.Query, error) {
	_, mode, err := modePrompt.Run()
	if err != nil {
		return nil, err
	}

	if mode == PromptApplicantID {
		ids := tables.Applicants.IDs()
		if len(ids) == 0 {
			return nil, errors.New("there are no applicants in the snapshot")
		}

		applicantPrompt := promptui.Select{
			Label:             "Select Applicant ID",
			Items:             ids,
			Searcher:          containsSearcher(ids),
			StartInSearchMode: len(ids) > 10,
		}
		_, id, err := applicantPrompt.Run()
		if err != nil {
			return nil, err
		}
		return matching.ByApplicantID{ID: id}, nil
	}

	available := tables.Jobs.Skills()
	var selected []string
	for {
		items := append([]string{}, available...)
		if len(selected) != 0 {
			items = append([]string{PromptDone}, items...)
		}

		skillPrompt := promptui.Select{
			Label:    fmt.Sprintf("Select Skills (selected: %s)", strings.Join(selected, ", ")),
			Items:    items,
			Searcher: containsSearcher(items),
		}
		_, skill, err := skillPrompt.Run()
		if err != nil {
			return nil, err
		}

		if skill == PromptDone {
			return matching.BySkills{Skills: selected}, nil
		}

		selected = append(selected, skill)
		available = remove(available, skill)
		if len(available) == 0 {
			return matching.BySkills{Skills: selected}, nil
		}
	}
}

func containsSearcher(items []string) func(string, int) bool {
	return func(input string, idx int) bool {
		return strings.Contains(strings.ToLower(items[idx]), strings.ToLower(strings.TrimSpace(input)))
	}
}

func remove(items []string, target string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		if item != target {
			result = append(result, item)
		}
	}
	return result
}

func printMatches(w io.Writer, matches []matching.JobMatch) {
	for _, match := range matches {
		fmt.Fprintf(w, "%s\n  Location: %s\n  Skills Required: %s\n  Vacancies: %d\n  Minimum Experience Required: %v\n\n",
			match.Position, match.Location, match.Skills, match.Vacancies, match.MinExp)
	}
}
