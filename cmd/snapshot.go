package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/records"
	"github.com/spigell/job-recommender/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the snapshot holding the applicant and job tables",
}

var snapshotBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the snapshot from the applicant and job source files",
	Run: func(_ *cobra.Command, _ []string) {
		logger, config := setup()

		if err := buildSnapshot(config, logger); err != nil {
			logger.Fatal("building snapshot", zap.Error(err))
		}
	},
}

var snapshotInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load the snapshot and report its tables",
	Run: func(_ *cobra.Command, _ []string) {
		logger, config := setup()

		tables, err := snapshot.Load(config.Snapshot)
		if err != nil {
			logger.Fatal("loading snapshot", zap.Error(err))
		}

		logger.Info("snapshot tables",
			zap.String("snapshot", config.Snapshot),
			zap.Int(records.ApplicantsTable, tables.Applicants.Len()),
			zap.Int(records.JobsTable, tables.Jobs.Len()),
			zap.Int("distinct_skills", len(tables.Jobs.Skills())),
		)
		logger.Debug("skills", zap.Strings("skills", tables.Jobs.Skills()))
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotBuildCmd, snapshotInspectCmd)

	snapshotBuildCmd.Flags().String("applicants", "", "applicant profiles source file (.csv or .xlsx)")
	snapshotBuildCmd.Flags().String("jobs", "", "job postings source file (.csv or .xlsx)")

	viper.BindPFlag("sources.applicants", snapshotBuildCmd.Flags().Lookup("applicants"))
	viper.BindPFlag("sources.jobs", snapshotBuildCmd.Flags().Lookup("jobs"))
}

// buildSnapshot reads both source files and writes them into the snapshot.
func buildSnapshot(config *Config, logger *zap.Logger) error {
	tables, err := records.ReadSources(config.Sources.Applicants, config.Sources.Jobs)
	if err != nil {
		return fmt.Errorf("reading sources: %w", err)
	}

	if err := snapshot.Save(config.Snapshot, tables); err != nil {
		return fmt.Errorf("saving snapshot %s: %w", config.Snapshot, err)
	}

	logger.Info("snapshot saved",
		zap.String("snapshot", config.Snapshot),
		zap.String("applicants_source", config.Sources.Applicants),
		zap.String("jobs_source", config.Sources.Jobs),
		zap.Int("applicants", tables.Applicants.Len()),
		zap.Int("jobs", tables.Jobs.Len()),
	)

	return nil
}
