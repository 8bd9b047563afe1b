package cmd

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/logger"
	"github.com/spigell/job-recommender/internal/matching"
	"github.com/spigell/job-recommender/internal/web"
)

const (
	app = "job-recommender"

	defaultSnapshot   = "recommended_jobs.json.gz"
	defaultApplicants = "userprofile.csv"
	defaultJobs       = "job_data.csv"
	defaultListen     = ":8080"
)

type Config struct {
	Snapshot string         `mapstructure:"snapshot"`
	Sources  *SourcesConfig `mapstructure:"sources"`
	Match    *MatchConfig   `mapstructure:"match"`
	Web      *WebConfig     `mapstructure:"web"`
}

type SourcesConfig struct {
	Applicants string `mapstructure:"applicants"`
	Jobs       string `mapstructure:"jobs"`
}

type MatchConfig struct {
	TopN    int    `mapstructure:"top-n"`
	CapMode string `mapstructure:"cap-mode"`
}

type WebConfig struct {
	Listen   string `mapstructure:"listen"`
	ApplyURL string `mapstructure:"apply-url"`
	Title    string `mapstructure:"title"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-recommender matches job postings to applicant skills and serves them as a web page",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("snapshot", "JOB_RECOMMENDER_SNAPSHOT"); err != nil {
		log.Fatalf("binding JOB_RECOMMENDER_SNAPSHOT environment variable: %v", err)
	}
	if err := viper.BindEnv("web.listen", "JOB_RECOMMENDER_LISTEN"); err != nil {
		log.Fatalf("binding JOB_RECOMMENDER_LISTEN environment variable: %v", err)
	}

	viper.SetDefault("snapshot", defaultSnapshot)
	viper.SetDefault("sources.applicants", defaultApplicants)
	viper.SetDefault("sources.jobs", defaultJobs)
	viper.SetDefault("match.top-n", matching.DefaultTopN)
	viper.SetDefault("match.cap-mode", string(matching.CapPerSkill))
	viper.SetDefault("web.listen", defaultListen)
	viper.SetDefault("web.apply-url", web.DefaultApplyURL)
	viper.SetDefault("web.title", web.DefaultTitle)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-recommender.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("snapshot", "s", "", "path to the snapshot file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("snapshot", rootCmd.PersistentFlags().Lookup("snapshot"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional, defaults cover every key.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// setup builds the logger and reads the config shared by all commands.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Match == nil || config.Sources == nil || config.Web == nil {
		logger.Fatal("config is required")
	}

	config.Snapshot = strings.TrimSpace(config.Snapshot)
	if config.Snapshot == "" {
		logger.Fatal("snapshot path is required", zap.String("hint", "set the 'snapshot' key or JOB_RECOMMENDER_SNAPSHOT"))
	}

	return logger, config
}

func newMatcher(config *Config, logger *zap.Logger) (*matching.Matcher, error) {
	capMode, err := matching.ParseCapMode(config.Match.CapMode)
	if err != nil {
		return nil, err
	}

	if config.Match.TopN < 0 {
		return nil, errors.New("match.top-n must be positive")
	}

	return matching.New(matching.Options{
		TopN:    config.Match.TopN,
		CapMode: capMode,
	}, logger.With(zap.String("component", "matcher"))), nil
}
