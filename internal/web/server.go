package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/logger"
	"github.com/spigell/job-recommender/internal/matching"
	"github.com/spigell/job-recommender/internal/records"
	"github.com/spigell/job-recommender/internal/snapshot"
)

const (
	DefaultTitle    = "Job Recommendation Engine"
	DefaultApplyURL = "https://us13.list-manage.com/contact-form?u=8ac5c4589b3005482b2dcef3b&form_id=ad7d834f290d50ab3c74ac5ed2eef1b7"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Config describes the presentation settings.
type Config struct {
	Snapshot string
	ApplyURL string
	Title    string
}

// Deps aggregates collaborators of the handlers.
type Deps struct {
	Loader  *snapshot.Loader
	Matcher *matching.Matcher
	Logger  *zap.Logger
}

type Server struct {
	cfg     Config
	loader  *snapshot.Loader
	matcher *matching.Matcher
	logger  *zap.Logger
}

// NewRouter builds the gin engine serving the form and the json api.
func NewRouter(cfg Config, deps Deps) (*gin.Engine, error) {
	if deps.Loader == nil || deps.Matcher == nil {
		return nil, errors.New("loader and matcher are required")
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.ApplyURL == "" {
		cfg.ApplyURL = DefaultApplyURL
	}

	s := &Server{
		cfg:     cfg,
		loader:  deps.Loader,
		matcher: deps.Matcher,
		logger:  logger.WithFields(deps.Logger),
	}

	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	registerValidations()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(logger.WithCommonFields(s.logger, cfg.Snapshot, "")))
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", func(c *gin.Context) {
		success(c, http.StatusOK, "System operational", nil)
	})

	r.GET("/", s.index)
	r.GET("/recommend", s.recommendPage)

	api := r.Group("/api/v1")
	{
		api.GET("/applicants", s.listApplicants)
		api.GET("/skills", s.listSkills)
		api.POST("/recommendations", s.recommendAPI)
	}

	return r, nil
}

func (s *Server) tables() (*records.Tables, error) {
	return s.loader.Load(s.cfg.Snapshot)
}

// recommendation is the outcome of a single form submission.
type recommendation struct {
	Heading string
	Matches []matching.JobMatch
	Empty   string
}

func (s *Server) recommend(form recommendForm, tables *records.Tables) (*recommendation, error) {
	var (
		q   matching.Query
		rec = &recommendation{}
	)

	switch form.Mode {
	case modeSkills:
		q = matching.BySkills{Skills: form.Skills}
		rec.Heading = "Recommended Jobs based on Skills"
		rec.Empty = "No matching jobs found based on selected skills."
	default:
		q = matching.ByApplicantID{ID: form.ApplicantID}
		rec.Heading = fmt.Sprintf("Recommended Jobs for Applicant ID %s", form.ApplicantID)
		rec.Empty = fmt.Sprintf("No matching jobs found for Applicant ID %s.", form.ApplicantID)
	}

	matches, err := s.matcher.WithTopN(form.TopN).Match(q, tables)
	if err != nil {
		return nil, err
	}

	rec.Matches = matches
	logger.WithCommonFields(s.logger, s.cfg.Snapshot, form.Mode).Info("jobs recommended",
		zap.Int("matches", len(matches)),
	)

	return rec, nil
}

// loadErrorMessage renders snapshot failures the way users see them.
func loadErrorMessage(source string, err error) string {
	if errors.Is(err, snapshot.ErrNotFound) {
		return fmt.Sprintf("File %s not found.", source)
	}
	var loadErr *snapshot.LoadError
	if errors.As(err, &loadErr) {
		err = loadErr.Err
	}
	return fmt.Sprintf("Error loading data: %v", err)
}
