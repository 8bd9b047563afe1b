package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/logger"
	"github.com/spigell/job-recommender/internal/matching"
	"github.com/spigell/job-recommender/internal/records"
)

const pageTemplate = "index.html"

type pageData struct {
	Title    string
	ApplyURL string

	Mode              string
	ApplicantIDs      []string
	Skills            []string
	SelectedApplicant string
	SelectedSkills    map[string]bool

	Heading string
	Matches []matching.JobMatch

	Warning   string
	Info      string
	Error     string
	RequestID string
}

func (s *Server) newPage(c *gin.Context, tables *records.Tables) *pageData {
	page := &pageData{
		Title:          s.cfg.Title,
		ApplyURL:       s.cfg.ApplyURL,
		Mode:           modeApplicant,
		SelectedSkills: map[string]bool{},
		RequestID:      requestID(c),
	}

	if c.Query("mode") == modeSkills {
		page.Mode = modeSkills
	}

	if tables != nil {
		page.ApplicantIDs = tables.Applicants.IDs()
		page.Skills = tables.Jobs.Skills()
	}

	return page
}

func (s *Server) index(c *gin.Context) {
	tables, err := s.tables()
	if err != nil {
		s.renderLoadError(c, err)
		return
	}

	c.HTML(http.StatusOK, pageTemplate, s.newPage(c, tables))
}

func (s *Server) recommendPage(c *gin.Context) {
	tables, err := s.tables()
	if err != nil {
		s.renderLoadError(c, err)
		return
	}

	page := s.newPage(c, tables)

	var form recommendForm
	if err := c.ShouldBindQuery(&form); err != nil {
		page.Warning = validationMessage(err)
		c.HTML(http.StatusBadRequest, pageTemplate, page)
		return
	}

	page.Mode = form.Mode
	page.SelectedApplicant = form.ApplicantID
	for _, skill := range form.Skills {
		page.SelectedSkills[records.NormalizeSkill(skill)] = true
	}

	rec, err := s.recommend(form, tables)
	switch {
	case errors.Is(err, matching.ErrApplicantNotFound):
		page.Info = fmt.Sprintf("Applicant ID %s not found.", form.ApplicantID)
		c.HTML(http.StatusOK, pageTemplate, page)
		return
	case errors.Is(err, matching.ErrNoSkills):
		page.Warning = msgSelectSkills
		c.HTML(http.StatusBadRequest, pageTemplate, page)
		return
	case err != nil:
		c.Error(err)
		page.Error = fmt.Sprintf("Error recommending jobs: %v", err)
		c.HTML(http.StatusInternalServerError, pageTemplate, page)
		return
	}

	if len(rec.Matches) == 0 {
		page.Info = rec.Empty
	} else {
		page.Heading = rec.Heading
		page.Matches = rec.Matches
	}

	c.HTML(http.StatusOK, pageTemplate, page)
}

func (s *Server) renderLoadError(c *gin.Context, err error) {
	c.Error(err)
	logger.WithCommonFields(s.logger, s.cfg.Snapshot, "").Error("loading snapshot", zap.Error(err))

	page := s.newPage(c, nil)
	page.Error = loadErrorMessage(s.cfg.Snapshot, err)
	c.HTML(http.StatusServiceUnavailable, pageTemplate, page)
}
