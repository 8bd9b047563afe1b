package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spigell/job-recommender/internal/matching"
)

type recommendationsResponse struct {
	Mode    string              `json:"mode"`
	TopN    int                 `json:"top_n"`
	Count   int                 `json:"count"`
	Matches []matching.JobMatch `json:"matches"`
}

func (s *Server) listApplicants(c *gin.Context) {
	tables, err := s.tables()
	if err != nil {
		s.apiLoadError(c, err)
		return
	}

	success(c, http.StatusOK, "Applicants retrieved", tables.Applicants.IDs())
}

func (s *Server) listSkills(c *gin.Context) {
	tables, err := s.tables()
	if err != nil {
		s.apiLoadError(c, err)
		return
	}

	success(c, http.StatusOK, "Skills retrieved", tables.Jobs.Skills())
}

func (s *Server) recommendAPI(c *gin.Context) {
	var form recommendForm
	if err := c.ShouldBindJSON(&form); err != nil {
		failure(c, http.StatusBadRequest, validationMessage(err), err.Error())
		return
	}

	tables, err := s.tables()
	if err != nil {
		s.apiLoadError(c, err)
		return
	}

	rec, err := s.recommend(form, tables)
	switch {
	case errors.Is(err, matching.ErrApplicantNotFound):
		failure(c, http.StatusNotFound, "Applicant not found", err.Error())
		return
	case errors.Is(err, matching.ErrNoSkills):
		failure(c, http.StatusBadRequest, msgSelectSkills, err.Error())
		return
	case err != nil:
		c.Error(err)
		failure(c, http.StatusInternalServerError, "Internal Server Error", nil)
		return
	}

	message := rec.Heading
	if len(rec.Matches) == 0 {
		message = rec.Empty
	}

	success(c, http.StatusOK, message, recommendationsResponse{
		Mode:    form.Mode,
		TopN:    s.matcher.WithTopN(form.TopN).TopN(),
		Count:   len(rec.Matches),
		Matches: rec.Matches,
	})
}

func (s *Server) apiLoadError(c *gin.Context, err error) {
	c.Error(err)
	failure(c, http.StatusServiceUnavailable, loadErrorMessage(s.cfg.Snapshot, err), nil)
}
