package web

import (
	"errors"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	modeApplicant = "applicant"
	modeSkills    = "skills"

	msgSelectApplicant = "Please select an Applicant ID."
	msgSelectSkills    = "Please select at least one skill."
	msgInvalidRequest  = "Invalid request."
)

// recommendForm is bound from the html form query and from the api json body.
type recommendForm struct {
	Mode        string   `form:"mode" json:"mode" binding:"required,oneof=applicant skills"`
	ApplicantID string   `form:"applicant_id" json:"applicant_id"`
	Skills      []string `form:"skills" json:"skills" binding:"omitempty,dive,max=100"`
	TopN        int      `form:"top_n" json:"top_n" binding:"omitempty,min=1,max=50"`
}

var registerOnce sync.Once

// registerValidations hooks mode dependent rules into gin's validator.
func registerValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterStructValidation(validateRecommendForm, recommendForm{})
	})
}

func validateRecommendForm(sl validator.StructLevel) {
	form := sl.Current().Interface().(recommendForm)

	switch form.Mode {
	case modeApplicant:
		if form.ApplicantID == "" {
			sl.ReportError(form.ApplicantID, "ApplicantID", "applicant_id", "required_for_applicant", "")
		}
	case modeSkills:
		for _, skill := range form.Skills {
			if strings.TrimSpace(skill) != "" {
				return
			}
		}
		sl.ReportError(form.Skills, "Skills", "skills", "required_for_skills", "")
	}
}

// validationMessage turns a binding error into the message shown to the user.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgInvalidRequest
	}

	switch verrs[0].Field() {
	case "ApplicantID":
		return msgSelectApplicant
	case "Skills":
		return msgSelectSkills
	case "Mode":
		return "Please select an option."
	case "TopN":
		return "Number of recommendations must be between 1 and 50."
	default:
		return msgInvalidRequest
	}
}
