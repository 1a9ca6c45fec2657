package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/amishk599/coverletter/internal/model"
)

// generateRequest is the body of POST /api/generate.
type generateRequest struct {
	CV             string `json:"cv" validate:"notblank,max=100000"`
	JobDescription string `json:"job_description" validate:"notblank,max=100000"`
	Tone           string `json:"tone" validate:"omitempty,max=32"`
}

// jobDescriptionRequest is the body of POST /api/job-description.
type jobDescriptionRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

// generateResponse is the success body of POST /api/generate.
type generateResponse struct {
	CoverLetter string `json:"cover_letter"`
	Tone        string `json:"tone"`
	HREmail     string `json:"hr_email"`
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
	Subject     string `json:"subject"`
	GmailURL    string `json:"gmail_url"`
}

type textResponse struct {
	Text string `json:"text"`
}

type toneOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func toneOptions() []toneOption {
	opts := make([]toneOption, 0, len(model.Tones))
	for _, t := range model.Tones {
		opts = append(opts, toneOption{Value: string(t), Label: t.Label()})
	}
	return opts
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return v
}

// fieldMessages holds the user-facing message for each failing field and tag.
var fieldMessages = map[string]map[string]string{
	"CV": {
		"notblank": model.ErrMissingCV.Error(),
		"max":      "Your CV is too long. Please shorten it and try again.",
	},
	"JobDescription": {
		"notblank": model.ErrMissingJobDescription.Error(),
		"max":      "The job description is too long. Please shorten it and try again.",
	},
	"Tone": {
		"max": "Unknown tone.",
	},
	"URL": {
		"required": "Please enter the job posting URL.",
		"url":      "Please enter a valid http(s) job posting URL.",
		"max":      "That URL is too long.",
	},
}

// validateRequest runs struct validation and converts the first failure into an ErrValidation.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg, ok := fieldMessages[fe.StructField()][fe.Tag()]
	if !ok {
		msg = fmt.Sprintf("Invalid %s.", strings.ToLower(fe.Field()))
	}
	return &ErrValidation{Field: fe.Field(), Message: msg}
}

// decodeJSON reads a size-capped JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &ErrValidation{Field: "body", Message: msgBadRequest}
	}
	return nil
}
