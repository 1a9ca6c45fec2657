package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/amishk599/coverletter/internal/extract"
	"github.com/amishk599/coverletter/internal/jobpage"
	"github.com/amishk599/coverletter/internal/model"
)

const (
	msgGenericFailure = "An error occurred while generating the cover letter. Please try again."
	msgRetriesSpent   = "The AI service is busy right now. Please wait a moment and try again."
	msgEmptyLetter    = "The AI service returned an empty cover letter. Please try again."
	msgTimeout        = "The request took too long. Please try again."
	msgTooLarge       = "That file is too large. Please upload a smaller file or paste your CV instead."
	msgTooFast        = "You're generating letters too quickly. Please wait a few seconds and try again."
	msgImportDisabled = "Importing job descriptions from a URL is disabled."
	msgBadRequest     = "The request could not be read."
)

// ErrValidation indicates request validation failure. Message is shown to the user.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// generationError maps a letter generation failure to a status and a user-facing message.
func generationError(err error) (int, string) {
	var (
		validation *ErrValidation
		httpErr    *model.HTTPError
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, msgTooLarge
	case errors.Is(err, model.ErrMissingCV), errors.Is(err, model.ErrMissingJobDescription):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, model.ErrMissingAPIKey.Error()
	case errors.Is(err, model.ErrRetriesExhausted):
		return http.StatusTooManyRequests, msgRetriesSpent
	case errors.Is(err, model.ErrEmptyLetter):
		return http.StatusBadGateway, msgEmptyLetter
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, msgTimeout
	case errors.As(err, &httpErr):
		return http.StatusBadGateway, fmt.Sprintf("Cover letter service error (HTTP %d). Please try again.", httpErr.StatusCode)
	default:
		return http.StatusInternalServerError, msgGenericFailure
	}
}

// extractionError maps a CV upload failure to a status and a user-facing message.
func extractionError(err error) (int, string) {
	var (
		validation *ErrValidation
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, msgTooLarge
	case errors.Is(err, extract.ErrNoFile),
		errors.Is(err, extract.ErrUnsupportedType),
		errors.Is(err, extract.ErrNoText),
		errors.Is(err, extract.ErrNoTextDocx),
		errors.Is(err, extract.ErrEmptyText),
		errors.Is(err, extract.ErrUnreadable),
		errors.Is(err, extract.ErrUnreadableDocx):
		return http.StatusUnprocessableEntity, userMessage(err)
	default:
		return http.StatusInternalServerError, "Failed to parse PDF. Please try again or paste your CV manually."
	}
}

// importError maps a job page import failure to a status and a user-facing message.
func importError(err error) (int, string) {
	var (
		validation *ErrValidation
		httpErr    *model.HTTPError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.Is(err, jobpage.ErrInvalidURL):
		return http.StatusBadRequest, jobpage.ErrInvalidURL.Error()
	case errors.Is(err, jobpage.ErrBlockedAddress):
		return http.StatusBadRequest, jobpage.ErrBlockedAddress.Error()
	case errors.Is(err, jobpage.ErrNoContent):
		return http.StatusUnprocessableEntity, jobpage.ErrNoContent.Error()
	case errors.As(err, &httpErr):
		return http.StatusBadGateway, fmt.Sprintf("Could not load the job posting (HTTP %d). Please paste the description instead.", httpErr.StatusCode)
	default:
		return http.StatusBadGateway, "Could not load the job posting. Please paste the description instead."
	}
}

// userMessage returns the sentinel message at the root of a wrapped extraction error.
func userMessage(err error) string {
	for _, sentinel := range []error{
		extract.ErrNoFile,
		extract.ErrUnsupportedType,
		extract.ErrNoText,
		extract.ErrNoTextDocx,
		extract.ErrEmptyText,
		extract.ErrUnreadable,
		extract.ErrUnreadableDocx,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
