package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/amishk599/coverletter/internal/compose"
	"github.com/amishk599/coverletter/internal/extract"
	"github.com/amishk599/coverletter/internal/model"
)

// multipartOverhead is allowed on top of the upload limit for form boundaries and fields.
const multipartOverhead = 1 << 20

// handleExtract handles POST /api/extract: multipart "file" in, {text} out.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	text, _, err := s.readUpload(w, r)
	if err != nil {
		status, msg := extractionError(err)
		s.logger.Warn("cv extraction rejected", "request_id", requestID(r.Context()), "status", status, "error", err)
		s.errorResponse(w, status, msg)
		return
	}
	s.jsonResponse(w, http.StatusOK, textResponse{Text: text})
}

// handleGenerate handles POST /api/generate.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	err := decodeJSON(w, r, s.cfg.MaxUploadBytes, &req)
	if err == nil {
		err = validateRequest(&req)
	}
	if err != nil {
		status, msg := generationError(err)
		s.errorResponse(w, status, msg)
		return
	}

	if ok, retryAfter := s.admit(r); !ok {
		setRetryAfter(w, retryAfter)
		s.errorResponse(w, http.StatusTooManyRequests, msgTooFast)
		return
	}

	letter, err := s.writer.Write(r.Context(), model.LetterRequest{
		CV:             req.CV,
		JobDescription: req.JobDescription,
		Tone:           s.toneOrDefault(req.Tone),
	})
	if err != nil {
		status, msg := generationError(err)
		s.logger.Error("generate failed", "request_id", requestID(r.Context()), "status", status, "error", err)
		if status == http.StatusTooManyRequests {
			setRetryAfter(w, s.upstreamRetryAfter(err))
		}
		s.errorResponse(w, status, msg)
		return
	}

	draft := compose.DraftFor(letter)
	s.jsonResponse(w, http.StatusOK, generateResponse{
		CoverLetter: letter.Body,
		Tone:        string(letter.Tone),
		HREmail:     letter.Metadata.HREmail,
		CompanyName: letter.Metadata.CompanyName,
		JobTitle:    letter.Metadata.JobTitle,
		Subject:     draft.Subject,
		GmailURL:    draft.GmailURL(),
	})
}

// handleJobDescription handles POST /api/job-description: {url} in, {text} out.
func (s *Server) handleJobDescription(w http.ResponseWriter, r *http.Request) {
	if s.jobPages == nil {
		s.errorResponse(w, http.StatusNotFound, msgImportDisabled)
		return
	}

	var req jobDescriptionRequest
	err := decodeJSON(w, r, 64<<10, &req)
	if err == nil {
		err = validateRequest(&req)
	}
	if err == nil {
		var text string
		if text, err = s.jobPages.Fetch(r.Context(), req.URL); err == nil {
			s.jsonResponse(w, http.StatusOK, textResponse{Text: text})
			return
		}
	}

	status, msg := importError(err)
	s.logger.Warn("job import failed", "request_id", requestID(r.Context()), "status", status, "error", err)
	s.errorResponse(w, status, msg)
}

// handleTones handles GET /api/tones.
func (s *Server) handleTones(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, toneOptions())
}

// readUpload reads the multipart "file" field and extracts its text.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (text, filename string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return "", "", extract.ErrNoFile
		case errors.As(err, &tooLarge):
			return "", "", err
		}
		return "", "", &ErrValidation{Field: "file", Message: msgBadRequest}
	}
	defer file.Close()

	if header.Size > s.cfg.MaxUploadBytes {
		return "", "", &http.MaxBytesError{Limit: s.cfg.MaxUploadBytes}
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", "", fmt.Errorf("read upload %s: %w", header.Filename, err)
	}

	text, err = s.extractor.Extract(header.Filename, data)
	if err != nil {
		return "", header.Filename, err
	}
	return text, header.Filename, nil
}

func (s *Server) toneOrDefault(raw string) model.Tone {
	if raw == "" {
		return s.defaultTone
	}
	return model.ParseTone(raw)
}
