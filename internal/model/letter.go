package model

import (
	"strings"
	"time"
)

// Tone selects the presentational style of a generated cover letter.
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneConfident    Tone = "confident"
	ToneCreative     Tone = "creative"
)

// DefaultTone is used whenever a tone is missing or unrecognized.
const DefaultTone = ToneProfessional

// Tones lists every supported tone in display order.
var Tones = []Tone{ToneFormal, ToneProfessional, ToneFriendly, ToneConfident, ToneCreative}

// ParseTone normalizes s into a known Tone. Unknown values fall back to DefaultTone.
func ParseTone(s string) Tone {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return DefaultTone
}

// Valid reports whether t is one of the supported tones.
func (t Tone) Valid() bool {
	for _, known := range Tones {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable name shown in pickers.
func (t Tone) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// LetterRequest is the input to one cover letter generation.
type LetterRequest struct {
	CV             string
	JobDescription string
	Tone           Tone
}

// Validate rejects requests whose CV or job description is blank.
func (r LetterRequest) Validate() error {
	if strings.TrimSpace(r.CV) == "" {
		return ErrMissingCV
	}
	if strings.TrimSpace(r.JobDescription) == "" {
		return ErrMissingJobDescription
	}
	return nil
}

// Metadata holds the fields recovered from a job description for the email composer.
// Every field is empty when it could not be found.
type Metadata struct {
	HREmail     string
	CompanyName string
	JobTitle    string
}

// Subject derives an email subject line from the job title and company.
func (m Metadata) Subject() string {
	switch {
	case m.JobTitle != "" && m.CompanyName != "":
		return "Application for " + m.JobTitle + " at " + m.CompanyName
	case m.JobTitle != "":
		return "Application for " + m.JobTitle
	default:
		return ""
	}
}

// Letter is a generated cover letter plus the metadata extracted alongside it.
type Letter struct {
	Body     string
	Tone     Tone
	Metadata Metadata
}

// Prompt is a single system + user exchange sent to an LLM.
type Prompt struct {
	System string
	User   string
}

// Alert describes an upstream failure worth surfacing to whoever runs the service.
// It never carries CV or job description text.
type Alert struct {
	Kind    string // e.g. "generation_failed"
	Tone    Tone
	Message string
	At      time.Time
}
