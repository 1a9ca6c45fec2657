package server

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/amishk599/coverletter/internal/compose"
	"github.com/amishk599/coverletter/internal/extract"
	"github.com/amishk599/coverletter/internal/model"
)

const (
	stepCV = iota + 1
	stepJob
	stepLetter
)

var stepLabels = [...]string{stepCV: "Upload CV", stepJob: "Job Details", stepLetter: "Cover Letter"}

// wizardPage is everything the wizard template renders. The whole wizard
// state travels in form fields, so nothing is kept on the server.
type wizardPage struct {
	Step           int
	Error          string
	CV             string
	FileName       string
	JobDescription string
	JobURL         string
	Tone           model.Tone
	Tones          []toneOption
	JobImport      bool
	MaxUploadMB    int64

	Letter    string
	To        string
	Subject   string
	GmailURL  string
	MailtoURL string
}

type stepView struct {
	Number   int
	Label    string
	Active   bool
	Complete bool
}

// Steps drives the step indicator.
func (p *wizardPage) Steps() []stepView {
	complete := map[int]bool{
		stepCV:     p.CV != "",
		stepJob:    p.JobDescription != "",
		stepLetter: p.Letter != "",
	}
	steps := make([]stepView, 0, len(stepLabels)-1)
	for n := stepCV; n <= stepLetter; n++ {
		steps = append(steps, stepView{
			Number:   n,
			Label:    stepLabels[n],
			Active:   p.Step == n,
			Complete: complete[n],
		})
	}
	return steps
}

func (s *Server) newPage(step int) *wizardPage {
	return &wizardPage{
		Step:        step,
		Tone:        s.defaultTone,
		Tones:       toneOptions(),
		JobImport:   s.jobPages != nil,
		MaxUploadMB: s.cfg.MaxUploadBytes >> 20,
	}
}

// pageFromForm restores the wizard state carried in the submitted form.
func (s *Server) pageFromForm(r *http.Request, step int) *wizardPage {
	p := s.newPage(step)
	p.CV = r.FormValue("cv")
	p.JobDescription = r.FormValue("job_description")
	p.JobURL = strings.TrimSpace(r.FormValue("job_url"))
	p.Tone = s.toneOrDefault(r.FormValue("tone"))
	return p
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, p *wizardPage) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "wizard.html", p); err != nil {
		s.logger.Error("render wizard", "request_id", requestID(r.Context()), "step", p.Step, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// handleIndex renders step 1.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.newPage(stepCV))
}

// handleWizardCV accepts an uploaded or pasted CV and moves on to the job details.
func (s *Server) handleWizardCV(w http.ResponseWriter, r *http.Request) {
	text, filename, err := s.readUpload(w, r)
	p := s.pageFromForm(r, stepCV)

	switch {
	case err == nil:
		p.CV = text
		p.FileName = filename
	case errors.Is(err, extract.ErrNoFile):
		// Nothing uploaded; use the pasted text.
	default:
		status, msg := extractionError(err)
		s.logger.Warn("cv upload rejected", "request_id", requestID(r.Context()), "status", status, "error", err)
		p.Error = msg
		s.render(w, r, status, p)
		return
	}

	if strings.TrimSpace(p.CV) == "" {
		p.Error = model.ErrMissingCV.Error()
		s.render(w, r, http.StatusBadRequest, p)
		return
	}

	p.Step = stepJob
	s.render(w, r, http.StatusOK, p)
}

// handleWizardJob handles every button on the job details and letter steps.
func (s *Server) handleWizardJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseForm(); err != nil {
		p := s.newPage(stepCV)
		status, msg := generationError(err)
		if status == http.StatusInternalServerError {
			status, msg = http.StatusBadRequest, msgBadRequest
		}
		p.Error = msg
		s.render(w, r, status, p)
		return
	}

	p := s.pageFromForm(r, stepJob)
	switch r.PostFormValue("action") {
	case "back":
		p.Step = stepCV
		s.render(w, r, http.StatusOK, p)
	case "edit":
		s.render(w, r, http.StatusOK, p)
	case "import":
		s.wizardImport(w, r, p)
	default:
		s.wizardGenerate(w, r, p)
	}
}

func (s *Server) wizardImport(w http.ResponseWriter, r *http.Request, p *wizardPage) {
	if s.jobPages == nil {
		p.Error = msgImportDisabled
		s.render(w, r, http.StatusNotFound, p)
		return
	}

	err := validateRequest(&jobDescriptionRequest{URL: p.JobURL})
	if err == nil {
		var text string
		if text, err = s.jobPages.Fetch(r.Context(), p.JobURL); err == nil {
			p.JobDescription = text
			s.render(w, r, http.StatusOK, p)
			return
		}
	}

	status, msg := importError(err)
	s.logger.Warn("job import failed", "request_id", requestID(r.Context()), "status", status, "error", err)
	p.Error = msg
	s.render(w, r, status, p)
}

func (s *Server) wizardGenerate(w http.ResponseWriter, r *http.Request, p *wizardPage) {
	req := model.LetterRequest{CV: p.CV, JobDescription: p.JobDescription, Tone: p.Tone}
	if err := req.Validate(); err != nil {
		if errors.Is(err, model.ErrMissingCV) {
			p.Step = stepCV
		}
		p.Error = err.Error()
		s.render(w, r, http.StatusBadRequest, p)
		return
	}

	if ok, retryAfter := s.admit(r); !ok {
		setRetryAfter(w, retryAfter)
		p.Error = msgTooFast
		s.render(w, r, http.StatusTooManyRequests, p)
		return
	}

	letter, err := s.writer.Write(r.Context(), req)
	if err != nil {
		status, msg := generationError(err)
		s.logger.Error("generate failed", "request_id", requestID(r.Context()), "status", status, "error", err)
		if status == http.StatusTooManyRequests {
			setRetryAfter(w, s.upstreamRetryAfter(err))
		}
		p.Error = msg
		s.render(w, r, status, p)
		return
	}

	draft := compose.DraftFor(letter)
	p.Step = stepLetter
	p.Tone = letter.Tone
	p.Letter = letter.Body
	p.To = draft.To
	p.Subject = draft.Subject
	p.GmailURL = draft.GmailURL()
	p.MailtoURL = draft.MailtoURL()
	s.render(w, r, http.StatusOK, p)
}

// handleWizardCompose redirects to Gmail with the recipient and subject as edited on step 3.
func (s *Server) handleWizardCompose(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	body := q.Get("body")
	if strings.TrimSpace(body) == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	target := compose.GmailURL(strings.TrimSpace(q.Get("to")), strings.TrimSpace(q.Get("subject")), body)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
