package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/coverletter/internal/compose"
	"github.com/amishk599/coverletter/internal/extract"
	"github.com/amishk599/coverletter/internal/model"
)

func TestWizardIndex(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `action="/wizard/cv"`)
	assert.Contains(t, body, "Upload Your CV")
	assert.Contains(t, body, "up to 1 MB")
	assert.Contains(t, body, `aria-current="step"`)
}

func TestWizardCV_Paste(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doForm(t, s, "/wizard/cv", url.Values{"cv": {"Jane Doe, Go Engineer"}})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/wizard/job"`)
	assert.Contains(t, body, `value="Jane Doe, Go Engineer"`)
	assert.Contains(t, body, `value="professional" checked`)
	assert.Contains(t, body, `name="job_url"`, "import box shown when job pages are enabled")
}

func TestWizardCV_Upload(t *testing.T) {
	s, deps := newTestServer(t)
	body, contentType := multipartBody(t, "resume.docx", []byte("PK fake"), map[string]string{"cv": "ignored"})

	req := httptest.NewRequest(http.MethodPost, "/wizard/cv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "resume.docx", deps.extractor.name)
	assert.Contains(t, rec.Body.String(), `action="/wizard/job"`)
}

func TestWizardCV_Errors(t *testing.T) {
	t.Run("blank paste", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := doForm(t, s, "/wizard/cv", url.Values{"cv": {"   "}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), model.ErrMissingCV.Error())
		assert.Contains(t, rec.Body.String(), `action="/wizard/cv"`)
	})

	t.Run("image only pdf", func(t *testing.T) {
		s, deps := newTestServer(t)
		deps.extractor.err = extract.ErrNoText
		body, contentType := multipartBody(t, "scan.pdf", []byte("%PDF"), nil)

		req := httptest.NewRequest(http.MethodPost, "/wizard/cv", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "image-based or empty")
		assert.Contains(t, rec.Body.String(), `action="/wizard/cv"`)
	})
}

func TestWizardJob_Generate(t *testing.T) {
	s, deps := newTestServer(t)
	rec := doForm(t, s, "/wizard/job", url.Values{
		"action":          {"generate"},
		"cv":              {"Jane Doe, Go Engineer"},
		"job_description": {"Backend Engineer at Acme"},
		"tone":            {"confident"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Your Cover Letter")
	assert.Contains(t, body, "I am excited to apply.")
	assert.Contains(t, body, `value="jobs@acme.com"`)
	assert.Contains(t, body, `value="Application for Backend Engineer at Acme"`)
	assert.Contains(t, body, "Confident")
	assert.Contains(t, body, `href="mailto:`)

	require.Equal(t, 1, deps.writer.calls())
	assert.Equal(t, model.ToneConfident, deps.writer.reqs[0].Tone)
}

func TestWizardJob_GenerateValidation(t *testing.T) {
	t.Run("blank job description stays on step 2", func(t *testing.T) {
		s, deps := newTestServer(t)
		rec := doForm(t, s, "/wizard/job", url.Values{"cv": {"cv"}, "job_description": {" "}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), model.ErrMissingJobDescription.Error())
		assert.Contains(t, rec.Body.String(), `action="/wizard/job"`)
		assert.Zero(t, deps.writer.calls())
	})

	t.Run("blank cv goes back to step 1", func(t *testing.T) {
		s, deps := newTestServer(t)
		rec := doForm(t, s, "/wizard/job", url.Values{"job_description": {"jd"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), model.ErrMissingCV.Error())
		assert.Contains(t, rec.Body.String(), `action="/wizard/cv"`)
		assert.Zero(t, deps.writer.calls())
	})
}

func TestWizardJob_GenerateUpstreamError(t *testing.T) {
	s, deps := newTestServer(t)
	deps.writer.err = &model.HTTPError{StatusCode: http.StatusInternalServerError}

	rec := doForm(t, s, "/wizard/job", url.Values{"cv": {"cv"}, "job_description": {"jd"}})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cover letter service error (HTTP 500)")
	assert.Contains(t, rec.Body.String(), `action="/wizard/job"`, "user can retry from step 2")
}

func TestWizardJob_RateLimited(t *testing.T) {
	s, deps := newTestServer(t, func(o *Options) { o.Config.ClientMinInterval = time.Minute })
	form := url.Values{"cv": {"cv"}, "job_description": {"jd"}}

	require.Equal(t, http.StatusOK, doForm(t, s, "/wizard/job", form).Code)
	rec := doForm(t, s, "/wizard/job", form)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, deps.writer.calls())
}

func TestWizardJob_Navigation(t *testing.T) {
	s, deps := newTestServer(t)

	back := doForm(t, s, "/wizard/job", url.Values{"action": {"back"}, "cv": {"my cv"}, "job_description": {"draft jd"}})
	require.Equal(t, http.StatusOK, back.Code)
	assert.Contains(t, back.Body.String(), `action="/wizard/cv"`)
	assert.Contains(t, back.Body.String(), `value="draft jd"`, "job description survives going back")

	edit := doForm(t, s, "/wizard/job", url.Values{"action": {"edit"}, "cv": {"my cv"}, "job_description": {"draft jd"}, "tone": {"friendly"}})
	require.Equal(t, http.StatusOK, edit.Code)
	assert.Contains(t, edit.Body.String(), `action="/wizard/job"`)
	assert.Contains(t, edit.Body.String(), "draft jd")
	assert.Contains(t, edit.Body.String(), `value="friendly" checked`)

	assert.Zero(t, deps.writer.calls())
}

func TestWizardJob_Import(t *testing.T) {
	s, deps := newTestServer(t)
	rec := doForm(t, s, "/wizard/job", url.Values{
		"action":  {"import"},
		"cv":      {"my cv"},
		"job_url": {"https://boards.greenhouse.io/acme/jobs/42"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/42", deps.jobPages.url)
	assert.Contains(t, rec.Body.String(), "Backend Engineer at Acme")
	assert.Zero(t, deps.writer.calls())
}

func TestWizardJob_ImportErrors(t *testing.T) {
	t.Run("bad url", func(t *testing.T) {
		s, deps := newTestServer(t)
		rec := doForm(t, s, "/wizard/job", url.Values{"action": {"import"}, "cv": {"cv"}, "job_url": {"nope"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "valid http(s) job posting URL")
		assert.Empty(t, deps.jobPages.url)
	})

	t.Run("disabled", func(t *testing.T) {
		s, _ := newTestServer(t, func(o *Options) { o.JobPages = nil })
		rec := doForm(t, s, "/wizard/job", url.Values{"action": {"import"}, "cv": {"cv"}, "job_url": {"https://example.com/job"}})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NotContains(t, rec.Body.String(), `name="job_url"`)
	})
}

func TestWizardCompose(t *testing.T) {
	s, _ := newTestServer(t)
	q := url.Values{
		"to":      {" hr@acme.com "},
		"subject": {"Application for Backend Engineer"},
		"body":    {"Dear team,\n\nHello & thanks."},
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wizard/compose?"+q.Encode(), nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t,
		compose.GmailURL("hr@acme.com", "Application for Backend Engineer", "Dear team,\n\nHello & thanks."),
		rec.Header().Get("Location"))
}

func TestWizardCompose_EmptyBody(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wizard/compose?to=a%40b.com", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestWizardSteps(t *testing.T) {
	p := &wizardPage{Step: stepJob, CV: "cv"}
	steps := p.Steps()

	require.Len(t, steps, 3)
	assert.Equal(t, stepView{Number: 1, Label: "Upload CV", Complete: true}, steps[0])
	assert.Equal(t, stepView{Number: 2, Label: "Job Details", Active: true}, steps[1])
	assert.Equal(t, stepView{Number: 3, Label: "Cover Letter"}, steps[2])
}
