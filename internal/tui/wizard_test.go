package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/coverletter/internal/compose"
	"github.com/amishk599/coverletter/internal/model"
)

type stubWriter struct {
	letter model.Letter
	err    error
	got    model.LetterRequest
}

func (s *stubWriter) Write(_ context.Context, req model.LetterRequest) (model.Letter, error) {
	s.got = req
	if s.err != nil {
		return model.Letter{}, s.err
	}
	letter := s.letter
	letter.Tone = req.Tone
	return letter, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m wizardModel, keys ...string) (wizardModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(wizardModel)
	}
	return m, cmd
}

func newTestWizard(w *stubWriter) wizardModel {
	return newWizard(context.Background(), Options{Writer: w, DefaultTone: model.ToneProfessional})
}

// lettered drives the wizard to the letter step with a successful generation.
func lettered(t *testing.T, w *stubWriter) wizardModel {
	t.Helper()
	m := newTestWizard(w)
	m.cv.SetValue("Jane Doe, Go Engineer")
	m, _ = press(t, m, "ctrl+n")
	m.job.SetValue("Backend Engineer at Acme")
	m, _ = press(t, m, "ctrl+g")

	next, _ := m.Update(m.writeCmd(m.request())())
	return next.(wizardModel)
}

func TestWizard_BlankCVBlocksContinue(t *testing.T) {
	m := newTestWizard(&stubWriter{})
	m.cv.SetValue("  \n ")

	m, _ = press(t, m, "ctrl+n")
	if m.step != stepCV {
		t.Fatalf("step = %d, want %d", m.step, stepCV)
	}
	if m.err != model.ErrMissingCV.Error() {
		t.Errorf("err = %q, want %q", m.err, model.ErrMissingCV.Error())
	}
}

func TestWizard_PrefilledCV(t *testing.T) {
	m := newWizard(context.Background(), Options{Writer: &stubWriter{}, CV: "from file"})
	m, _ = press(t, m, "ctrl+n")
	if m.step != stepJob {
		t.Fatalf("step = %d, want %d", m.step, stepJob)
	}
	if got := m.cv.Value(); got != "from file" {
		t.Errorf("cv = %q", got)
	}
}

func TestWizard_BlankJobBlocksGenerate(t *testing.T) {
	w := &stubWriter{}
	m := newTestWizard(w)
	m.cv.SetValue("cv")
	m, _ = press(t, m, "ctrl+n")

	m, cmd := press(t, m, "ctrl+g")
	if m.generating || cmd != nil {
		t.Fatal("generation started with a blank job description")
	}
	if m.err != model.ErrMissingJobDescription.Error() {
		t.Errorf("err = %q", m.err)
	}

	m, _ = press(t, m, "ctrl+n")
	if m.picking {
		t.Error("tone picker opened with a blank job description")
	}
}

func TestWizard_BackKeepsCV(t *testing.T) {
	m := newTestWizard(&stubWriter{})
	m.cv.SetValue("my cv")
	m, _ = press(t, m, "ctrl+n")
	m.job.SetValue("draft")

	m, _ = press(t, m, "esc")
	if m.step != stepCV {
		t.Fatalf("step = %d, want %d", m.step, stepCV)
	}
	if m.cv.Value() != "my cv" || m.job.Value() != "draft" {
		t.Errorf("inputs lost: cv=%q job=%q", m.cv.Value(), m.job.Value())
	}
}

func TestWizard_ToneSelection(t *testing.T) {
	m := newTestWizard(&stubWriter{})
	m.cv.SetValue("cv")
	m, _ = press(t, m, "ctrl+n")
	m.job.SetValue("jd")

	m, _ = press(t, m, "ctrl+t")
	if got := m.tones.selected(); got != model.ToneFriendly {
		t.Errorf("after ctrl+t tone = %s, want friendly", got)
	}

	m, _ = press(t, m, "ctrl+n")
	if !m.picking {
		t.Fatal("tone picker not shown")
	}
	m, _ = press(t, m, "up", "up", "up", "up")
	if got := m.tones.selected(); got != model.ToneFormal {
		t.Errorf("cursor clamps at first tone, got %s", got)
	}
	m, _ = press(t, m, "j", "j", "j", "j", "j", "j")
	if got := m.tones.selected(); got != model.ToneCreative {
		t.Errorf("cursor clamps at last tone, got %s", got)
	}
	if !strings.Contains(m.View(), "> Creative") {
		t.Errorf("picker view missing selection:\n%s", m.View())
	}

	m, cmd := press(t, m, "enter")
	if !m.generating || cmd == nil {
		t.Fatal("enter in picker should start generation")
	}
	if got := m.request().Tone; got != model.ToneCreative {
		t.Errorf("request tone = %s", got)
	}
}

func TestWizard_GenerateShowsLetter(t *testing.T) {
	w := &stubWriter{letter: model.Letter{
		Body:     "Dear Hiring Manager,\n\nI would love to join Acme.",
		Metadata: model.Metadata{HREmail: "jobs@acme.com", CompanyName: "Acme", JobTitle: "Backend Engineer"},
	}}
	m := lettered(t, w)

	if m.step != stepLetter {
		t.Fatalf("step = %d, want %d (err %q)", m.step, stepLetter, m.err)
	}
	if m.generating {
		t.Error("still generating")
	}
	if w.got.CV != "Jane Doe, Go Engineer" || w.got.JobDescription != "Backend Engineer at Acme" {
		t.Errorf("writer got %+v", w.got)
	}
	if w.got.Tone != model.ToneProfessional {
		t.Errorf("tone = %s, want default professional", w.got.Tone)
	}
	if m.draft.To != "jobs@acme.com" || m.draft.Subject != "Application for Backend Engineer at Acme" {
		t.Errorf("draft = %+v", m.draft)
	}

	content := m.renderLetter()
	for _, want := range []string{"jobs@acme.com", "Application for Backend Engineer at Acme", "I would love to join Acme."} {
		if !strings.Contains(content, want) {
			t.Errorf("letter view missing %q", want)
		}
	}
}

func TestWizard_GenerateError(t *testing.T) {
	m := lettered(t, &stubWriter{err: errors.Join(model.ErrRetriesExhausted, &model.HTTPError{StatusCode: 429})})

	if m.step != stepJob {
		t.Fatalf("step = %d, want %d", m.step, stepJob)
	}
	if !strings.Contains(m.err, "busy") {
		t.Errorf("err = %q", m.err)
	}
	if m.job.Value() != "Backend Engineer at Acme" {
		t.Error("job description lost after failure")
	}
}

func TestWizard_KeysIgnoredWhileGenerating(t *testing.T) {
	m := newTestWizard(&stubWriter{})
	m.cv.SetValue("cv")
	m, _ = press(t, m, "ctrl+n")
	m.job.SetValue("jd")
	m, _ = press(t, m, "ctrl+g")

	m, _ = press(t, m, "esc", "x")
	if m.step != stepJob || m.job.Value() != "jd" {
		t.Error("input handled during generation")
	}

	next, cmd := m.Update(spinnerTickMsg{})
	m = next.(wizardModel)
	if m.frame != 1 || cmd == nil {
		t.Errorf("spinner did not advance: frame=%d", m.frame)
	}
}

func TestWizard_LetterActions(t *testing.T) {
	origOpen, origCopy := openURL, clipboardWriteAll
	t.Cleanup(func() { openURL, clipboardWriteAll = origOpen, origCopy })

	var opened, copied string
	openURL = func(u string) error { opened = u; return nil }
	clipboardWriteAll = func(s string) error { copied = s; return nil }

	w := &stubWriter{letter: model.Letter{
		Body:     "Hello Acme",
		Metadata: model.Metadata{HREmail: "hr@acme.com", JobTitle: "SRE"},
	}}
	m := lettered(t, w)

	m, _ = press(t, m, "o")
	want := compose.GmailURL("hr@acme.com", "Application for SRE", "Hello Acme")
	if opened != want {
		t.Errorf("opened %q, want %q", opened, want)
	}
	if m.notice != "Opened Gmail" {
		t.Errorf("notice = %q", m.notice)
	}

	m, _ = press(t, m, "m")
	if !strings.HasPrefix(opened, "mailto:hr@acme.com?") {
		t.Errorf("mailto = %q", opened)
	}

	m, _ = press(t, m, "c")
	if copied != "Hello Acme" {
		t.Errorf("copied %q", copied)
	}

	openURL = func(string) error { return errors.New("no browser") }
	m, _ = press(t, m, "o")
	if !strings.Contains(m.err, "no browser") {
		t.Errorf("err = %q", m.err)
	}

	m, _ = press(t, m, "e")
	if m.step != stepJob || m.job.Value() != "Backend Engineer at Acme" {
		t.Errorf("edit: step=%d job=%q", m.step, m.job.Value())
	}
}

func TestWizard_StartOver(t *testing.T) {
	m := lettered(t, &stubWriter{letter: model.Letter{Body: "x"}})

	m, _ = press(t, m, "r")
	if m.step != stepCV {
		t.Fatalf("step = %d", m.step)
	}
	if m.cv.Value() != "" || m.job.Value() != "" || m.letter.Body != "" {
		t.Error("start over kept previous inputs")
	}
}

func TestWizard_Quit(t *testing.T) {
	m := lettered(t, &stubWriter{letter: model.Letter{Body: "x"}})
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}

	_, cmd = press(t, newTestWizard(&stubWriter{}), "ctrl+c")
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four\n\nfive", 9)
	want := "one two\nthree\nfour\n\nfive"
	if got != want {
		t.Errorf("wrapText = %q, want %q", got, want)
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{model.ErrMissingAPIKey, "API key not configured"},
		{&model.HTTPError{StatusCode: 500}, "HTTP 500"},
		{context.DeadlineExceeded, "too long"},
		{errors.New("weird"), "weird"},
	}
	for _, tt := range tests {
		if got := describeError(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("describeError(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}
