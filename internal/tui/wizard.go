// Package tui implements the terminal cover letter wizard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/coverletter/internal/compose"
	"github.com/amishk599/coverletter/internal/model"
)

type step int

const (
	stepCV step = iota + 1
	stepJob
	stepLetter
)

var stepLabels = [...]string{stepCV: "Upload CV", stepJob: "Job Details", stepLetter: "Cover Letter"}

const defaultTimeout = 3 * time.Minute

// Options configures the terminal wizard.
type Options struct {
	Writer      model.LetterWriter
	CV          string // prefilled CV text, e.g. from --cv
	DefaultTone model.Tone
	Timeout     time.Duration // per generation; defaultTimeout when zero
}

type wizardModel struct {
	ctx     context.Context
	writer  model.LetterWriter
	timeout time.Duration

	step    step
	cv      textarea.Model
	job     textarea.Model
	tones   tonePicker
	picking bool

	generating bool
	frame      int

	letter     model.Letter
	draft      compose.Draft
	letterView viewport.Model

	err    string
	notice string
	width  int
	height int
}

func newTextarea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	return ta
}

func newWizard(ctx context.Context, opts Options) wizardModel {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	m := wizardModel{
		ctx:        ctx,
		writer:     opts.Writer,
		timeout:    timeout,
		step:       stepCV,
		cv:         newTextarea("Paste your CV/resume content here..."),
		job:        newTextarea("Paste the job description here... Include the role title, company, requirements, and responsibilities."),
		tones:      newTonePicker(opts.DefaultTone),
		letterView: viewport.New(76, 16),
		width:      80,
		height:     24,
	}
	m.cv.SetValue(opts.CV)
	m.cv.Focus()
	m.resize()
	return m
}

func (m wizardModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinnerTickMsg:
		if !m.generating {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, spinnerTick()

	case writeDoneMsg:
		m.generating = false
		if msg.err != nil {
			m.err = describeError(msg.err)
			return m, nil
		}
		m.err = ""
		m.notice = ""
		m.picking = false
		m.letter = msg.letter
		m.draft = compose.DraftFor(msg.letter)
		m.step = stepLetter
		m.job.Blur()
		m.letterView.SetContent(m.renderLetter())
		m.letterView.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.generating {
			return m, nil
		}
		switch m.step {
		case stepCV:
			return m.updateCV(msg)
		case stepJob:
			return m.updateJob(msg)
		case stepLetter:
			return m.updateLetter(msg)
		}
	}

	return m.updateFocused(msg)
}

func (m wizardModel) updateCV(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+n":
		if strings.TrimSpace(m.cv.Value()) == "" {
			m.err = model.ErrMissingCV.Error()
			return m, nil
		}
		m.err = ""
		m.step = stepJob
		m.cv.Blur()
		return m, m.job.Focus()
	}
	return m.updateFocused(msg)
}

func (m wizardModel) updateJob(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picking {
		switch msg.String() {
		case "esc":
			m.picking = false
			return m, m.job.Focus()
		case "up", "k":
			m.tones.move(-1)
		case "down", "j":
			m.tones.move(1)
		case "enter":
			return m.generate()
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.err = ""
		m.step = stepCV
		m.job.Blur()
		return m, m.cv.Focus()
	case "ctrl+t":
		m.tones.next()
		return m, nil
	case "ctrl+n":
		if strings.TrimSpace(m.job.Value()) == "" {
			m.err = model.ErrMissingJobDescription.Error()
			return m, nil
		}
		m.err = ""
		m.picking = true
		m.job.Blur()
		return m, nil
	case "ctrl+g":
		return m.generate()
	}
	return m.updateFocused(msg)
}

func (m wizardModel) updateLetter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "o":
		m.openLink("Gmail", m.draft.GmailURL())
		return m, nil
	case "m":
		m.openLink("your mail app", m.draft.MailtoURL())
		return m, nil
	case "c":
		if err := clipboardWriteAll(m.letter.Body); err != nil {
			m.notice = ""
			m.err = fmt.Sprintf("could not copy to clipboard: %v", err)
		} else {
			m.err = ""
			m.notice = "Copied to clipboard"
		}
		return m, nil
	case "e":
		m.notice = ""
		m.err = ""
		m.step = stepJob
		return m, m.job.Focus()
	case "r":
		m.reset()
		return m, m.cv.Focus()
	}

	var cmd tea.Cmd
	m.letterView, cmd = m.letterView.Update(msg)
	return m, cmd
}

func (m *wizardModel) openLink(target, url string) {
	if err := openURL(url); err != nil {
		m.notice = ""
		m.err = fmt.Sprintf("could not open %s: %v", target, err)
		return
	}
	m.err = ""
	m.notice = "Opened " + target
}

// updateFocused forwards msg to the textarea of the current step.
func (m wizardModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.step == stepCV:
		m.cv, cmd = m.cv.Update(msg)
	case m.step == stepJob && !m.picking:
		m.job, cmd = m.job.Update(msg)
	}
	return m, cmd
}

func (m wizardModel) generate() (tea.Model, tea.Cmd) {
	req := m.request()
	if err := req.Validate(); err != nil {
		m.err = err.Error()
		if errors.Is(err, model.ErrMissingCV) {
			m.picking = false
			m.step = stepCV
			m.job.Blur()
			return m, m.cv.Focus()
		}
		return m, nil
	}

	m.err = ""
	m.generating = true
	m.frame = 0
	return m, tea.Batch(m.writeCmd(req), spinnerTick())
}

func (m wizardModel) request() model.LetterRequest {
	return model.LetterRequest{
		CV:             m.cv.Value(),
		JobDescription: m.job.Value(),
		Tone:           m.tones.selected(),
	}
}

func (m wizardModel) writeCmd(req model.LetterRequest) tea.Cmd {
	ctx, writer, timeout := m.ctx, m.writer, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		letter, err := writer.Write(ctx, req)
		return writeDoneMsg{letter: letter, err: err}
	}
}

func (m *wizardModel) reset() {
	m.cv.Reset()
	m.job.Reset()
	m.job.Blur()
	m.letter = model.Letter{}
	m.draft = compose.Draft{}
	m.letterView.SetContent("")
	m.picking = false
	m.err = ""
	m.notice = ""
	m.step = stepCV
}

func (m *wizardModel) resize() {
	// Steps row, title, hint and status bar take 7 lines; the border 2 more.
	w := max(m.width-4, 20)
	h := max(m.height-9, 3)

	m.cv.SetWidth(w)
	m.cv.SetHeight(h)
	m.job.SetWidth(w)
	m.job.SetHeight(max(h-2, 3))
	m.letterView.Width = w
	m.letterView.Height = h
	if m.step == stepLetter {
		m.letterView.SetContent(m.renderLetter())
	}
}

func (m wizardModel) View() string {
	var b strings.Builder
	b.WriteString(m.stepsView())
	b.WriteString("\n\n")

	switch m.step {
	case stepCV:
		b.WriteString(titleStyle.Render("Upload Your CV") + "\n")
		b.WriteString(m.cv.View())
	case stepJob:
		b.WriteString(titleStyle.Render("Job Description") + "\n")
		if m.picking {
			b.WriteString(hintStyle.Render("Choose a tone for your letter") + "\n\n")
			b.WriteString(m.tones.view())
		} else {
			b.WriteString(m.job.View() + "\n")
			b.WriteString(hintStyle.Render("Tone: "+m.tones.selected().Label()) + "\n")
		}
		if m.generating {
			b.WriteString("\n" + spinnerStyle.Render(spinnerFrames[m.frame]) + " Generating your cover letter...")
		}
	case stepLetter:
		b.WriteString(titleStyle.Render("Your Cover Letter") + hintStyle.Render("  "+m.letter.Tone.Label()) + "\n")
		b.WriteString(activeBorderStyle.Width(m.letterView.Width).Render(m.letterView.View()))
	}

	b.WriteByte('\n')
	if m.err != "" {
		b.WriteString(errorStyle.Render("⚠ "+m.err) + "\n")
	} else if m.notice != "" {
		b.WriteString(noticeStyle.Render("✓ "+m.notice) + "\n")
	}
	b.WriteString(statusBarStyle.Width(m.width).Render(m.keyHints()))
	return b.String()
}

func (m wizardModel) stepsView() string {
	parts := make([]string, 0, len(stepLabels)-1)
	for s := stepCV; s <= stepLetter; s++ {
		label := fmt.Sprintf("%d %s", s, stepLabels[s])
		switch {
		case s == m.step:
			parts = append(parts, activeStepStyle.Render(label))
		case s < m.step:
			parts = append(parts, completeStepStyle.Render("✓ "+stepLabels[s]))
		default:
			parts = append(parts, pendingStepStyle.Render(label))
		}
	}
	return strings.Join(parts, dividerStyle.Render(" › "))
}

func (m wizardModel) keyHints() string {
	switch {
	case m.generating:
		return " generating...  ctrl+c quit"
	case m.step == stepCV:
		return " ctrl+n continue  esc quit  ctrl+c quit"
	case m.step == stepJob && m.picking:
		return " ↑/↓ tone  enter generate  esc back to job description"
	case m.step == stepJob:
		return " ctrl+n choose tone  ctrl+t cycle tone  ctrl+g generate  esc back"
	default:
		return " o open in Gmail  m mail app  c copy  e edit job  r start over  ↑/↓ scroll  q quit"
	}
}

func (m wizardModel) renderLetter() string {
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("To", m.draft.To)
	addField("Subject", m.draft.Subject)
	addField("Company", m.letter.Metadata.CompanyName)
	if b.Len() > 0 {
		b.WriteByte('\n')
	}

	wrapWidth := max(m.letterView.Width-2, 20)
	b.WriteString(dividerStyle.Render(strings.Repeat("─", wrapWidth)) + "\n\n")
	b.WriteString(bodyStyle.Render(wrapText(m.letter.Body, wrapWidth)))
	return b.String()
}

func describeError(err error) string {
	var httpErr *model.HTTPError
	switch {
	case errors.Is(err, model.ErrMissingAPIKey):
		return "API key not configured. Set OPENAI_API_KEY or GEMINI_API_KEY and try again."
	case errors.Is(err, model.ErrRetriesExhausted):
		return "The AI service is busy right now. Please wait a moment and try again."
	case errors.Is(err, model.ErrEmptyLetter):
		return "The AI service returned an empty cover letter. Please try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request took too long. Please try again."
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Cover letter service error (HTTP %d). Please try again.", httpErr.StatusCode)
	default:
		return "Failed to generate cover letter: " + err.Error()
	}
}

// wrapText word-wraps each line of text to width, keeping blank lines.
func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wordWrap(line, width)
	}
	return strings.Join(lines, "\n")
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

// RunWizard runs the full-screen wizard and returns the last letter generated,
// which is empty when the user quit before generating one.
func RunWizard(ctx context.Context, opts Options) (model.Letter, error) {
	p := tea.NewProgram(newWizard(ctx, opts), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return model.Letter{}, err
	}
	final := result.(wizardModel)
	return final.letter, nil
}
