package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/coverletter/internal/model"
)

var (
	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)
)

// tonePicker is a vertical list of the supported tones.
type tonePicker struct {
	tones  []model.Tone
	cursor int
}

func newTonePicker(initial model.Tone) tonePicker {
	p := tonePicker{tones: model.Tones}
	p.selectTone(initial)
	return p
}

func (p *tonePicker) selectTone(t model.Tone) {
	t = model.ParseTone(string(t))
	for i, known := range p.tones {
		if known == t {
			p.cursor = i
			return
		}
	}
}

func (p *tonePicker) move(delta int) {
	p.cursor = clamp(p.cursor+delta, 0, len(p.tones)-1)
}

// next cycles forward, wrapping at the end.
func (p *tonePicker) next() {
	p.cursor = (p.cursor + 1) % len(p.tones)
}

func (p tonePicker) selected() model.Tone {
	return p.tones[p.cursor]
}

func (p tonePicker) view() string {
	var b strings.Builder
	for i, t := range p.tones {
		if i == p.cursor {
			b.WriteString(pickerSelectedStyle.Render("> " + t.Label()))
		} else {
			b.WriteString(pickerItemStyle.Render(t.Label()))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
