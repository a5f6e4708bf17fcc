package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// form collects the fields of one menu item.
type form struct {
	item   MenuItem
	inputs []textinput.Model
	focus  int
	err    string
}

func newForm(item MenuItem) *form {
	f := &form{item: item}
	for _, field := range item.Fields {
		in := textinput.New()
		in.Placeholder = field.Placeholder
		in.CharLimit = 500
		in.Width = 60
		f.inputs = append(f.inputs, in)
	}
	f.inputs[0].Focus()
	return f
}

func (f *form) onLast() bool {
	return f.focus == len(f.inputs)-1
}

func (f *form) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// values returns trimmed input by field name, or an error naming the first
// empty required field.
func (f *form) values() (map[string]string, error) {
	out := make(map[string]string, len(f.inputs))
	for i, field := range f.item.Fields {
		v := strings.TrimSpace(f.inputs[i].Value())
		if v == "" && field.Required {
			return nil, fmt.Errorf("%s is required", strings.ToLower(field.Label))
		}
		out[field.Name] = v
	}
	return out, nil
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(keyStyle.Render(f.item.Label))
	b.WriteString("\n\n")
	for i, field := range f.item.Fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}
	if f.err != "" {
		b.WriteString(errorStyle.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("tab/enter next field, enter on the last field submits, esc back"))
	return b.String()
}
