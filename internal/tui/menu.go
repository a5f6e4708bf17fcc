// Package tui implements the interactive launcher shown when flagtrack runs
// without a subcommand.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Action identifies a menu entry.
type Action string

const (
	ActionAdd    Action = "add"
	ActionList   Action = "list"
	ActionUpdate Action = "update"
	ActionCheck  Action = "check"
	ActionReport Action = "report"
	ActionServe  Action = "serve"
	ActionHelp   Action = "help"
	ActionQuit   Action = "quit"
)

// Form field names carried in Selection.Values.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTargetDate  = "target_date"
	FieldCategory    = "category"
	FieldID          = "id"
	FieldProgress    = "progress"
	FieldNotes       = "notes"
)

// Field describes one input of an action's form.
type Field struct {
	Name        string
	Label       string
	Placeholder string
	Required    bool
}

// MenuItem is one launcher entry.
type MenuItem struct {
	Key         string
	Action      Action
	Label       string
	Description string
	Fields      []Field
}

// Items returns the launcher entries in display order.
func Items() []MenuItem {
	return []MenuItem{
		{Key: "1", Action: ActionAdd, Label: "Add flag", Description: "Record a new goal and score it",
			Fields: []Field{
				{Name: FieldTitle, Label: "Title", Placeholder: "Learn Go", Required: true},
				{Name: FieldDescription, Label: "Description", Placeholder: "Study 1 hour daily, finish 3 projects"},
				{Name: FieldTargetDate, Label: "Target date", Placeholder: "2026-12-31 or \"in 6 months\"", Required: true},
				{Name: FieldCategory, Label: "Category", Placeholder: "Other"},
			}},
		{Key: "2", Action: ActionList, Label: "List flags", Description: "Show every flag"},
		{Key: "3", Action: ActionUpdate, Label: "Update", Description: "Record progress on a flag",
			Fields: []Field{
				{Name: FieldID, Label: "Flag ID", Placeholder: "first 8 characters are enough", Required: true},
				{Name: FieldProgress, Label: "Progress", Placeholder: "0-100", Required: true},
				{Name: FieldNotes, Label: "Notes", Placeholder: "optional"},
			}},
		{Key: "4", Action: ActionCheck, Label: "Check", Description: "Reminders, deadlines and advice"},
		{Key: "5", Action: ActionReport, Label: "Report", Description: "Write a progress report file"},
		{Key: "6", Action: ActionServe, Label: "Web view", Description: "Serve the read-only browser view"},
		{Key: "7", Action: ActionHelp, Label: "Help", Description: "How flagtrack works"},
		{Key: "q", Action: ActionQuit, Label: "Quit", Description: "Leave flagtrack"},
	}
}

// Selection is what the user picked. Values holds form input by field name.
type Selection struct {
	Action Action
	Values map[string]string
}

// Menu is the launcher model.
type Menu struct {
	items    []MenuItem
	selected int
	width    int

	form   *form
	result *Selection
	notice string
}

// NewMenu creates a launcher. notice is shown under the title, typically
// the outcome of the previous action.
func NewMenu(notice string) *Menu {
	return &Menu{
		items:  Items(),
		width:  72,
		notice: notice,
	}
}

// Result returns the selection once the program has quit.
func (m *Menu) Result() (Selection, bool) {
	if m.result == nil {
		return Selection{}, false
	}
	return *m.result, true
}

// Init implements tea.Model.
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		return m, nil
	}
	if m.form != nil {
		return m.updateForm(msg)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		return m.finish(Selection{Action: ActionQuit})
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.items)-1 {
			m.selected++
		}
		return m, nil
	case "enter":
		return m.choose(m.items[m.selected])
	}
	for i, item := range m.items {
		if key.String() == item.Key {
			m.selected = i
			return m.choose(item)
		}
	}
	return m, nil
}

func (m *Menu) choose(item MenuItem) (tea.Model, tea.Cmd) {
	if len(item.Fields) == 0 {
		return m.finish(Selection{Action: item.Action})
	}
	m.form = newForm(item)
	return m, textinput.Blink
}

func (m *Menu) finish(sel Selection) (tea.Model, tea.Cmd) {
	m.result = &sel
	return m, tea.Quit
}

func (m *Menu) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, m.form.updateInput(msg)
	}
	switch key.String() {
	case "ctrl+c":
		return m.finish(Selection{Action: ActionQuit})
	case "esc":
		m.form = nil
		return m, nil
	case "tab", "down":
		m.form.move(1)
		return m, nil
	case "shift+tab", "up":
		m.form.move(-1)
		return m, nil
	case "enter":
		if !m.form.onLast() {
			m.form.move(1)
			return m, nil
		}
		values, err := m.form.values()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		return m.finish(Selection{Action: m.form.item.Action, Values: values})
	}
	return m, m.form.updateInput(msg)
}

// View implements tea.Model.
func (m *Menu) View() string {
	if m.result != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("flagtrack"))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(dimStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.form != nil {
		b.WriteString(m.form.view())
		return panelStyle.Width(m.panelWidth()).Render(b.String())
	}

	contentWidth := m.panelWidth() - 2
	for i, item := range m.items {
		line := fmt.Sprintf("[%s] %-12s %s", item.Key, item.Label, item.Description)
		if i == m.selected {
			if w := lipgloss.Width(line); w < contentWidth {
				line += strings.Repeat(" ", contentWidth-w)
			}
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(keyStyle.Render("["+item.Key+"]") + fmt.Sprintf(" %-12s ", item.Label) + descStyle.Render(item.Description))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press a key or enter to choose, j/k to navigate, esc to quit"))
	return panelStyle.Width(m.panelWidth()).Render(b.String())
}

func (m *Menu) panelWidth() int {
	return max(40, min(m.width-2, 90))
}

// Run shows the launcher until the user picks an entry.
func Run(in io.Reader, out io.Writer, notice string) (Selection, error) {
	m := NewMenu(notice)
	opts := []tea.ProgramOption{tea.WithOutput(out)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return Selection{}, fmt.Errorf("menu failed: %w", err)
	}
	sel, ok := m.Result()
	if !ok {
		return Selection{Action: ActionQuit}, nil
	}
	return sel, nil
}
