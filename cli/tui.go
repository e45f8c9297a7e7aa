package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fahmaliyi/passkeeper/app"
	"github.com/fahmaliyi/passkeeper/vault"
)

type viewState int

const (
	stateTable viewState = iota
	stateShowEntry
	stateForm
)

const (
	fieldTitle = iota
	fieldUsername
	fieldPassword
	fieldURL
	fieldNotes
)

type model struct {
	ctx        context.Context
	cmds       *app.Commands
	clip       Clipboard
	clipTTL    time.Duration
	entries    []vault.Record
	cursor     int
	state      viewState
	textInputs []textinput.Model
	selected   *vault.Record
	editingID  string // empty when the form adds a new entry
	reveal     bool
	msg        string
	err        string
}

type clearMsg struct{}

type clearClipboardMsg struct{ secret string }

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	msgStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("0"))
)

// RunTUI starts the interactive TUI on an unlocked vault.
func RunTUI(ctx context.Context, cmds *app.Commands, clip Clipboard, clipTTL time.Duration) error {
	m := newModel(ctx, cmds, clip, clipTTL)
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

func newModel(ctx context.Context, cmds *app.Commands, clip Clipboard, clipTTL time.Duration) model {
	m := model{
		ctx:        ctx,
		cmds:       cmds,
		clip:       clip,
		clipTTL:    clipTTL,
		state:      stateTable,
		textInputs: newFormInputs(),
	}
	m.refresh()
	return m
}

func newFormInputs() []textinput.Model {
	placeholders := []string{"Title", "Username", "Password", "URL (optional)", "Notes (optional)"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		ti := textinput.New()
		ti.Placeholder = p
		ti.CharLimit = 512
		if i == fieldPassword {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	return inputs
}

func (m *model) refresh() {
	entries, err := m.cmds.GetAll(m.ctx)
	if err != nil {
		m.err = app.Message(err)
		m.entries = nil
	} else {
		m.err = ""
		m.entries = entries
	}
	if m.cursor >= len(m.entries) {
		m.cursor = max(len(m.entries)-1, 0)
	}
}

func (m *model) flash(msg string) tea.Cmd {
	m.msg = msg
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg { return clearMsg{} })
}

// --- Tea Model interface ---
func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clearMsg:
		m.msg = ""
		m.reveal = false
		return m, nil
	case clearClipboardMsg:
		clearIfUnchanged(m.clip, msg.secret)
		return m, nil
	}

	switch m.state {
	case stateTable:
		return updateTable(m, msg)
	case stateShowEntry:
		return updateShowEntry(m, msg)
	case stateForm:
		return updateForm(m, msg)
	default:
		return m, nil
	}
}

func (m model) View() string {
	switch m.state {
	case stateTable:
		return viewTable(m)
	case stateShowEntry:
		return viewShowEntry(m)
	case stateForm:
		return viewForm(m)
	default:
		return "Unknown state"
	}
}

// --- Table ---
func updateTable(m model, msg tea.Msg) (model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if len(m.entries) > 0 {
			e := m.entries[m.cursor]
			m.selected = &e
			m.state = stateShowEntry
		}
	case "a":
		return m.openForm(nil)
	case "e":
		if len(m.entries) > 0 {
			e := m.entries[m.cursor]
			return m.openForm(&e)
		}
	case "d":
		if len(m.entries) == 0 {
			return m, nil
		}
		if err := m.cmds.Delete(m.ctx, m.entries[m.cursor].ID); err != nil {
			m.err = app.Message(err)
			return m, nil
		}
		m.refresh()
		cmd := m.flash("Entry deleted.")
		return m, cmd
	case "c":
		if len(m.entries) == 0 {
			return m, nil
		}
		return m.copyPassword(m.entries[m.cursor].Password)
	case "r":
		m.refresh()
	}
	return m, nil
}

func (m model) copyPassword(secret string) (model, tea.Cmd) {
	if err := m.clip.WriteAll(secret); err != nil {
		m.err = "Clipboard: " + err.Error()
		return m, nil
	}
	if m.clipTTL <= 0 {
		cmd := m.flash("Password copied!")
		return m, cmd
	}
	flash := m.flash(fmt.Sprintf("Password copied! (clears in %s)", m.clipTTL))
	wipe := tea.Tick(m.clipTTL, func(time.Time) tea.Msg { return clearClipboardMsg{secret: secret} })
	return m, tea.Batch(flash, wipe)
}

func viewTable(m model) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Vault Entries") + "\n\n")
	if len(m.entries) == 0 {
		b.WriteString("(no entries)\n")
	}
	for i, e := range m.entries {
		line := fmt.Sprintf("%-36s  %-20s  %-20s", e.ID, e.Title, e.Username)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if m.err != "" {
		b.WriteString("\n" + errStyle.Render(m.err))
	}
	if m.msg != "" {
		b.WriteString("\n" + msgStyle.Render(m.msg))
	}
	b.WriteString("\nCommands: j/k=move, enter=show, a=add, e=edit, d=delete, c=copy, r=reload, q=quit")
	return b.String()
}

// --- Show Entry ---
func updateShowEntry(m model, msg tea.Msg) (model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "q":
		m.state = stateTable
		m.selected = nil
		m.reveal = false
	case "v":
		// temporarily reveal secret
		m.reveal = true
		cmd := m.flash("")
		return m, cmd
	case "c":
		return m.copyPassword(m.selected.Password)
	case "e":
		e := *m.selected
		return m.openForm(&e)
	}
	return m, nil
}

func viewShowEntry(m model) string {
	e := m.selected
	secret := "********"
	if m.reveal {
		secret = e.Password
	}
	s := fmt.Sprintf("Title: %s\nUsername: %s\nPassword: %s\nURL: %s\nNotes: %s\n",
		e.Title, e.Username, secret, e.URL, e.Notes)
	s += fmt.Sprintf("Created: %s\nUpdated: %s\n",
		time.Unix(e.CreatedAt, 0).Format(time.DateTime), time.Unix(e.UpdatedAt, 0).Format(time.DateTime))
	if m.msg != "" {
		s += "\n" + msgStyle.Render(m.msg)
	}
	s += "\nPress 'v' to reveal, 'c' to copy, 'e' to edit, Esc to return"
	return s
}

// --- Add / Edit form ---
func (m model) openForm(existing *vault.Record) (model, tea.Cmd) {
	m.editingID = ""
	var f vault.Fields
	if existing != nil {
		m.editingID = existing.ID
		f = existing.Fields()
	}
	values := []string{f.Title, f.Username, f.Password, f.URL, f.Notes}
	for i := range m.textInputs {
		m.textInputs[i].SetValue(values[i])
		m.textInputs[i].Blur()
	}
	m.state = stateForm
	m.err = ""
	cmd := m.textInputs[fieldTitle].Focus()
	return m, cmd
}

func updateForm(m model, msg tea.Msg) (model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.state = stateTable
			return m, nil
		case "tab", "down":
			cmd := m.focusNext(false)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.focusNext(true)
			return m, cmd
		case "ctrl+g":
			pw, err := m.cmds.GeneratePassword(m.ctx, 20, true, true, true)
			if err != nil {
				m.err = app.Message(err)
				return m, nil
			}
			m.textInputs[fieldPassword].SetValue(pw)
			return m, nil
		case "ctrl+s":
			return saveForm(m)
		case "enter":
			if m.textInputs[len(m.textInputs)-1].Focused() {
				return saveForm(m)
			}
			cmd := m.focusNext(false)
			return m, cmd
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	for i := range m.textInputs {
		if m.textInputs[i].Focused() {
			m.textInputs[i], cmd = m.textInputs[i].Update(msg)
		}
	}
	return m, cmd
}

// Focus next or previous input
func (m *model) focusNext(backward bool) tea.Cmd {
	n := len(m.textInputs)
	for i := 0; i < n; i++ {
		if m.textInputs[i].Focused() {
			m.textInputs[i].Blur()
			if backward {
				return m.textInputs[(i-1+n)%n].Focus()
			}
			return m.textInputs[(i+1)%n].Focus()
		}
	}
	return m.textInputs[0].Focus()
}

func (m model) formFields() vault.Fields {
	return vault.Fields{
		Title:    strings.TrimSpace(m.textInputs[fieldTitle].Value()),
		Username: strings.TrimSpace(m.textInputs[fieldUsername].Value()),
		Password: m.textInputs[fieldPassword].Value(),
		URL:      strings.TrimSpace(m.textInputs[fieldURL].Value()),
		Notes:    strings.TrimSpace(m.textInputs[fieldNotes].Value()),
	}
}

// Save the entry to vault
func saveForm(m model) (model, tea.Cmd) {
	f := m.formFields()
	if f.Title == "" || f.Username == "" || f.Password == "" {
		m.err = "Title, username and password are required."
		return m, nil
	}

	var err error
	if m.editingID == "" {
		_, err = m.cmds.Add(m.ctx, f)
	} else {
		_, err = m.cmds.Update(m.ctx, m.editingID, f)
	}
	if err != nil {
		m.err = app.Message(err)
		return m, nil
	}

	// Clear text inputs
	for i := range m.textInputs {
		m.textInputs[i].SetValue("")
		m.textInputs[i].Blur()
	}
	done := "Entry added."
	if m.editingID != "" {
		done = "Entry updated."
	}
	m.editingID = ""
	m.selected = nil
	m.state = stateTable
	m.refresh()
	cmd := m.flash(done)
	return m, cmd
}

func viewForm(m model) string {
	heading := "Add New Entry"
	if m.editingID != "" {
		heading = "Edit Entry"
	}
	s := titleStyle.Render(heading) + "\n\n"
	for i, ti := range m.textInputs {
		s += fmt.Sprintf("%s: %s\n", ti.Placeholder, ti.View())
		if i < len(m.textInputs)-1 {
			s += "\n"
		}
	}
	if m.err != "" {
		s += "\n" + errStyle.Render(m.err) + "\n"
	}
	s += "\nTab to move, Ctrl+G to generate a password, Enter on the last field or Ctrl+S to save, Esc to cancel"
	return s
}
