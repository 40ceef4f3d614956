package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwalitptl/labadmin/internal/model"
	"github.com/jwalitptl/labadmin/internal/settings"
	"github.com/jwalitptl/labadmin/pkg/apierr"
)

// Messages
type settingsLoadedMsg struct {
	err error
}

type saveDoneMsg struct {
	outcome settings.SaveOutcome
}

type fileReadMsg struct {
	key      string
	filename string
	content  []byte
	err      error
}

// formField is one row of the flattened form, carrying the section
// title it opens if it is the first field of that section.
type formField struct {
	section string
	field   model.SettingsField
}

// FormModel edits one settings page through a sectioned form. All
// edits buffer in the settings controller until ctrl+s.
type FormModel struct {
	ctl  *settings.Controller
	page model.SettingsPage

	fields []formField
	focus  int

	// editing is true while the focused field has an active widget
	editing  bool
	input    textinput.Model
	area     textarea.Model
	filePick bool // input holds a filesystem path, not a value

	fieldErrs map[string][]string
	notice    string
	banner    string

	spin   spinner.Model
	width  int
	height int
}

// NewForm builds a form over an already constructed controller. Load
// runs as the Init command.
func NewForm(ctl *settings.Controller, page model.SettingsPage) FormModel {
	var fields []formField
	for _, sec := range page.Sections {
		for i, f := range sec.Fields {
			row := formField{field: f}
			if i == 0 {
				row.section = sec.Title
			}
			fields = append(fields, row)
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return FormModel{
		ctl:    ctl,
		page:   page,
		fields: fields,
		spin:   sp,
	}
}

func (m FormModel) Init() tea.Cmd {
	ctl := m.ctl
	load := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return settingsLoadedMsg{err: ctl.Load(ctx)}
	}
	return tea.Batch(load, m.spin.Tick)
}

func (m FormModel) save() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return saveDoneMsg{outcome: ctl.Save(ctx)}
	}
}

func readFile(key, path string) tea.Cmd {
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		return fileReadMsg{key: key, filename: filepath.Base(path), content: content, err: err}
	}
}

func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.ctl.State() != settings.StateLoading && m.ctl.State() != settings.StateSaving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case settingsLoadedMsg:
		if msg.err != nil {
			m.banner = friendlyError(msg.err)
		}
		return m, nil

	case saveDoneMsg:
		return m.handleSaveDone(msg)

	case fileReadMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("cannot read file: %v", msg.err)
			return m, nil
		}
		m.ctl.SetFile(msg.key, msg.filename, msg.content)
		m.notice = fmt.Sprintf("staged %s, saved on ctrl+s", msg.filename)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m FormModel) handleSaveDone(msg saveDoneMsg) (tea.Model, tea.Cmd) {
	out := msg.outcome
	if out.Ignored {
		return m, nil
	}
	if out.Err != nil {
		m.fieldErrs = apierr.FieldErrors(out.Err)
		if len(m.fieldErrs) > 0 {
			m.notice = "validation failed, see fields below"
		} else {
			m.notice = friendlyError(out.Err)
		}
		return m, nil
	}
	m.fieldErrs = nil
	m.notice = "settings saved"
	return m, nil
}

func (m FormModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.focus > 0 {
			m.focus--
		}
	case "down", "j", "tab":
		if m.focus < len(m.fields)-1 {
			m.focus++
		}

	case "enter":
		return m.beginEdit()

	case "x":
		f := m.fields[m.focus].field
		if f.Type == model.FieldFile {
			m.ctl.ClearFile(f.Key)
			m.notice = "staged file cleared"
		}

	case "ctrl+s":
		if m.ctl.State() == settings.StateSaving {
			return m, nil
		}
		m.notice = ""
		return m, tea.Batch(m.save(), m.spin.Tick)
	}

	return m, nil
}

func (m FormModel) beginEdit() (tea.Model, tea.Cmd) {
	f := m.fields[m.focus].field
	switch f.Type {
	case model.FieldTextarea:
		m.area = textarea.New()
		m.area.SetValue(m.ctl.Field(f.Key))
		m.area.SetWidth(60)
		m.area.SetHeight(5)
		m.area.Focus()
		m.editing = true
		return m, textarea.Blink

	case model.FieldFile:
		m.input = textinput.New()
		m.input.Placeholder = "path to file"
		m.input.Width = 48
		m.input.Focus()
		m.editing = true
		m.filePick = true
		return m, textinput.Blink

	default:
		m.input = textinput.New()
		m.input.SetValue(m.ctl.Field(f.Key))
		m.input.Width = 48
		m.input.Focus()
		m.editing = true
		return m, textinput.Blink
	}
}

func (m FormModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.fields[m.focus].field

	switch msg.String() {
	case "esc":
		// discard the widget, the controller buffer stays untouched
		m.editing = false
		m.filePick = false
		return m, nil

	case "enter":
		if f.Type == model.FieldTextarea {
			break // newline inside the textarea
		}
		m.editing = false
		if m.filePick {
			m.filePick = false
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				return m, nil
			}
			return m, readFile(f.Key, path)
		}
		m.ctl.SetField(f.Key, m.input.Value())
		return m, nil

	case "ctrl+d":
		if f.Type == model.FieldTextarea {
			m.editing = false
			m.ctl.SetField(f.Key, m.area.Value())
			return m, nil
		}
	}

	var cmd tea.Cmd
	if f.Type == model.FieldTextarea {
		m.area, cmd = m.area.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m FormModel) View() string {
	var b strings.Builder

	status := ""
	switch m.ctl.State() {
	case settings.StateLoading:
		status = m.spin.View() + " loading"
	case settings.StateSaving:
		status = m.spin.View() + " saving"
	case settings.StateError:
		status = errorStyle.Render("✗ load failed, editing defaults")
	default:
		status = successStyle.Render("ready")
	}
	b.WriteString(titleStyle.Render(" labadmin ") + "  settings: " + m.page.Name + "  " + status + "\n\n")

	for i, row := range m.fields {
		if row.section != "" {
			b.WriteString(sectionStyle.Render(row.section) + "\n")
		}
		b.WriteString(m.renderField(i, row.field))
	}

	b.WriteString("\n" + keyDescStyle.Render("↑/↓ move · enter edit · x clear file · ctrl+s save · q quit"))
	if m.notice != "" {
		b.WriteString("\n" + warningStyle.Render(m.notice))
	}
	if m.banner != "" {
		b.WriteString("\n" + errorStyle.Render(m.banner))
	}
	return b.String() + "\n"
}

func (m FormModel) renderField(i int, f model.SettingsField) string {
	var b strings.Builder

	marker := "  "
	if i == m.focus {
		marker = "▶ "
	}

	label := fieldLabelStyle.Render(f.Label)

	if m.editing && i == m.focus {
		b.WriteString(marker + label + "\n")
		if f.Type == model.FieldTextarea {
			b.WriteString(m.area.View() + "\n")
			b.WriteString(keyDescStyle.Render("  ctrl+d apply · esc cancel") + "\n")
		} else {
			b.WriteString("  " + m.input.View() + "\n")
		}
	} else {
		value := m.fieldValue(f)
		line := marker + label + " " + value
		if i == m.focus {
			line = marker + label + " " + selectedRowStyle.Render(value)
		}
		b.WriteString(line + "\n")
	}

	for _, e := range m.fieldErrs[f.Key] {
		b.WriteString("    " + fieldErrorStyle.Render(e) + "\n")
	}

	return b.String()
}

func (m FormModel) fieldValue(f model.SettingsField) string {
	if f.Type == model.FieldFile {
		preview := m.ctl.Preview(f.Key)
		switch {
		case preview == "":
			return mutedStyle.Render("(none)")
		case m.ctl.HasPending(f.Key):
			return warningStyle.Render(preview + " (staged)")
		default:
			return preview
		}
	}

	value := m.ctl.Field(f.Key)
	if value == "" {
		return mutedStyle.Render("(empty)")
	}
	if f.Type == model.FieldTextarea {
		value = strings.ReplaceAll(value, "\n", " ")
		if len([]rune(value)) > 50 {
			value = string([]rune(value)[:49]) + "…"
		}
	}
	return value
}
