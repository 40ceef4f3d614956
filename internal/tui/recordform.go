package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwalitptl/labadmin/internal/model"
)

// recordSavedMsg carries the outcome of a record create or update.
type recordSavedMsg struct {
	rec model.Record
	err error
}

// recordForm is the inline create/edit overlay of the browse view. It
// holds string buffers for the resource's declared form fields; the
// buffers only reach the server on ctrl+s.
type recordForm struct {
	res    model.Resource
	id     int64 // 0 while creating
	values map[string]string

	focus   int
	editing bool
	input   textinput.Model

	fieldErrs map[string][]string
	saving    bool
}

// newRecordForm opens the overlay. A nil record means create; an
// existing record pre-fills the buffers and pins its id.
func newRecordForm(res model.Resource, rec model.Record) *recordForm {
	values := make(map[string]string, len(res.FormFields))
	var id int64
	if rec != nil {
		id, _ = rec.ID()
		for _, f := range res.FormFields {
			values[f.Key] = rec.String(f.Key)
		}
	}
	return &recordForm{res: res, id: id, values: values}
}

func (f *recordForm) creating() bool { return f.id == 0 }

// record builds the payload. Purely numeric buffers become JSON
// numbers again so fields like year survive the string round trip.
func (f *recordForm) record() model.Record {
	rec := make(model.Record, len(f.values))
	for key, value := range f.values {
		if n, err := strconv.ParseFloat(value, 64); err == nil && value != "" {
			rec[key] = n
			continue
		}
		rec[key] = value
	}
	return rec
}

// handleKey processes one key press. It reports whether the overlay
// should close and, for ctrl+s, hands back a save request.
func (f *recordForm) handleKey(msg tea.KeyMsg) (closed bool, save bool, cmd tea.Cmd) {
	if f.saving {
		return false, false, nil
	}

	if f.editing {
		switch msg.String() {
		case "esc":
			f.editing = false
		case "enter":
			f.editing = false
			f.values[f.res.FormFields[f.focus].Key] = f.input.Value()
		default:
			f.input, cmd = f.input.Update(msg)
		}
		return false, false, cmd
	}

	switch msg.String() {
	case "esc", "q":
		return true, false, nil
	case "up", "k":
		if f.focus > 0 {
			f.focus--
		}
	case "down", "j", "tab":
		if f.focus < len(f.res.FormFields)-1 {
			f.focus++
		}
	case "enter":
		field := f.res.FormFields[f.focus]
		f.input = textinput.New()
		f.input.SetValue(f.values[field.Key])
		f.input.Width = 48
		f.input.Focus()
		f.editing = true
		return false, false, textinput.Blink
	case "ctrl+s":
		f.saving = true
		return false, true, nil
	}
	return false, false, nil
}

func (f *recordForm) render() string {
	var b strings.Builder

	title := fmt.Sprintf("New %s record", f.res.Name)
	if !f.creating() {
		title = fmt.Sprintf("Edit %s #%d", f.res.Name, f.id)
	}
	b.WriteString(sectionStyle.Render(title) + "\n")

	for i, field := range f.res.FormFields {
		marker := "  "
		if i == f.focus {
			marker = "▶ "
		}
		if f.editing && i == f.focus {
			b.WriteString(marker + fieldLabelStyle.Render(field.Label) + " " + f.input.View() + "\n")
		} else {
			value := f.values[field.Key]
			if value == "" {
				value = mutedStyle.Render("(empty)")
			} else if i == f.focus {
				value = selectedRowStyle.Render(value)
			}
			b.WriteString(marker + fieldLabelStyle.Render(field.Label) + " " + value + "\n")
		}
		for _, e := range f.fieldErrs[field.Key] {
			b.WriteString("    " + fieldErrorStyle.Render(e) + "\n")
		}
	}

	if f.saving {
		b.WriteString(keyDescStyle.Render("saving..."))
	} else {
		b.WriteString(keyDescStyle.Render("↑/↓ move · enter edit · ctrl+s save · esc cancel"))
	}
	return confirmBoxStyle.Render(b.String())
}
