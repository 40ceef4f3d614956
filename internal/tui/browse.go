// Package tui renders the admin tables and settings forms in the
// terminal. Network work runs as bubbletea commands; the models stay
// pure state machines driven by messages.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwalitptl/labadmin/internal/list"
	"github.com/jwalitptl/labadmin/internal/model"
	"github.com/jwalitptl/labadmin/pkg/apierr"
)

const requestTimeout = 10 * time.Second

// BrowseGateway is the gateway surface the browse view needs.
type BrowseGateway interface {
	List(ctx context.Context, res model.Resource) ([]model.Record, error)
	Create(ctx context.Context, res model.Resource, rec model.Record) (model.Record, error)
	Update(ctx context.Context, res model.Resource, id int64, rec model.Record) (model.Record, error)
	Delete(ctx context.Context, res model.Resource, id int64) error
	Invalidate(res model.Resource)
}

// Messages
type rowsLoadedMsg struct {
	gen  int
	rows []model.Record
	err  error
}

type deleteDoneMsg struct {
	id  int64
	err error
}

// pendingDelete is a delete waiting for explicit confirmation.
type pendingDelete struct {
	id    int64
	label string
}

// BrowseModel is the bubbletea model of one resource table.
type BrowseModel struct {
	gw  BrowseGateway
	res model.Resource
	ctl *list.Controller

	dataset []model.Record
	view    list.Result
	cursor  int

	loading      bool
	skeletonRows int
	// gen guards against stale fetches: a result whose generation is
	// not the current one is discarded instead of applied.
	gen int

	banner string // sticky read-failure banner
	notice string // transient mutation outcome

	search      textinput.Model
	searchFocus bool
	filterIdx   int

	confirm *pendingDelete
	detail  model.Record
	form    *recordForm

	spin   spinner.Model
	width  int
	height int
}

// NewBrowse builds the table view for a resource.
func NewBrowse(gw BrowseGateway, res model.Resource, perPage, skeletonRows int) BrowseModel {
	search := textinput.New()
	search.Placeholder = "search"
	search.CharLimit = 64
	search.Width = 24

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if skeletonRows < 1 {
		skeletonRows = 6
	}

	return BrowseModel{
		gw:           gw,
		res:          res,
		ctl:          list.NewController(res, perPage),
		loading:      true,
		skeletonRows: skeletonRows,
		search:       search,
		spin:         sp,
	}
}

// Init starts the first fetch.
func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.spin.Tick)
}

// fetch loads the dataset, tagging the result with the current
// generation.
func (m BrowseModel) fetch() tea.Cmd {
	gen, gw, res := m.gen, m.gw, m.res
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		rows, err := gw.List(ctx, res)
		return rowsLoadedMsg{gen: gen, rows: rows, err: err}
	}
}

func (m BrowseModel) deleteRecord(id int64) tea.Cmd {
	gw, res := m.gw, m.res
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return deleteDoneMsg{id: id, err: gw.Delete(ctx, res, id)}
	}
}

// Update handles messages and updates the model.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case rowsLoadedMsg:
		if msg.gen != m.gen {
			// superseded fetch, never applied
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.dataset = nil
			m.banner = friendlyError(msg.err)
			m.rederive()
			return m, nil
		}
		m.banner = ""
		m.dataset = msg.rows
		m.rederive()
		return m, nil

	case deleteDoneMsg:
		return m.handleDeleteDone(msg)

	case recordSavedMsg:
		return m.handleRecordSaved(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m BrowseModel) handleDeleteDone(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if apierr.CodeOf(msg.err) == apierr.CodeNotFound {
			// record vanished upstream: drop it locally, non-fatal
			m.dropRecord(msg.id)
			m.notice = "record was already gone, removed from the list"
			m.rederive()
			return m, nil
		}
		m.notice = friendlyError(msg.err)
		return m, nil
	}
	m.notice = "record deleted"
	m.loading = true
	m.gen++
	return m, tea.Batch(m.fetch(), m.spin.Tick)
}

func (m BrowseModel) saveRecord(id int64, rec model.Record) tea.Cmd {
	gw, res := m.gw, m.res
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if id == 0 {
			saved, err := gw.Create(ctx, res, rec)
			return recordSavedMsg{rec: saved, err: err}
		}
		saved, err := gw.Update(ctx, res, id, rec)
		return recordSavedMsg{rec: saved, err: err}
	}
}

func (m BrowseModel) handleRecordSaved(msg recordSavedMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	m.form.saving = false
	if msg.err != nil {
		if fields := apierr.FieldErrors(msg.err); len(fields) > 0 {
			// form stays open, errors land next to their fields, the
			// table keeps the rows it had
			m.form.fieldErrs = fields
			return m, nil
		}
		m.form.fieldErrs = nil
		m.notice = friendlyError(msg.err)
		m.form = nil
		return m, nil
	}
	m.notice = "record saved"
	if m.form.creating() {
		m.notice = "record created"
	}
	m.form = nil
	m.loading = true
	m.gen++
	return m, tea.Batch(m.fetch(), m.spin.Tick)
}

func (m *BrowseModel) dropRecord(id int64) {
	kept := m.dataset[:0:0]
	for _, rec := range m.dataset {
		if recID, ok := rec.ID(); ok && recID == id {
			continue
		}
		kept = append(kept, rec)
	}
	m.dataset = kept
}

func (m BrowseModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		closed, save, cmd := m.form.handleKey(msg)
		if closed {
			m.form = nil
			return m, nil
		}
		if save {
			return m, m.saveRecord(m.form.id, m.form.record())
		}
		return m, cmd
	}

	// confirmation overlay swallows every key: only an explicit yes
	// fires the delete, everything else cancels or is ignored
	if m.confirm != nil {
		switch msg.String() {
		case "y", "enter":
			pending := *m.confirm
			m.confirm = nil
			return m, m.deleteRecord(pending.id)
		case "n", "esc":
			m.confirm = nil
			return m, nil
		default:
			return m, nil
		}
	}

	if m.detail != nil {
		switch msg.String() {
		case "esc", "q", "enter":
			m.detail = nil
		}
		return m, nil
	}

	if m.searchFocus {
		switch msg.String() {
		case "enter", "esc":
			m.searchFocus = false
			m.search.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.ctl.SetSearchTerm(m.search.Value())
			m.rederive()
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "/":
		m.searchFocus = true
		m.search.Focus()
		return m, textinput.Blink

	case "f":
		m.cycleFilter()
		return m, nil

	case "r":
		// drop the cached list first, otherwise the refresh would be
		// answered from the cache and show the same rows again
		m.gw.Invalidate(m.res)
		m.loading = true
		m.gen++
		m.notice = ""
		return m, tea.Batch(m.fetch(), m.spin.Tick)

	case "n":
		if len(m.res.FormFields) > 0 {
			m.form = newRecordForm(m.res, nil)
			m.notice = ""
		}
		return m, nil

	case "e":
		if len(m.res.FormFields) > 0 && m.cursor < len(m.view.Rows) {
			m.form = newRecordForm(m.res, m.view.Rows[m.cursor])
			m.notice = ""
		}
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view.Rows)-1 {
			m.cursor++
		}

	case "left", "h":
		if m.ctl.SetPage(m.ctl.Page() - 1) {
			m.cursor = 0
			m.rederive()
		}
	case "right", "l":
		if m.ctl.SetPage(m.ctl.Page() + 1) {
			m.cursor = 0
			m.rederive()
		}

	case "enter":
		if m.cursor < len(m.view.Rows) {
			m.detail = m.view.Rows[m.cursor]
		}

	case "d":
		if m.cursor < len(m.view.Rows) {
			rec := m.view.Rows[m.cursor]
			if id, ok := rec.ID(); ok {
				m.confirm = &pendingDelete{id: id, label: m.rowLabel(rec)}
			}
		}

	default:
		// digit keys toggle sort on the n-th column
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(m.res.Columns) {
			m.ctl.ToggleSort(m.res.Columns[n-1].Key)
			m.rederive()
		}
	}

	return m, nil
}

func (m *BrowseModel) cycleFilter() {
	if m.res.FilterField == "" || len(m.res.FilterValues) == 0 {
		return
	}
	m.filterIdx = (m.filterIdx + 1) % len(m.res.FilterValues)
	m.ctl.SetActiveFilter(m.res.FilterValues[m.filterIdx])
	m.rederive()
}

func (m *BrowseModel) rederive() {
	m.view = m.ctl.Derive(m.dataset)
	if m.cursor >= len(m.view.Rows) {
		m.cursor = len(m.view.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m BrowseModel) rowLabel(rec model.Record) string {
	if len(m.res.Columns) > 0 {
		return m.res.Columns[0].Cell(rec)
	}
	if id, ok := rec.ID(); ok {
		return fmt.Sprintf("#%d", id)
	}
	return "record"
}

// View renders the table view.
func (m BrowseModel) View() string {
	var b strings.Builder

	title := titleStyle.Render(" labadmin ")
	status := ""
	switch {
	case m.loading:
		status = m.spin.View() + " loading"
	case m.banner != "":
		status = errorStyle.Render("✗ " + m.banner)
	default:
		status = successStyle.Render(fmt.Sprintf("%d records", m.view.Total))
	}
	b.WriteString(title + "  " + m.res.Label + "  " + status + "\n\n")

	b.WriteString(m.renderToolbar() + "\n")
	b.WriteString(m.renderTable())
	b.WriteString(m.renderFooter())

	if m.confirm != nil {
		box := confirmBoxStyle.Render(fmt.Sprintf(
			"Delete %q?\n\n%s confirm   %s cancel",
			m.confirm.label,
			keyStyle.Render("[y]"),
			keyStyle.Render("[n]"),
		))
		b.WriteString("\n" + box + "\n")
	}

	if m.detail != nil {
		b.WriteString("\n" + m.renderDetail())
	}

	if m.form != nil {
		b.WriteString("\n" + m.form.render() + "\n")
	}

	return b.String()
}

func (m BrowseModel) renderToolbar() string {
	parts := []string{"/ " + m.search.View()}
	if m.res.FilterField != "" {
		active := list.FilterAll
		if len(m.res.FilterValues) > 0 {
			active = m.res.FilterValues[m.filterIdx]
		}
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("[f] %s: %s", m.res.FilterField, active)))
	}
	if key, dir := m.ctl.Sort(); key != "" {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("sort: %s %s", key, dir)))
	}
	return strings.Join(parts, "   ")
}

func (m BrowseModel) renderTable() string {
	var b strings.Builder

	// header
	cells := make([]string, 0, len(m.res.Columns))
	sortKey, sortDir := m.ctl.Sort()
	for i, col := range m.res.Columns {
		label := fmt.Sprintf("%d:%s", i+1, col.Title)
		if col.Key == sortKey {
			arrow := "↑"
			if sortDir == list.Desc {
				arrow = "↓"
			}
			label += arrow
		}
		cells = append(cells, pad(label, col.Width))
	}
	b.WriteString("  " + headerRowStyle.Render(strings.Join(cells, " ")) + "\n")

	switch {
	case m.loading:
		// fixed number of placeholder rows, never mixed with data
		for i := 0; i < m.skeletonRows; i++ {
			cells := make([]string, 0, len(m.res.Columns))
			for _, col := range m.res.Columns {
				cells = append(cells, pad(strings.Repeat("░", min(col.Width, 8)), col.Width))
			}
			b.WriteString("  " + skeletonStyle.Render(strings.Join(cells, " ")) + "\n")
		}

	case len(m.view.Rows) == 0:
		// one informational row spanning the full table width
		width := 0
		for _, col := range m.res.Columns {
			width += col.Width + 1
		}
		msg := m.emptyMessage()
		b.WriteString("  " + emptyStyle.Render(pad(msg, width)) + "\n")

	default:
		for i, rec := range m.view.Rows {
			cells := make([]string, 0, len(m.res.Columns))
			for _, col := range m.res.Columns {
				cells = append(cells, pad(col.Cell(rec), col.Width))
			}
			row := strings.Join(cells, " ")
			if i == m.cursor {
				b.WriteString("▶ " + selectedRowStyle.Render(row) + "\n")
			} else {
				b.WriteString("  " + row + "\n")
			}
		}
	}

	return b.String()
}

func (m BrowseModel) emptyMessage() string {
	if m.banner != "" {
		return "no data: " + m.banner
	}
	if m.ctl.SearchTerm() != "" || m.ctl.ActiveFilter() != list.FilterAll {
		return "no records match the current filters"
	}
	if m.res.EmptyMessage != "" {
		return m.res.EmptyMessage
	}
	return "no records yet"
}

func (m BrowseModel) renderFooter() string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("\n  page %d/%d", m.view.Page, m.view.TotalPages)))
	help := "←/→ pages · / search · f filter · 1-9 sort · enter view · d delete · r refresh · q quit"
	if len(m.res.FormFields) > 0 {
		help = "←/→ pages · / search · f filter · enter view · n new · e edit · d delete · r refresh · q quit"
	}
	b.WriteString("  " + keyDescStyle.Render(help))
	if m.notice != "" {
		b.WriteString("\n  " + warningStyle.Render(m.notice))
	}
	if m.banner != "" && !m.loading {
		b.WriteString("\n  " + errorStyle.Render(m.banner))
	}
	return b.String() + "\n"
}

func (m BrowseModel) renderDetail() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Record detail") + "\n")
	for _, col := range m.res.Columns {
		b.WriteString(fieldLabelStyle.Render(col.Title) + " " + col.Cell(m.detail) + "\n")
	}
	if id, ok := m.detail.ID(); ok {
		b.WriteString(fieldLabelStyle.Render("ID") + " " + strconv.FormatInt(id, 10) + "\n")
	}
	b.WriteString(keyDescStyle.Render("esc to close"))
	return b.String()
}

// friendlyError maps gateway failures to short user-facing messages.
// Auth problems tell the user to sign in again instead of showing a
// generic failure.
func friendlyError(err error) string {
	switch apierr.CodeOf(err) {
	case apierr.CodeUnauthorized:
		return "session expired, set a fresh token and retry"
	case apierr.CodeForbidden:
		return "access denied for this resource"
	case apierr.CodeNetwork:
		return "server unreachable"
	case apierr.CodeMalformed:
		return "server sent an unexpected response"
	default:
		var apiErr *apierr.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return "request failed"
	}
}

func pad(s string, width int) string {
	if len([]rune(s)) > width {
		runes := []rune(s)
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len([]rune(s)))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
