package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/labadmin/internal/model"
	"github.com/jwalitptl/labadmin/pkg/apierr"
)

type fakeGateway struct {
	rows       []model.Record
	fresh      []model.Record // swapped in by Invalidate, like a cache drop
	listErr    error
	saveErr    error
	deleteErr  error
	deletedIDs []int64
	created    []model.Record
	updated    map[int64]model.Record
	dropped    int
}

func (f *fakeGateway) List(ctx context.Context, res model.Resource) ([]model.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakeGateway) Create(ctx context.Context, res model.Resource, rec model.Record) (model.Record, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.created = append(f.created, rec)
	return rec, nil
}

func (f *fakeGateway) Update(ctx context.Context, res model.Resource, id int64, rec model.Record) (model.Record, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if f.updated == nil {
		f.updated = make(map[int64]model.Record)
	}
	f.updated[id] = rec
	return rec, nil
}

func (f *fakeGateway) Delete(ctx context.Context, res model.Resource, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeGateway) Invalidate(res model.Resource) {
	f.dropped++
	if f.fresh != nil {
		f.rows = f.fresh
	}
}

func membersResource(t *testing.T) model.Resource {
	t.Helper()
	res, ok := model.ResourceByName("members")
	require.True(t, ok)
	return res
}

func sampleRows() []model.Record {
	return []model.Record{
		{"id": float64(1), "name": "Amina", "email": "amina@lab.test", "status": "active"},
		{"id": float64(2), "name": "Bruno", "email": "bruno@lab.test", "status": "inactive"},
		{"id": float64(3), "name": "Chen", "email": "chen@lab.test", "status": "active"},
	}
}

func loadedModel(t *testing.T, gw *fakeGateway) BrowseModel {
	t.Helper()
	m := NewBrowse(gw, membersResource(t), 10, 4)
	next, _ := m.Update(rowsLoadedMsg{gen: 0, rows: gw.rows, err: gw.listErr})
	return next.(BrowseModel)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestSkeletonRowsWhileLoading(t *testing.T) {
	m := NewBrowse(&fakeGateway{}, membersResource(t), 10, 4)

	out := m.View()
	skeleton := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "░") {
			skeleton++
		}
	}
	assert.Equal(t, 4, skeleton, "exactly the configured number of placeholder rows")
	assert.NotContains(t, out, "no records")
}

func TestEmptyStateSingleRow(t *testing.T) {
	m := loadedModel(t, &fakeGateway{rows: nil})

	out := m.View()
	assert.Contains(t, out, "no members yet, add the permanent staff first")
	assert.NotContains(t, out, "░")
}

func TestEmptyStateAfterFiltering(t *testing.T) {
	m := loadedModel(t, &fakeGateway{rows: sampleRows()})

	next, _ := m.Update(key("/"))
	m = next.(BrowseModel)
	for _, r := range "zzz" {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(BrowseModel)
	}

	out := m.View()
	assert.Contains(t, out, "no records match the current filters")
}

func TestStaleFetchIgnored(t *testing.T) {
	gw := &fakeGateway{rows: sampleRows()}
	m := loadedModel(t, gw)

	// refresh bumps the generation; the old in-flight result must not
	// overwrite what the refresh brings back
	next, _ := m.Update(key("r"))
	m = next.(BrowseModel)

	next, _ = m.Update(rowsLoadedMsg{gen: 0, rows: nil, err: nil})
	m = next.(BrowseModel)
	assert.True(t, m.loading, "stale result must not end the loading state")

	next, _ = m.Update(rowsLoadedMsg{gen: 1, rows: sampleRows(), err: nil})
	m = next.(BrowseModel)
	assert.False(t, m.loading)
	assert.Len(t, m.view.Rows, 3)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	gw := &fakeGateway{rows: sampleRows()}
	m := loadedModel(t, gw)

	next, _ := m.Update(key("d"))
	m = next.(BrowseModel)
	require.NotNil(t, m.confirm)
	assert.Contains(t, m.View(), "Delete")

	next, cmd := m.Update(key("y"))
	m = next.(BrowseModel)
	require.NotNil(t, cmd)
	assert.Nil(t, m.confirm)

	msg := cmd()
	done, ok := msg.(deleteDoneMsg)
	require.True(t, ok)
	assert.Equal(t, int64(1), done.id)
	assert.Equal(t, []int64{1}, gw.deletedIDs)
}

func TestCancelledDeleteIsNoOp(t *testing.T) {
	gw := &fakeGateway{rows: sampleRows()}
	m := loadedModel(t, gw)

	next, _ := m.Update(key("d"))
	m = next.(BrowseModel)
	require.NotNil(t, m.confirm)

	next, cmd := m.Update(key("n"))
	m = next.(BrowseModel)
	assert.Nil(t, cmd)
	assert.Nil(t, m.confirm)
	assert.Empty(t, gw.deletedIDs)
	assert.Len(t, m.view.Rows, 3, "dataset untouched after cancel")
}

func TestConfirmOverlaySwallowsOtherKeys(t *testing.T) {
	gw := &fakeGateway{rows: sampleRows()}
	m := loadedModel(t, gw)

	next, _ := m.Update(key("d"))
	m = next.(BrowseModel)

	next, _ = m.Update(key("j"))
	m = next.(BrowseModel)
	assert.NotNil(t, m.confirm, "overlay stays up")
	assert.Equal(t, 0, m.cursor, "cursor does not move under the overlay")
}

func TestDeleteGoneRecordDropsLocally(t *testing.T) {
	gw := &fakeGateway{rows: sampleRows()}
	m := loadedModel(t, gw)

	next, cmd := m.Update(deleteDoneMsg{id: 2, err: apierr.NotFound("members")})
	m = next.(BrowseModel)
	assert.Nil(t, cmd, "no refetch for an already gone record")
	assert.Len(t, m.view.Rows, 2)
	assert.Contains(t, m.notice, "already gone")
	for _, rec := range m.view.Rows {
		id, _ := rec.ID()
		assert.NotEqual(t, int64(2), id)
	}
}

func TestDeleteFailureKeepsRow(t *testing.T) {
	gw := &fakeGateway{rows: sampleRows()}
	m := loadedModel(t, gw)

	next, _ := m.Update(deleteDoneMsg{id: 2, err: apierr.RequestFailed(500, "boom")})
	m = next.(BrowseModel)
	assert.Len(t, m.view.Rows, 3, "failed delete leaves the dataset alone")
	assert.Equal(t, "boom", m.notice)
}

func TestLoadFailureShowsBanner(t *testing.T) {
	gw := &fakeGateway{listErr: apierr.Network(assert.AnError)}
	m := NewBrowse(gw, membersResource(t), 10, 4)

	next, _ := m.Update(rowsLoadedMsg{gen: 0, err: gw.listErr})
	m = next.(BrowseModel)

	out := m.View()
	assert.Contains(t, out, "server unreachable")
}

func TestSearchNarrowsRows(t *testing.T) {
	m := loadedModel(t, &fakeGateway{rows: sampleRows()})

	next, _ := m.Update(key("/"))
	m = next.(BrowseModel)
	assert.True(t, m.searchFocus)

	for _, r := range "bruno" {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(BrowseModel)
	}
	assert.Len(t, m.view.Rows, 1)
	assert.Equal(t, "Bruno", m.view.Rows[0].String("name"))

	next, _ = m.Update(key("esc"))
	m = next.(BrowseModel)
	assert.False(t, m.searchFocus)
}

func TestSortKeyTogglesColumn(t *testing.T) {
	m := loadedModel(t, &fakeGateway{rows: sampleRows()})

	next, _ := m.Update(key("1"))
	m = next.(BrowseModel)
	keyName, dir := m.ctl.Sort()
	assert.Equal(t, m.res.Columns[0].Key, keyName)
	assert.Equal(t, "asc", dir.String())

	next, _ = m.Update(key("1"))
	m = next.(BrowseModel)
	_, dir = m.ctl.Sort()
	assert.Equal(t, "desc", dir.String())
}

func TestPageNavigationRejectsOutOfRange(t *testing.T) {
	rows := make([]model.Record, 0, 15)
	for i := 1; i <= 15; i++ {
		rows = append(rows, model.Record{
			"id": float64(i), "name": "m", "email": "m@lab.test", "status": "active",
		})
	}
	gw := &fakeGateway{rows: rows}
	m := NewBrowse(gw, membersResource(t), 10, 4)
	next, _ := m.Update(rowsLoadedMsg{gen: 0, rows: rows})
	m = next.(BrowseModel)
	require.Equal(t, 2, m.view.TotalPages)

	next, _ = m.Update(key("l"))
	m = next.(BrowseModel)
	assert.Equal(t, 2, m.view.Page)

	// past the end: silently stays put
	next, _ = m.Update(key("l"))
	m = next.(BrowseModel)
	assert.Equal(t, 2, m.view.Page)
}

// setFocusedField opens the focused field, types a value and commits it.
func setFocusedField(t *testing.T, m BrowseModel, value string) BrowseModel {
	t.Helper()
	next, _ := m.Update(key("enter"))
	m = next.(BrowseModel)
	for _, r := range value {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(BrowseModel)
	}
	next, _ = m.Update(key("enter"))
	return next.(BrowseModel)
}

func TestRefreshDropsCachedRows(t *testing.T) {
	gw := &fakeGateway{rows: sampleRows()}
	gw.fresh = append(sampleRows(), model.Record{
		"id": float64(4), "name": "Dana", "email": "dana@lab.test", "status": "active",
	})
	m := loadedModel(t, gw)
	require.Len(t, m.view.Rows, 3)

	next, cmd := m.Update(key("r"))
	m = next.(BrowseModel)
	require.NotNil(t, cmd)
	assert.Equal(t, 1, gw.dropped, "refresh must drop the cached list before fetching")

	for _, msg := range drainBatch(cmd()) {
		if loaded, ok := msg.(rowsLoadedMsg); ok {
			next, _ = m.Update(loaded)
			m = next.(BrowseModel)
		}
	}
	assert.Len(t, m.view.Rows, 4, "rows added behind the client's back appear after refresh")
}

func TestCreateValidationErrorRendersInline(t *testing.T) {
	gw := &fakeGateway{
		rows:    sampleRows(),
		saveErr: apierr.Validation(map[string][]string{"email": {"Email invalide"}}, ""),
	}
	m := loadedModel(t, gw)

	next, _ := m.Update(key("n"))
	m = next.(BrowseModel)
	require.NotNil(t, m.form)

	m = setFocusedField(t, m, "Dalia")
	next, _ = m.Update(key("j"))
	m = next.(BrowseModel)
	m = setFocusedField(t, m, "not-an-email")

	next, cmd := m.Update(key("ctrl+s"))
	m = next.(BrowseModel)
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	m = next.(BrowseModel)

	require.NotNil(t, m.form, "form stays open on a validation failure")
	out := m.View()
	lines := strings.Split(out, "\n")
	emailIdx, errIdx := -1, -1
	for i, line := range lines {
		if strings.Contains(line, "not-an-email") {
			emailIdx = i
		}
		if strings.Contains(line, "Email invalide") {
			errIdx = i
		}
	}
	require.NotEqual(t, -1, emailIdx)
	assert.Equal(t, emailIdx+1, errIdx, "error renders directly under its field")
	assert.Len(t, m.view.Rows, 3, "rejected create leaves the table alone")
	assert.Empty(t, gw.created)
}

func TestCreateRecordClosesFormAndRefetches(t *testing.T) {
	gw := &fakeGateway{rows: sampleRows()}
	m := loadedModel(t, gw)

	next, _ := m.Update(key("n"))
	m = next.(BrowseModel)
	m = setFocusedField(t, m, "Dalia")

	next, saveCmd := m.Update(key("ctrl+s"))
	m = next.(BrowseModel)
	require.NotNil(t, saveCmd)
	next, refetch := m.Update(saveCmd())
	m = next.(BrowseModel)

	assert.Nil(t, m.form)
	assert.Equal(t, "record created", m.notice)
	assert.True(t, m.loading)
	require.NotNil(t, refetch)
	require.Len(t, gw.created, 1)
	assert.Equal(t, "Dalia", gw.created[0].String("name"))
}

func TestEditPrefillsSelectedRow(t *testing.T) {
	gw := &fakeGateway{rows: sampleRows()}
	m := loadedModel(t, gw)

	next, _ := m.Update(key("e"))
	m = next.(BrowseModel)
	require.NotNil(t, m.form)
	assert.Equal(t, int64(1), m.form.id)
	assert.Equal(t, "Amina", m.form.values["name"])

	next, cmd := m.Update(key("ctrl+s"))
	m = next.(BrowseModel)
	next, _ = m.Update(cmd())
	m = next.(BrowseModel)

	assert.Nil(t, m.form)
	assert.Contains(t, gw.updated, int64(1))
	assert.Empty(t, gw.created, "editing an existing record never creates one")
}

func TestReadOnlyResourceOffersNoForm(t *testing.T) {
	res, ok := model.ResourceByName("messages")
	require.True(t, ok)
	require.Empty(t, res.FormFields)

	gw := &fakeGateway{}
	m := NewBrowse(gw, res, 10, 4)
	next, _ := m.Update(rowsLoadedMsg{gen: 0})
	m = next.(BrowseModel)

	next, _ = m.Update(key("n"))
	m = next.(BrowseModel)
	assert.Nil(t, m.form)

	out := m.View()
	assert.NotContains(t, out, "n new")
	assert.Contains(t, out, "no contact messages yet")
}
