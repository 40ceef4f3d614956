// Package settings synchronizes a singleton settings record between
// the admin API and a local edit buffer: load and merge over defaults,
// field-level edits, staged file attachments, and a guarded save.
package settings

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/labadmin/internal/gateway"
	"github.com/jwalitptl/labadmin/internal/model"
)

// State of the synchronization machine. Loading and Saving are
// transient; Error is only reachable from Loading, save failures
// return to Ready so the user can retry with edits intact.
type State int

const (
	StateLoading State = iota
	StateReady
	StateSaving
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	default:
		return "error"
	}
}

// Syncer is the gateway surface the controller needs.
type Syncer interface {
	LoadSettings(ctx context.Context, page model.SettingsPage) (model.Record, error)
	SaveSettings(ctx context.Context, page model.SettingsPage, fields map[string]string, attachments map[string]gateway.Attachment) (model.Record, error)
}

// SaveOutcome reports one Save attempt.
type SaveOutcome struct {
	// Ignored is true when a save was already in flight and this
	// invocation was dropped by the re-entrancy guard.
	Ignored bool
	Err     error
}

// Controller owns the edit buffer of one settings page.
type Controller struct {
	page    model.SettingsPage
	remote  Syncer
	storage string

	mu        sync.Mutex
	state     State
	record    model.Record                  // edit buffer
	persisted model.Record                  // last canonical server copy
	pending   map[string]gateway.Attachment // staged files by field key
	previews  map[string]string             // file field → display reference
}

// NewController starts in Loading with the page's default template
// active, so the form always has values to show.
func NewController(page model.SettingsPage, remote Syncer, storageBaseURL string) *Controller {
	c := &Controller{
		page:      page,
		remote:    remote,
		storage:   strings.TrimSuffix(storageBaseURL, "/"),
		state:     StateLoading,
		record:    page.Defaults.Clone(),
		persisted: page.Defaults.Clone(),
		pending:   make(map[string]gateway.Attachment),
		previews:  make(map[string]string),
	}
	c.refreshPreviewsLocked()
	return c
}

// Load fetches the record and merges it over the default template:
// template keys absent from the response keep their defaults. On
// failure the defaults stay active and the machine enters Error.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	rec, err := c.remote.LoadSettings(ctx, c.page)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateError
		return err
	}
	c.persisted = model.Merge(c.page.Defaults, rec)
	c.record = c.persisted.Clone()
	c.pending = make(map[string]gateway.Attachment)
	c.refreshPreviewsLocked()
	c.state = StateReady
	return nil
}

// State returns the current machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Field returns the buffered value of a text field.
func (c *Controller) Field(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record.String(key)
}

// SetField mutates the edit buffer. No network traffic happens until
// Save.
func (c *Controller) SetField(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record[key] = value
}

// SetFile stages an attachment for a file field and points its preview
// at a local staged reference. The text value of the field is left
// untouched; the attachment takes precedence at save time.
func (c *Controller) SetFile(key, filename string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[key] = gateway.Attachment{Filename: filename, Content: content}
	c.previews[key] = fmt.Sprintf("staged://%s/%s", uuid.NewString(), filename)
}

// ClearFile drops the staged attachment for a field. What the preview
// falls back to depends on the page's ClearMode: the last persisted
// value, or nothing.
func (c *Controller) ClearFile(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, key)
	switch c.page.ClearMode {
	case model.ClearRestoresPersisted:
		if v := c.persisted.String(key); v != "" {
			c.previews[key] = c.displayURL(v)
		} else {
			delete(c.previews, key)
		}
	default:
		delete(c.previews, key)
	}
}

// Preview returns the display reference of a file field: a staged
// reference while an attachment is pending, otherwise a URL derived
// from the last persisted value. Empty when the field has never held a
// value.
func (c *Controller) Preview(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previews[key]
}

// HasPending reports whether a field has a staged attachment.
func (c *Controller) HasPending(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[key]
	return ok
}

// Save serializes the buffer and staged attachments and posts them.
// A second invocation while one is in flight is ignored. On success
// the server's canonical record replaces the buffer and attachments
// are cleared; on failure the machine returns to Ready with every
// unsaved edit intact, so the user can retry without data loss.
func (c *Controller) Save(ctx context.Context) SaveOutcome {
	c.mu.Lock()
	if c.state == StateSaving {
		c.mu.Unlock()
		return SaveOutcome{Ignored: true}
	}
	c.state = StateSaving

	fields := make(map[string]string, len(c.record))
	for key := range c.record {
		if _, staged := c.pending[key]; staged {
			continue
		}
		fields[key] = c.record.String(key)
	}
	attachments := make(map[string]gateway.Attachment, len(c.pending))
	for key, att := range c.pending {
		attachments[key] = att
	}
	c.mu.Unlock()

	rec, err := c.remote.SaveSettings(ctx, c.page, fields, attachments)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateReady
		return SaveOutcome{Err: err}
	}
	c.persisted = model.Merge(c.page.Defaults, rec)
	c.record = c.persisted.Clone()
	c.pending = make(map[string]gateway.Attachment)
	c.refreshPreviewsLocked()
	c.state = StateReady
	return SaveOutcome{}
}

// refreshPreviewsLocked rebuilds every file-field preview from the
// persisted record. Pending attachments keep their staged reference.
func (c *Controller) refreshPreviewsLocked() {
	for _, key := range c.page.FileFields() {
		if _, staged := c.pending[key]; staged {
			continue
		}
		if v := c.persisted.String(key); v != "" {
			c.previews[key] = c.displayURL(v)
		} else {
			delete(c.previews, key)
		}
	}
}

// displayURL turns a stored reference into a displayable URL: absolute
// URLs and absolute paths pass through, bare relative paths get the
// storage base prefix.
func (c *Controller) displayURL(stored string) string {
	if strings.HasPrefix(stored, "http://") || strings.HasPrefix(stored, "https://") || strings.HasPrefix(stored, "/") {
		return stored
	}
	return c.storage + "/" + stored
}
