package model

// ColumnKind distinguishes plain value columns from custom-rendered
// ones, so rendering code can switch exhaustively instead of testing a
// nil function field.
type ColumnKind int

const (
	ColumnPlain ColumnKind = iota
	ColumnCustom
)

// RenderFunc formats a custom cell from the raw value and its record.
type RenderFunc func(value interface{}, rec Record) string

// Column declares one table column: field key, header label, and how
// the cell is produced.
type Column struct {
	Key      string
	Title    string
	Width    int
	Sortable bool
	Kind     ColumnKind
	Render   RenderFunc
}

// PlainColumn shows the raw field value coerced to a string.
func PlainColumn(key, title string, width int) Column {
	return Column{Key: key, Title: title, Width: width, Sortable: true, Kind: ColumnPlain}
}

// CustomColumn delegates cell formatting to render.
func CustomColumn(key, title string, width int, render RenderFunc) Column {
	return Column{Key: key, Title: title, Width: width, Sortable: true, Kind: ColumnCustom, Render: render}
}

// Cell produces the display string for one (record, column) pair.
func (c Column) Cell(rec Record) string {
	switch c.Kind {
	case ColumnCustom:
		return c.Render(rec[c.Key], rec)
	default:
		return rec.String(c.Key)
	}
}
