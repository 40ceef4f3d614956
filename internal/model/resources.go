package model

import "fmt"

// FormField is one editable field of a resource's create/edit form.
type FormField struct {
	Key   string
	Label string
}

// Resource describes one back-office collection: where it lives on the
// API, which fields search and filtering consider, and the table
// columns shown for it. The generic client code never special-cases a
// resource; everything it needs is declared here.
type Resource struct {
	Name         string // plural key, also the nested envelope key in list responses
	Path         string // API path relative to the base URL
	Label        string
	SearchFields []string // empty means search the full field set
	FilterField  string   // designated filter field, empty disables filtering
	FilterValues []string
	Columns      []Column
	FormFields   []FormField // empty makes the resource read-only in the UI
	EmptyMessage string      // shown when the collection is empty, "" uses a generic one
}

// Catalog lists the lab site's managed resources.
var Catalog = []Resource{
	{
		Name:         "members",
		Path:         "/api/admin/members",
		Label:        "Members",
		SearchFields: []string{"name", "email", "grade"},
		FilterField:  "status",
		FilterValues: []string{"all", "permanent", "phd", "alumni"},
		Columns: []Column{
			PlainColumn("name", "Name", 24),
			PlainColumn("email", "Email", 28),
			PlainColumn("grade", "Grade", 16),
			PlainColumn("status", "Status", 10),
		},
		FormFields: []FormField{
			{Key: "name", Label: "Name"},
			{Key: "email", Label: "Email"},
			{Key: "grade", Label: "Grade"},
			{Key: "status", Label: "Status"},
		},
		EmptyMessage: "no members yet, add the permanent staff first",
	},
	{
		Name:         "publications",
		Path:         "/api/admin/publications",
		Label:        "Publications",
		SearchFields: []string{"title", "authors", "venue"},
		FilterField:  "type",
		FilterValues: []string{"all", "journal", "conference", "thesis"},
		Columns: []Column{
			PlainColumn("title", "Title", 40),
			PlainColumn("authors", "Authors", 28),
			CustomColumn("year", "Year", 6, func(v interface{}, _ Record) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%d", int(f))
				}
				return ""
			}),
			PlainColumn("type", "Type", 12),
		},
		FormFields: []FormField{
			{Key: "title", Label: "Title"},
			{Key: "authors", Label: "Authors"},
			{Key: "venue", Label: "Venue"},
			{Key: "year", Label: "Year"},
			{Key: "type", Label: "Type"},
		},
	},
	{
		Name:         "partners",
		Path:         "/api/admin/partners",
		Label:        "Partners",
		SearchFields: []string{"name", "country"},
		FilterField:  "kind",
		FilterValues: []string{"all", "academic", "industrial"},
		Columns: []Column{
			PlainColumn("name", "Name", 30),
			PlainColumn("country", "Country", 16),
			PlainColumn("kind", "Kind", 12),
			CustomColumn("website", "Website", 28, func(v interface{}, _ Record) string {
				s, _ := v.(string)
				if s == "" {
					return "-"
				}
				return s
			}),
		},
		FormFields: []FormField{
			{Key: "name", Label: "Name"},
			{Key: "country", Label: "Country"},
			{Key: "kind", Label: "Kind"},
			{Key: "website", Label: "Website"},
		},
	},
	{
		Name:         "axes",
		Path:         "/api/admin/axes",
		Label:        "Research areas",
		SearchFields: nil, // titles exist per language, search everything
		Columns: []Column{
			CustomColumn("title", "Title", 36, func(_ interface{}, rec Record) string {
				return Localized(rec, "title", DisplayLanguage())
			}),
			PlainColumn("slug", "Slug", 20),
			PlainColumn("position", "Order", 6),
		},
		FormFields: []FormField{
			{Key: "title_fr", Label: "Title (FR)"},
			{Key: "title_en", Label: "Title (EN)"},
			{Key: "title_ar", Label: "Title (AR)"},
			{Key: "slug", Label: "Slug"},
			{Key: "position", Label: "Order"},
		},
	},
	{
		Name:         "gallery",
		Path:         "/api/admin/gallery",
		Label:        "Gallery",
		SearchFields: []string{"caption_fr", "caption_en", "caption_ar"},
		Columns: []Column{
			CustomColumn("caption", "Caption", 40, func(_ interface{}, rec Record) string {
				return Localized(rec, "caption", DisplayLanguage())
			}),
			PlainColumn("image", "Image", 32),
		},
		FormFields: []FormField{
			{Key: "caption_fr", Label: "Caption (FR)"},
			{Key: "caption_en", Label: "Caption (EN)"},
			{Key: "caption_ar", Label: "Caption (AR)"},
			{Key: "image", Label: "Image path"},
		},
		EmptyMessage: "the gallery is empty, upload a first photo",
	},
	{
		Name:         "messages",
		Path:         "/api/admin/messages",
		Label:        "Contact messages",
		SearchFields: []string{"name", "email", "subject"},
		FilterField:  "read",
		FilterValues: []string{"all", "true", "false"},
		Columns: []Column{
			PlainColumn("name", "From", 22),
			PlainColumn("email", "Email", 26),
			PlainColumn("subject", "Subject", 34),
			PlainColumn("read", "Read", 6),
		},
		// messages arrive through the public contact form, the back
		// office only reads and deletes them
		EmptyMessage: "no contact messages yet",
	},
}

// ResourceByName looks a resource up in the catalog.
func ResourceByName(name string) (Resource, bool) {
	for _, r := range Catalog {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

// ItemPath is the path of a single record.
func (r Resource) ItemPath(id int64) string {
	return fmt.Sprintf("%s/%d", r.Path, id)
}
