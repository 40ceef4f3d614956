package model

// FieldType tells the settings form how to edit and serialize a field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldTextarea
	FieldFile
)

// SettingsField is one editable field of a settings page.
type SettingsField struct {
	Key   string
	Label string
	Type  FieldType
}

// Section groups settings fields under a title for presentation.
type Section struct {
	Title  string
	Fields []SettingsField
}

// ClearMode controls what clearing a staged file restores: the last
// persisted preview, or nothing. The back-office screens disagree on
// this, so it is declared per page rather than unified.
type ClearMode int

const (
	ClearRestoresPersisted ClearMode = iota
	ClearEmptiesPreview
)

// SettingsPage is a singleton record edited through a sectioned form.
// Defaults is the hard-coded template; a server response is merged over
// it so absent fields keep their defaults.
type SettingsPage struct {
	Name      string
	Path      string
	Sections  []Section
	Defaults  Record
	ClearMode ClearMode
}

// Pages lists the site's settings screens.
var Pages = []SettingsPage{
	{
		Name: "home",
		Path: "/api/admin/settings/home",
		Sections: []Section{
			{
				Title: "Hero",
				Fields: []SettingsField{
					{Key: "hero_title_fr", Label: "Title (FR)", Type: FieldText},
					{Key: "hero_title_en", Label: "Title (EN)", Type: FieldText},
					{Key: "hero_title_ar", Label: "Title (AR)", Type: FieldText},
					{Key: "hero_image", Label: "Hero image", Type: FieldFile},
				},
			},
			{
				Title: "Presentation",
				Fields: []SettingsField{
					{Key: "intro_fr", Label: "Introduction (FR)", Type: FieldTextarea},
					{Key: "intro_en", Label: "Introduction (EN)", Type: FieldTextarea},
					{Key: "intro_ar", Label: "Introduction (AR)", Type: FieldTextarea},
					{Key: "logo", Label: "Laboratory logo", Type: FieldFile},
				},
			},
		},
		Defaults: Record{
			"page":          "home",
			"hero_title_fr": "Laboratoire de recherche",
			"hero_title_en": "Research laboratory",
			"hero_title_ar": "",
			"hero_image":    "",
			"intro_fr":      "",
			"intro_en":      "",
			"intro_ar":      "",
			"logo":          "",
		},
		ClearMode: ClearRestoresPersisted,
	},
	{
		Name: "about",
		Path: "/api/admin/settings/about",
		Sections: []Section{
			{
				Title: "History",
				Fields: []SettingsField{
					{Key: "history_fr", Label: "History (FR)", Type: FieldTextarea},
					{Key: "history_en", Label: "History (EN)", Type: FieldTextarea},
					{Key: "history_ar", Label: "History (AR)", Type: FieldTextarea},
				},
			},
			{
				Title: "Organization",
				Fields: []SettingsField{
					{Key: "director", Label: "Director", Type: FieldText},
					{Key: "org_chart", Label: "Organization chart", Type: FieldFile},
				},
			},
		},
		Defaults: Record{
			"page":       "about",
			"history_fr": "",
			"history_en": "",
			"history_ar": "",
			"director":   "",
			"org_chart":  "",
		},
		ClearMode: ClearEmptiesPreview,
	},
	{
		Name: "contact",
		Path: "/api/admin/settings/contact",
		Sections: []Section{
			{
				Title: "Coordinates",
				Fields: []SettingsField{
					{Key: "address_fr", Label: "Address (FR)", Type: FieldText},
					{Key: "address_en", Label: "Address (EN)", Type: FieldText},
					{Key: "address_ar", Label: "Address (AR)", Type: FieldText},
					{Key: "phone", Label: "Phone", Type: FieldText},
					{Key: "email", Label: "Email", Type: FieldText},
				},
			},
			{
				Title: "Map",
				Fields: []SettingsField{
					{Key: "map_embed", Label: "Map embed URL", Type: FieldText},
				},
			},
		},
		Defaults: Record{
			"page":       "contact",
			"address_fr": "",
			"address_en": "",
			"address_ar": "",
			"phone":      "",
			"email":      "",
			"map_embed":  "",
		},
		ClearMode: ClearRestoresPersisted,
	},
}

// PageByName looks a settings page up by name.
func PageByName(name string) (SettingsPage, bool) {
	for _, p := range Pages {
		if p.Name == name {
			return p, true
		}
	}
	return SettingsPage{}, false
}

// FileFields lists the page's file-type field keys.
func (p SettingsPage) FileFields() []string {
	var keys []string
	for _, s := range p.Sections {
		for _, f := range s.Fields {
			if f.Type == FieldFile {
				keys = append(keys, f.Key)
			}
		}
	}
	return keys
}
