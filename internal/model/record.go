package model

import (
	"fmt"
	"strconv"
)

// Record is one persisted entity (member, publication, partner,
// settings row) as decoded from the API: field name to primitive value,
// with multilingual variants stored as suffixed keys (title_fr,
// title_en, title_ar). The server copy is canonical; a Record held by
// the client is a transient buffer.
type Record map[string]interface{}

// ID returns the persisted identifier, or false before creation.
// JSON decoding yields float64 for numbers.
func (r Record) ID() (int64, bool) {
	switch v := r["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

// String coerces a field to its display form. Missing and nil fields
// render empty, JSON numbers drop their float artifacts.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Clone returns a shallow copy safe for buffered edits.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge lays resp over defaults: every default key keeps a defined
// value, every key present in resp wins. Neither input is mutated.
func Merge(defaults, resp Record) Record {
	out := make(Record, len(defaults)+len(resp))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range resp {
		out[k] = v
	}
	return out
}

// Display languages of the site.
const (
	LangFR = "fr"
	LangEN = "en"
	LangAR = "ar"
)

// displayLang is the language multilingual columns render in. Set once
// at startup from configuration, before any rendering happens.
var displayLang = LangFR

// SetDisplayLanguage selects the language used by DisplayLanguage.
// Unknown values keep the French default.
func SetDisplayLanguage(lang string) {
	switch lang {
	case LangFR, LangEN, LangAR:
		displayLang = lang
	}
}

// DisplayLanguage returns the configured display language.
func DisplayLanguage() string { return displayLang }

// Localized resolves a multilingual field for a language, falling back
// fr → en → ar → bare key so a partially translated record still
// renders.
func Localized(r Record, field, lang string) string {
	if s := r.String(field + "_" + lang); s != "" {
		return s
	}
	for _, l := range []string{LangFR, LangEN, LangAR} {
		if l == lang {
			continue
		}
		if s := r.String(field + "_" + l); s != "" {
			return s
		}
	}
	return r.String(field)
}
