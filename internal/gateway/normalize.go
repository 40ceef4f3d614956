package gateway

import (
	"bytes"
	"encoding/json"

	"github.com/jwalitptl/labadmin/internal/model"
	"github.com/jwalitptl/labadmin/pkg/apierr"
)

// The back office wraps payloads inconsistently. All unwrapping lives
// here, tried in a fixed order, so call sites never special-case
// shapes.

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// NormalizeList decodes a list response body. Accepted shapes, in
// order: a bare array, {"data": [...]}, {"data": {"<resource>": [...]}}.
// Anything else is a MalformedResponse.
func NormalizeList(resource string, body []byte) ([]model.Record, error) {
	trimmed := bytes.TrimSpace(body)

	var rows []model.Record
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &rows); err == nil {
			return rows, nil
		}
		return nil, apierr.Malformed("list body is not a record array")
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil || len(env.Data) == 0 {
		return nil, apierr.Malformed("list body has no data envelope")
	}

	if err := json.Unmarshal(env.Data, &rows); err == nil {
		return rows, nil
	}

	var named map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &named); err == nil {
		if inner, ok := named[resource]; ok {
			if err := json.Unmarshal(inner, &rows); err == nil {
				return rows, nil
			}
		}
	}

	return nil, apierr.Malformed("data envelope holds neither an array nor a named list")
}

// NormalizeOne decodes a single-record body, unwrapping {"data": {...}}
// or accepting the bare object.
func NormalizeOne(body []byte) (model.Record, error) {
	trimmed := bytes.TrimSpace(body)

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 {
		var rec model.Record
		if err := json.Unmarshal(env.Data, &rec); err == nil {
			return rec, nil
		}
	}

	var rec model.Record
	if err := json.Unmarshal(trimmed, &rec); err == nil && rec != nil {
		return rec, nil
	}

	return nil, apierr.Malformed("body is not a record")
}
