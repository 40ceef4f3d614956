package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/labadmin/pkg/apierr"
)

func TestNormalizeListShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]`},
		{"data envelope", `{"data": [{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]}`},
		{"named envelope", `{"data": {"members": [{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := NormalizeList("members", []byte(tt.body))
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "A", rows[0]["name"])
			assert.Equal(t, "B", rows[1]["name"])
		})
	}
}

func TestNormalizeListEmpty(t *testing.T) {
	rows, err := NormalizeList("members", []byte(`{"data": []}`))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNormalizeListMalformed(t *testing.T) {
	bodies := []string{
		`{"result": [1, 2]}`,
		`{"data": {"other_key": []}}`,
		`{"data": "not a list"}`,
		`"scalar"`,
		``,
	}
	for _, body := range bodies {
		_, err := NormalizeList("members", []byte(body))
		assert.Error(t, err, "body %q should be malformed", body)
		assert.Equal(t, apierr.CodeMalformed, apierr.CodeOf(err), "body %q", body)
	}
}

func TestNormalizeOne(t *testing.T) {
	rec, err := NormalizeOne([]byte(`{"data": {"id": 3, "name": "C"}}`))
	require.NoError(t, err)
	assert.Equal(t, "C", rec["name"])

	rec, err = NormalizeOne([]byte(`{"id": 3, "name": "C"}`))
	require.NoError(t, err)
	assert.Equal(t, "C", rec["name"])

	_, err = NormalizeOne([]byte(`[1, 2, 3]`))
	var apiErr *apierr.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierr.CodeMalformed, apiErr.Code)
}
