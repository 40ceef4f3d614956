package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode Code
		wantMsg  string
	}{
		{
			name:     "unauthorized with server message",
			status:   http.StatusUnauthorized,
			body:     `{"message": "token expired"}`,
			wantCode: CodeUnauthorized,
			wantMsg:  "token expired",
		},
		{
			name:     "forbidden default message",
			status:   http.StatusForbidden,
			body:     `{}`,
			wantCode: CodeForbidden,
			wantMsg:  "you do not have access to this resource",
		},
		{
			name:     "not found names the resource",
			status:   http.StatusNotFound,
			body:     ``,
			wantCode: CodeNotFound,
			wantMsg:  "members not found",
		},
		{
			name:     "validation carries field errors",
			status:   http.StatusUnprocessableEntity,
			body:     `{"message": "invalid", "errors": {"email": ["Email invalide"]}}`,
			wantCode: CodeValidation,
			wantMsg:  "invalid",
		},
		{
			name:     "server error falls through to RequestFailed",
			status:   http.StatusInternalServerError,
			body:     `{"error": "boom"}`,
			wantCode: CodeRequestFailed,
			wantMsg:  "boom",
		},
		{
			name:     "garbage body still classifies",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantCode: CodeRequestFailed,
			wantMsg:  "request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromResponse("members", tt.status, []byte(tt.body))
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.wantMsg, err.Message)
		})
	}
}

func TestFieldErrors(t *testing.T) {
	err := FromResponse("members", http.StatusUnprocessableEntity,
		[]byte(`{"errors": {"email": ["Email invalide"], "name_fr": ["Requis"]}}`))

	fields := FieldErrors(err)
	assert.Equal(t, []string{"Email invalide"}, fields["email"])
	assert.Equal(t, []string{"Requis"}, fields["name_fr"])

	assert.Nil(t, FieldErrors(errors.New("plain error")))
	assert.Nil(t, FieldErrors(NotFound("members")))
}

func TestErrorsIsMatchesOnCode(t *testing.T) {
	wrapped := fmt.Errorf("loading members: %w", NotFound("members"))
	assert.True(t, errors.Is(wrapped, NotFound("anything")))
	assert.False(t, errors.Is(wrapped, Unauthorized("")))
}

func TestNetworkWrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Network(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeNetwork, CodeOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}
