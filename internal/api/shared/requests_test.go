package shared

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Type  string `json:"type"`
		Index int    `json:"index"`
	}

	tests := []struct {
		name        string
		body        string
		want        payload
		errContains string
	}{
		{name: "valid json", body: `{"type": "mood", "index": 2}`, want: payload{Type: "mood", Index: 2}},
		{name: "invalid json", body: `{"type": "mood",}`, errContains: "invalid character"},
		{name: "empty body", body: "", errContains: "unexpected end of JSON input"},
		{
			name:        "oversized body",
			body:        `{"type":"` + strings.Repeat("a", MaxJSONBodyBytes) + `"}`,
			errContains: "exceeds",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tc.body))
			var got payload
			err := DecodeJSON(req, &got)

			if tc.errContains != "" {
				assert.ErrorContains(t, err, tc.errContains)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

type errorReader struct{}

func (errorReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestDecodeJSONWithReadError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/test", errorReader{})
	var target struct{}
	err := DecodeJSON(req, &target)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type selfValidating struct {
	Name string
}

func (s *selfValidating) Validate() error {
	if s.Name == "invalid" {
		return errors.New("name is invalid")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	type tagged struct {
		Type string `validate:"required,oneof=paragraph checklist image mood divider"`
	}

	assert.NoError(t, ValidateRequest(&selfValidating{Name: "ok"}))
	assert.Error(t, ValidateRequest(&selfValidating{Name: "invalid"}))
	assert.NoError(t, ValidateRequest(tagged{Type: "mood"}))
	assert.Error(t, ValidateRequest(tagged{Type: "video"}))
	assert.Error(t, ValidateRequest(tagged{}))
}
