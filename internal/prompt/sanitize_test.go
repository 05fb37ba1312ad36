package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goroku-app/goroku/internal/domain"
)

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		wantErr bool
	}{
		{"valid", "がんばります", 25, false},
		{"empty", "", 25, true},
		{"whitespace only", "   \n\t", 25, true},
		{"at limit", strings.Repeat("あ", 25), 25, false},
		{"over limit in runes", strings.Repeat("あ", 26), 25, true},
		{"script tag", "<script>alert(1)</script>", 50, true},
		{"javascript scheme", "javascript:void(0)", 25, true},
		{"event handler", "x onload=steal()", 25, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.input, tt.max)
			if tt.wantErr {
				assert.True(t, domain.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"strips control chars", "a\x00b\x08c\x1fd", "abcd"},
		{"keeps newline and tab inside", "a\nb\tc", "a\nb\tc"},
		{"strips DEL", "a\x7fb", "ab"},
		{"trims surrounding space", "  緊張  ", "緊張"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeInput(tt.input))
		})
	}
}
