package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_BearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"empty header", "", "", false},
		{"scheme only", "Bearer", "", false},
		{"scheme with space only", "Bearer ", "", false},
		{"lowercase scheme", "bearer abc", "", false},
		{"other scheme", "Basic abc", "", false},
		{"no space", "Bearerabc", "", false},
		{"two spaces", "Bearer  abc", "", false},
		{"token without scheme", "abc.def.ghi", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := BearerToken(tt.header)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}
