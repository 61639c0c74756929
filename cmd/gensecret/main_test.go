package main

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_run(t *testing.T) {
	t.Run("default length", func(t *testing.T) {
		var out bytes.Buffer

		err := run(nil, &out, rand.Reader)

		require.NoError(t, err)
		assert.Len(t, strings.TrimSpace(out.String()), 2*defaultSecretLen, "hex doubles the length")
	})

	t.Run("custom length", func(t *testing.T) {
		var out bytes.Buffer

		err := run([]string{"-n", "48"}, &out, rand.Reader)

		require.NoError(t, err)
		assert.Len(t, strings.TrimSpace(out.String()), 96)
	})

	t.Run("env lines are distinct", func(t *testing.T) {
		var out bytes.Buffer

		err := run([]string{"--env"}, &out, rand.Reader)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)

		access, ok := strings.CutPrefix(lines[0], "SECRET_KEY=")
		require.True(t, ok)
		refresh, ok := strings.CutPrefix(lines[1], "REFRESH_SECRET_KEY=")
		require.True(t, ok)
		assert.NotEqual(t, access, refresh, "keys must be generated independently")
	})

	t.Run("too short", func(t *testing.T) {
		err := run([]string{"--bytes", "8"}, &bytes.Buffer{}, rand.Reader)

		require.Error(t, err)
	})

	t.Run("random source fails", func(t *testing.T) {
		err := run(nil, &bytes.Buffer{}, iotest.ErrReader(assert.AnError))

		require.ErrorIs(t, err, assert.AnError)
	})
}
