package prompt

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYesNo(t *testing.T) {
	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"", false, false},
		{"y", false, true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := YesNo(strings.NewReader(tt.input), &out, "Update?", tt.defaultYes)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestYesNoRepromptsOnGarbage(t *testing.T) {
	var out bytes.Buffer
	got, err := YesNo(strings.NewReader("maybe\nyes\n"), &out, "Update?", false)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Contains(t, out.String(), "Please answer yes or no.")
	assert.Equal(t, 2, strings.Count(out.String(), "Update? [y/N]: "))
}

func TestYesNoGarbageAtEOF(t *testing.T) {
	_, err := YesNo(strings.NewReader("maybe"), io.Discard, "Update?", false)
	assert.Error(t, err)
}

func TestConfirm(t *testing.T) {
	ok, err := Confirm(strings.NewReader(""), io.Discard, "Update?", true)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Confirm(strings.NewReader("y\n"), io.Discard, "Update?", false)
	assert.ErrorIs(t, err, ErrNotInteractive)

	orig := isTerminal
	isTerminal = func(io.Reader) bool { return true }
	t.Cleanup(func() { isTerminal = orig })

	ok, err = Confirm(strings.NewReader("y\n"), io.Discard, "Update?", false)
	require.NoError(t, err)
	assert.True(t, ok)
}
