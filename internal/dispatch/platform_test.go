package dispatch

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalPlatform_Confirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		"oui\n":   true,
		"n\n":     false,
		"\n":      false,
		"maybe\n": false,
		"":        false,
	}

	for input, want := range cases {
		out := &bytes.Buffer{}
		p := NewTerminalPlatform(strings.NewReader(input), out)

		got, err := p.Confirm(context.Background(), "Delete?")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
		assert.Contains(t, out.String(), "Delete? [y/N]")
	}
}

func TestTerminalPlatform_ConfirmCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewTerminalPlatform(r, io.Discard)
	_, err := p.Confirm(ctx, "Delete?")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTerminalPlatform_Alert(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewTerminalPlatform(strings.NewReader(""), out)

	require.NoError(t, p.Alert(context.Background(), "Something went wrong"))
	assert.Contains(t, out.String(), "Something went wrong")
}
