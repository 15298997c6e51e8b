package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"", "''"},
		{"simple", "simple"},
		{"https://youtu.be/abc", "https://youtu.be/abc"},
		{"has space", "'has space'"},
		{"has'quote", "'has'\"'\"'quote'"},
		{"a&b", "'a&b'"},
		{"$HOME", "'$HOME'"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, ShellEscape(tc.input), tc.input)
	}
}

func TestShellEscapeCommand(t *testing.T) {
	cmd := ShellEscapeCommand("yt-dlp", "-o", "/tmp/out dir/file.%(ext)s", "https://youtu.be/abc")
	assert.Equal(t, "yt-dlp -o '/tmp/out dir/file.%(ext)s' https://youtu.be/abc", cmd)
}
