package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no quotes", "hello", "hello"},
		{"double quoted", `"hello"`, "hello"},
		{"single quotes only", "'hello'", "'hello'"},
		{"quotes in middle", `he"llo`, `he"llo`},
		{"only quotes", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TrimQuotes(tt.input)
			if result != tt.expected {
				t.Errorf("TrimQuotes(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFixEscapeQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no escaped quotes", "hello", "hello"},
		{"single escaped quote", `he""llo`, `he"llo`},
		{"multiple escaped quotes", `a""b""c`, `a"b"c`},
		{"consecutive escaped", `a""""b`, `a""b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FixEscapeQuotes(tt.input)
			if result != tt.expected {
				t.Errorf("FixEscapeQuotes(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCleanArg(t *testing.T) {
	assert.Equal(t, `say "hi"`, CleanArg(` "say ""hi""" `))
	assert.Equal(t, "plain", CleanArg("plain"))
	assert.Equal(t, `place "Boss"`, CleanArg(`"place ""Boss"""`))
	assert.Equal(t, `"`, CleanArg(`"`))
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"place 3", []string{"place", "3"}},
		{`place "Boss Pull"`, []string{"place", "Boss Pull"}},
		{"export  -t	-g 2 7", []string{"export", "-t", "-g", "2", "7"}},
		{`place ""`, []string{"place", ""}},
		{`place "unterminated name`, []string{"place", "unterminated name"}},
		{`a"b c"d`, []string{"ab cd"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitArgs(tt.input))
		})
	}
}

func TestBackupPath(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600))

	first := BackupPath(dir, "WaymarkPresetLibrary.json", ts)
	assert.Equal(t, filepath.Join(dir, "WaymarkPresetLibrary_2024-05-06_06.08.09Z.json"), first)

	require.NoError(t, os.WriteFile(first, nil, 0644))
	assert.Equal(t, filepath.Join(dir, "WaymarkPresetLibrary_2024-05-06_06.08.09Z_1.json"),
		BackupPath(dir, "WaymarkPresetLibrary.json", ts))

	assert.Equal(t, filepath.Join(dir, "LibraryZoneSortData_v1_2024-05-06_06.08.09Z.json.gz"),
		BackupPath(dir, "LibraryZoneSortData_v1.json.gz", ts))
	assert.Equal(t, filepath.Join(dir, "presets_2024-05-06_06.08.09Z.db"),
		BackupPath(dir, "presets.db", ts))
}
