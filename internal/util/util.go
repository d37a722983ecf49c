// Package util provides small helpers shared by the plugin packages.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TrimQuotes removes one pair of surrounding double quotes from a string.
func TrimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanArg normalises one argument received from the host: one pair of
// surrounding quotes is removed and doubled quotes collapsed.
func CleanArg(s string) string {
	return FixEscapeQuotes(TrimQuotes(strings.TrimSpace(s)))
}

// SplitArgs splits a command line on whitespace. Text between double quotes
// is kept as one argument without the quotes. An unterminated quote runs to
// the end of the line.
func SplitArgs(s string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, cur.String())
	}
	return args
}

// BackupPath builds a backup file name "name_YYYY-MM-DD_HH.mm.ssZ.ext" in
// dir, adding "_n" before the extension until the name is unused. A ".gz"
// suffix is kept together with the extension before it.
func BackupPath(dir, fileName string, t time.Time) string {
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	if ext == ".gz" {
		inner := filepath.Ext(base)
		base = strings.TrimSuffix(base, inner)
		ext = inner + ext
	}

	stamp := t.UTC().Format("2006-01-02_15.04.05Z")
	candidate := filepath.Join(dir, fmt.Sprintf("%s_%s%s", base, stamp, ext))
	for n := 1; fileExists(candidate); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%s_%d%s", base, stamp, n, ext))
	}
	return candidate
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
