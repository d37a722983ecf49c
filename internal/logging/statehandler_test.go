package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetStateAttrs_AddedToEveryRecord(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	territory := uint64(0)
	m.SetStateAttrs(func() []slog.Attr {
		if territory == 0 {
			return nil
		}
		return []slog.Attr{slog.Uint64("territory", territory)}
	})

	m.Logger().Info("outside")
	territory = 1002
	m.WriteLog("place", "inside", "INFO")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	outside, inside := string(lines[len(lines)-2]), string(lines[len(lines)-1])
	assert.NotContains(t, outside, "territory=")
	assert.Contains(t, inside, "msg=inside")
	assert.Contains(t, inside, "function=place")
	assert.Contains(t, inside, "territory=1002")
}

func TestSetStateAttrs_KeptThroughWith(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)
	m.SetStateAttrs(func() []slog.Attr { return []slog.Attr{slog.Int("zone", 777)} })

	m.Logger().With("component", "library").Info("loaded")
	assert.Contains(t, buf.String(), "component=library")
	assert.Contains(t, buf.String(), "zone=777")

	buf.Reset()
	m.SetStateAttrs(nil)
	m.Logger().Info("cleared")
	assert.Contains(t, buf.String(), "cleared")
	assert.NotContains(t, buf.String(), "zone=")
}
