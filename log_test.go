package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLogLevel(" warning "))
	assert.Equal(t, LevelError, ParseLogLevel("error"))
	assert.Equal(t, LevelInfo, ParseLogLevel("verbose"))
}

func TestLogger_FiltersAndFormats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "warn")
	l.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	l.Warnf("rows=%d", 3)
	l.Errorf("failed: %v", "x")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"2024-05-06 07:08:09.000 [WARN ] rows=3",
		"2024-05-06 07:08:09.000 [ERROR] failed: x",
	}, lines)
	assert.False(t, l.Enabled(LevelInfo))
}
