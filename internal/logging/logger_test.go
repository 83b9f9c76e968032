package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesTaggedMessage(t *testing.T) {
	var buf bytes.Buffer
	l := New(DefaultConfig(), WithOutput(&buf))

	l.Infof("machine %d activated", 3)

	out := buf.String()
	assert.Contains(t, out, "[GENERAL]")
	assert.Contains(t, out, "machine 3 activated")
}

func TestLoggerDisabledChannelIsSilent(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Disabled = []string{"MIGRATION"}
	l := New(cfg, WithOutput(&buf))

	l.Logf(MIGRATION, levelFor(MIGRATION), "vm %d migrating", 7)

	assert.Empty(t, buf.String())
}

func TestLoggerEnableOverridesConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Disabled = []string{"MIGRATION"}
	l := New(cfg, WithOutput(&buf))

	l.Enable(MIGRATION)
	l.Logf(MIGRATION, levelFor(MIGRATION), "vm %d migrating", 7)

	assert.Contains(t, buf.String(), "vm 7 migrating")
}

func TestListenDrainsChannelPair(t *testing.T) {
	var buf bytes.Buffer
	l := New(DefaultConfig(), WithOutput(&buf))

	types := make(chan LogMessageType)
	msgs := make(chan string)
	go l.Listen(types, msgs)

	types <- PLACEMENT
	msgs <- "task 1 placed"

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "task 1 placed")
	}, time.Second, 5*time.Millisecond)

	close(types)
}

func TestLogMessageTypeString(t *testing.T) {
	assert.Equal(t, "MIGRATION", MIGRATION.String())
	assert.Equal(t, "UNKNOWN", LogMessageType(999).String())
}
