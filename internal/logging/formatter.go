package logging

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// channelField is the logrus field the Logger stashes its LogMessageType
// under, read back by Formatter to pick a color.
const channelField = "channel"

// Formatter renders a logrus entry as a bracketed, colored level/channel
// tag, a timestamp, the message, then any remaining structured fields.
type Formatter struct {
	TimestampFormat string
}

func (f Formatter) colorFor(entry *logrus.Entry) *color.Color {
	if raw, ok := entry.Data[channelField]; ok {
		if mt, ok := raw.(LogMessageType); ok {
			if c, ok := messageColors[mt]; ok {
				return c
			}
		}
	}
	switch entry.Level {
	case logrus.WarnLevel:
		return color.New(color.FgYellow, color.Bold)
	case logrus.ErrorLevel, logrus.FatalLevel:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite, color.Bold)
	}
}

// Format implements logrus.Formatter.
func (f Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	tag := strings.ToUpper(entry.Level.String())
	if raw, ok := entry.Data[channelField]; ok {
		if mt, ok := raw.(LogMessageType); ok {
			tag = mt.String()
		}
	}

	prefix := f.colorFor(entry).Sprintf("[%s]", tag)
	b.WriteString(fmt.Sprintf("%s %s %s", prefix, entry.Time.Format(f.TimestampFormat), entry.Message))

	for key, value := range entry.Data {
		if key == channelField {
			continue
		}
		fmt.Fprintf(b, " %s=%v", key, value)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
