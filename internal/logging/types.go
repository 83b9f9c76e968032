package logging

import "github.com/fatih/color"

// LogMessageType classifies a log line by the subsystem that emitted it.
type LogMessageType int

const (
	GENERAL LogMessageType = iota
	SUCCESS
	WARNING
	ERROR
	PLACEMENT
	CONSOLIDATE
	MIGRATION
	POWER
)

var logMessageNames = [...]string{
	GENERAL:     "GENERAL",
	SUCCESS:     "SUCCESS",
	WARNING:     "WARNING",
	ERROR:       "ERROR",
	PLACEMENT:   "PLACEMENT",
	CONSOLIDATE: "CONSOLIDATE",
	MIGRATION:   "MIGRATION",
	POWER:       "POWER",
}

func (t LogMessageType) String() string {
	if int(t) < 0 || int(t) >= len(logMessageNames) {
		return "UNKNOWN"
	}
	return logMessageNames[t]
}

// messageColors assigns a fatih/color to each message type.
var messageColors = map[LogMessageType]*color.Color{
	GENERAL:     color.New(color.FgWhite, color.Bold),
	SUCCESS:     color.New(color.FgGreen, color.Bold),
	WARNING:     color.New(color.FgYellow, color.Bold),
	ERROR:       color.New(color.FgRed, color.Bold),
	PLACEMENT:   color.New(color.FgCyan),
	CONSOLIDATE: color.New(color.FgBlue),
	MIGRATION:   color.New(color.FgMagenta),
	POWER:       color.New(color.FgHiYellow),
}
