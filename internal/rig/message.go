package rig

import (
	"fmt"
	"log/slog"
)

// Level grades an operation result message.
type Level int

const (
	Info Level = iota
	Warning
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case Warning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Message is a user-facing result of a rig operation.
type Message struct {
	Level Level
	Text  string
}

func (m Message) String() string {
	return m.Level.String() + ": " + m.Text
}

func infof(format string, args ...any) Message {
	return Message{Level: Info, Text: fmt.Sprintf(format, args...)}
}

func warnf(format string, args ...any) Message {
	return Message{Level: Warning, Text: fmt.Sprintf(format, args...)}
}
