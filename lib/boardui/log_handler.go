// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers a slog record to the model for display on the
// status line. Only records at or above the handler's configured level
// are delivered.
type logRecordMsg struct {
	// Summary is the one-line message shown on the status line.
	Summary string

	// Level is the slog level for styling (warn vs error).
	Level slog.Level
}

// logRecordFadeMsg clears the status line and restores the normal
// help text.
type logRecordFadeMsg struct{}

// logRecordFadeDelay is how long log messages stay on the status line
// before fading back to the keyboard help line.
const logRecordFadeDelay = 5 * time.Second

// TUILogHandler is a slog.Handler that routes log records into a
// bubbletea program as messages. Records below the configured level
// are silently dropped; the rest are summarized and sent via
// program.Send().
//
// The handler must be created before the program starts. Call
// SetProgram once the tea.Program exists; records arriving before
// that are dropped. Handlers derived via WithAttrs/WithGroup share
// the same program pointer, so one SetProgram call covers them all.
type TUILogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	groups  []string
}

// NewTUILogHandler creates a handler that delivers records at or
// above the given level to the bubbletea program.
func NewTUILogHandler(level slog.Level) *TUILogHandler {
	return &TUILogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram sets the bubbletea program that receives log messages.
// Safe to call from any goroutine.
func (handler *TUILogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

// Enabled reports whether the handler is interested in records at the
// given level.
func (handler *TUILogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle summarizes the record and sends it to the bubbletea program.
// If the program has not been set yet, the record is silently dropped.
func (handler *TUILogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}

	// Summary line: "message (key=value, ...)"
	summary := record.Message
	var attrParts []string
	for _, attr := range handler.attrs {
		attrParts = append(attrParts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrParts = append(attrParts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
		return true
	})
	if len(attrParts) > 0 {
		summary += " ("
		for index, part := range attrParts {
			if index > 0 {
				summary += ", "
			}
			summary += part
		}
		summary += ")"
	}

	program.Send(logRecordMsg{
		Summary: summary,
		Level:   record.Level,
	})
	return nil
}

// WithAttrs returns a new handler with the given attributes appended.
// The derived handler shares the same atomic program pointer.
func (handler *TUILogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TUILogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   append(sliceClone(handler.attrs), attrs...),
		groups:  sliceClone(handler.groups),
	}
}

// WithGroup returns a new handler with the given group name appended.
// The derived handler shares the same atomic program pointer.
func (handler *TUILogHandler) WithGroup(name string) slog.Handler {
	return &TUILogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   sliceClone(handler.attrs),
		groups:  append(sliceClone(handler.groups), name),
	}
}

// sliceClone returns a shallow copy of a slice. Avoids aliasing when
// building derived handlers with WithAttrs/WithGroup.
func sliceClone[T any](source []T) []T {
	if source == nil {
		return nil
	}
	result := make([]T, len(source))
	copy(result, source)
	return result
}
