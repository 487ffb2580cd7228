// Copyright 2025 The go-trustmesh Authors
// This file is part of the go-trustmesh library.
//
// The go-trustmesh library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-trustmesh library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-trustmesh library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides the leveled key-value logger used throughout the
// registry. Call sites pass a message followed by alternating key/value
// context pairs:
//
//	log.Info("Agent registered", "id", id, "owner", owner)
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Lvl is a log level.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

// AlignedString returns a 5-character aligned representation of the level.
func (l Lvl) AlignedString() string {
	switch l {
	case LvlTrace:
		return "TRACE"
	case LvlDebug:
		return "DEBUG"
	case LvlInfo:
		return "INFO "
	case LvlWarn:
		return "WARN "
	case LvlError:
		return "ERROR"
	case LvlCrit:
		return "CRIT "
	default:
		panic("bad level")
	}
}

// TerminalStringer is implemented by types that want compact console
// rendering instead of their full String form.
type TerminalStringer interface {
	TerminalString() string
}

// Logger writes leveled key-value records.
type Logger interface {
	// New returns a child logger with the given context prepended to
	// every record.
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx []interface{}
}

var (
	mu       sync.Mutex
	maxLvl   = LvlInfo
	out      = colorable.NewColorableStderr()
	colored  = isatty.IsTerminal(os.Stderr.Fd())
	root     = &logger{}
	lvlColor = map[Lvl]string{
		LvlCrit:  "\x1b[35m",
		LvlError: "\x1b[31m",
		LvlWarn:  "\x1b[33m",
		LvlInfo:  "\x1b[32m",
		LvlDebug: "\x1b[36m",
		LvlTrace: "\x1b[34m",
	}
)

// SetLevel sets the maximum level the root logger emits.
func SetLevel(l Lvl) {
	mu.Lock()
	defer mu.Unlock()
	maxLvl = l
}

// Root returns the root logger.
func Root() Logger { return root }

// New returns a child of the root logger with the given context.
func New(ctx ...interface{}) Logger { return root.New(ctx...) }

// Trace logs at trace level on the root logger.
func Trace(msg string, ctx ...interface{}) { root.write(LvlTrace, msg, ctx) }

// Debug logs at debug level on the root logger.
func Debug(msg string, ctx ...interface{}) { root.write(LvlDebug, msg, ctx) }

// Info logs at info level on the root logger.
func Info(msg string, ctx ...interface{}) { root.write(LvlInfo, msg, ctx) }

// Warn logs at warn level on the root logger.
func Warn(msg string, ctx ...interface{}) { root.write(LvlWarn, msg, ctx) }

// Error logs at error level on the root logger.
func Error(msg string, ctx ...interface{}) { root.write(LvlError, msg, ctx) }

// Crit logs at crit level on the root logger and exits the process.
func Crit(msg string, ctx ...interface{}) {
	root.write(LvlCrit, msg, ctx)
	os.Exit(1)
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{ctx: make([]interface{}, 0, len(l.ctx)+len(ctx))}
	child.ctx = append(child.ctx, l.ctx...)
	child.ctx = append(child.ctx, ctx...)
	return child
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(LvlCrit, msg, ctx)
	os.Exit(1)
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if lvl > maxLvl {
		return
	}

	var b strings.Builder
	if colored {
		b.WriteString(lvlColor[lvl])
		b.WriteString(lvl.AlignedString())
		b.WriteString("\x1b[0m")
	} else {
		b.WriteString(lvl.AlignedString())
	}
	b.WriteByte('[')
	b.WriteString(time.Now().Format("01-02|15:04:05.000"))
	b.WriteString("] ")
	b.WriteString(msg)

	all := make([]interface{}, 0, len(l.ctx)+len(ctx))
	all = append(all, l.ctx...)
	all = append(all, ctx...)
	for i := 0; i < len(all); i += 2 {
		key := "LOG_ERROR"
		if s, ok := all[i].(string); ok {
			key = s
		}
		var val string
		if i+1 < len(all) {
			val = formatValue(all[i+1])
		} else {
			val = "<missing>"
		}
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(val)
	}
	b.WriteByte('\n')
	fmt.Fprint(out, b.String())
}

func formatValue(v interface{}) string {
	if ts, ok := v.(TerminalStringer); ok {
		return escape(ts.TerminalString())
	}
	return escape(fmt.Sprintf("%v", v))
}

// escape quotes values containing spaces or equals signs so records stay
// machine parseable.
func escape(s string) string {
	if strings.ContainsAny(s, " =\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
