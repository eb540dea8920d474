// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides package level loggers on top of the go-ethereum slog handlers.
package log

import (
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// Logger writes key/value pair messages.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

// lazyLogger resolves the root logger on every call, so loggers created at
// package init follow a later SetDefault.
type lazyLogger struct {
	ctx []any
}

// WithContext returns a logger which always attaches ctx.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

func (l *lazyLogger) root() ethlog.Logger {
	return ethlog.Root().With(l.ctx...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.root().Crit(msg, ctx...) }

// Root returns the root logger.
func Root() Logger {
	return WithContext()
}

// Info logs with the root logger.
func Info(msg string, ctx ...any) { ethlog.Root().Info(msg, ctx...) }

// Warn logs with the root logger.
func Warn(msg string, ctx ...any) { ethlog.Root().Warn(msg, ctx...) }

// Error logs with the root logger.
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }

// Debug logs with the root logger.
func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }

// NewHandler creates the handler used by the command line tools.
// verbosity follows the legacy levels, 0 (crit) to 5 (trace).
func NewHandler(w io.Writer, jsonFormat bool, verbosity int) slog.Handler {
	var h slog.Handler
	if jsonFormat {
		h = ethlog.JSONHandler(w)
	} else {
		h = ethlog.NewTerminalHandler(w, useColor(w))
	}
	glog := ethlog.NewGlogHandler(h)
	glog.Verbosity(ethlog.FromLegacyLevel(verbosity))
	return glog
}

// SetDefault installs h as the root handler.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

func useColor(w io.Writer) bool {
	type fder interface{ Fd() uintptr }
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
