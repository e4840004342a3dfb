// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package reporter implements the console progress output.
package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Status of the update.
type Status int

// Update statuses.
const (
	StatusRunning Status = iota
	StatusSucceeded
	StatusSkip
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusSkip:
		return "skip"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Update is a single progress update.
type Update struct {
	Message string
	Status  Status
}

// Reporter prints progress updates.
//
// On a terminal, running updates overwrite each other.
type Reporter struct {
	mu sync.Mutex

	w           io.Writer
	interactive bool

	lastLineTemporary bool
}

// Option configures the Reporter.
type Option func(*Reporter)

// WithWriter sets the output, colors and line rewriting are enabled only for terminals.
func WithWriter(w io.Writer) Option {
	return func(r *Reporter) {
		r.w = w
		r.interactive = isTerminal(w)
	}
}

// New creates a new Reporter writing to stderr.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		w:           os.Stderr,
		interactive: isTerminal(os.Stderr),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Report prints the update.
func (r *Reporter) Report(update Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := strings.TrimSpace(update.Message)

	if !r.interactive {
		fmt.Fprintln(r.w, line) //nolint:errcheck

		return
	}

	if r.lastLineTemporary {
		fmt.Fprint(r.w, "\r\033[K") //nolint:errcheck
	}

	var c *color.Color

	switch update.Status {
	case StatusRunning:
		c = color.New(color.FgYellow)
	case StatusSucceeded:
		c = color.New(color.FgGreen)
	case StatusSkip:
		c = color.New(color.Faint)
	case StatusError:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.Reset)
	}

	c.EnableColor()

	if update.Status == StatusRunning {
		c.Fprint(r.w, line) //nolint:errcheck

		r.lastLineTemporary = true

		return
	}

	c.Fprintln(r.w, line) //nolint:errcheck

	r.lastLineTemporary = false
}
