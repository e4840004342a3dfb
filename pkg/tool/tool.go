// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package tool runs the external utilities the image pipeline delegates to.
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/siderolabs/gen/xslices"
	"github.com/siderolabs/go-cmd/pkg/cmd"
	"go.uber.org/zap"
)

var (
	// ErrExternalToolFailure is returned when an external tool exits non-zero or times out.
	ErrExternalToolFailure = errors.New("external tool failure")

	// ErrToolNotFound is returned when a required external tool is not installed.
	ErrToolNotFound = errors.New("tool not found")
)

// Error describes a failed external tool invocation.
type Error struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

// Error implements error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Tool, strings.Join(e.Args, " "), e.Err)

	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}

	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error taxonomy.
func (e *Error) Is(target error) bool {
	switch target { //nolint:errorlint
	case ErrExternalToolFailure:
		return !errors.Is(e.Err, exec.ErrNotFound)
	case ErrToolNotFound:
		return errors.Is(e.Err, exec.ErrNotFound)
	}

	return false
}

// Runner invokes external tools.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	RunWithInput(ctx context.Context, timeout time.Duration, stdin io.Reader, name string, args ...string) (string, error)
}

// Exec is the Runner backed by the host processes.
type Exec struct {
	Logger *zap.Logger
}

// NewExec creates a new host Runner.
func NewExec(logger *zap.Logger) *Exec {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Exec{Logger: logger}
}

// Run the tool to completion, output is returned on success.
func (e *Exec) Run(ctx context.Context, name string, args ...string) (string, error) {
	e.Logger.Debug("running tool", zap.String("tool", name), zap.Strings("args", args))

	out, err := cmd.RunContext(ctx, name, args...)
	if err != nil {
		return out, &Error{Tool: name, Args: args, Output: out, Err: err}
	}

	return out, nil
}

// RunWithInput runs a tool which reads its commands from stdin.
//
// The tool is killed once the timeout expires.
func (e *Exec) RunWithInput(ctx context.Context, timeout time.Duration, stdin io.Reader, name string, args ...string) (string, error) {
	e.Logger.Debug("running interactive tool", zap.String("tool", name), zap.Strings("args", args), zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var out bytes.Buffer

	c := exec.CommandContext(ctx, name, args...)
	c.Stdin = stdin
	c.Stdout = &out
	c.Stderr = &out

	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}

		return out.String(), &Error{Tool: name, Args: args, Output: out.String(), Err: err}
	}

	return out.String(), nil
}

// Require checks that every named tool is installed.
func Require(names ...string) error {
	var missing []string

	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrToolNotFound, strings.Join(dedup(missing), ", "))
	}

	return nil
}

func dedup(names []string) []string {
	seen := map[string]struct{}{}

	return xslices.Filter(names, func(name string) bool {
		if _, ok := seen[name]; ok {
			return false
		}

		seen[name] = struct{}{}

		return true
	})
}
