// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package cli contains helpers shared by the command line tools.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// AbortExitCode is the exit code used when the second signal arrives.
const AbortExitCode = 130

// WithContext wraps function call to provide a context cancellable with ^C.
//
// The first signal cancels the context and lets f clean up its temporary files,
// the second one exits immediately.
func WithContext(ctx context.Context, f func(context.Context) error) error {
	return withSignals(ctx, os.Stderr, func() { os.Exit(AbortExitCode) }, f, os.Interrupt, syscall.SIGTERM)
}

func withSignals(ctx context.Context, w io.Writer, abort func(), f func(context.Context) error, signals ...os.Signal) error {
	wrappedCtx, wrappedCtxCancel := context.WithCancel(ctx)
	defer wrappedCtxCancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)

	defer signal.Stop(sigCh)

	exited := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		select {
		case <-sigCh:
			wrappedCtxCancel()

			fmt.Fprintln(w, "Signal received, cleaning up, press Ctrl+C once again to abort immediately...") //nolint:errcheck
		case <-exited:
			return
		}

		select {
		case <-sigCh:
			abort()
		case <-exited:
		}
	}()

	defer func() {
		close(exited)
		<-done
	}()

	return f(wrappedCtx)
}
