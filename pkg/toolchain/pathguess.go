// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package toolchain

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Access modes for path checks.
const (
	Exists     = unix.F_OK
	Executable = unix.X_OK
	Readable   = unix.R_OK
)

// ValidPath returns the guess if it is accessible with the given mode.
func ValidPath(guess string, mode uint32) (string, bool) {
	if guess == "" {
		return "", false
	}

	if err := unix.Access(guess, mode); err != nil {
		return "", false
	}

	return guess, true
}

// WithPrefixes returns the first accessible <prefix>/<postfix>.
func WithPrefixes(prefixes []string, postfix string, mode uint32) (string, bool) {
	for _, prefix := range prefixes {
		if path, ok := ValidPath(filepath.Join(prefix, postfix), mode); ok {
			return path, true
		}
	}

	return "", false
}

// WithMiddleParts returns the first accessible <prefix>/<middle>/<postfix>.
func WithMiddleParts(prefix string, middleParts []string, postfix string, mode uint32) (string, bool) {
	for _, middle := range middleParts {
		if path, ok := ValidPath(filepath.Join(prefix, middle, postfix), mode); ok {
			return path, true
		}
	}

	return "", false
}
