// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package imager

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
)

// State of the disk image.
type State int

// Disk image states, in build order.
const (
	StateAllocated State = iota
	StateSized
	StatePartitioned
	StateFilesystemBuilt
	StateEmbedded
	StateInstalled
	StateReady
	StateDestroyed
)

var stateNames = [...]string{
	StateAllocated:       "allocated",
	StateSized:           "sized",
	StatePartitioned:     "partitioned",
	StateFilesystemBuilt: "filesystem built",
	StateEmbedded:        "embedded",
	StateInstalled:       "installed",
	StateReady:           "ready",
	StateDestroyed:       "destroyed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}

// DiskImage is a built disk image backed by a file.
//
// Close removes the backing file.
type DiskImage struct {
	mu sync.Mutex

	path       string
	bootRecord profile.BootRecord
	filesystem profile.Filesystem

	history []State
}

func newDiskImage(path string, prof *profile.Profile) *DiskImage {
	return &DiskImage{
		path:       path,
		bootRecord: prof.BootRecord,
		filesystem: prof.Filesystem,
		history:    []State{StateAllocated},
	}
}

// Path of the image file.
func (d *DiskImage) Path() string {
	return d.path
}

// BootRecord of the image.
func (d *DiskImage) BootRecord() profile.BootRecord {
	return d.bootRecord
}

// Filesystem of the image.
func (d *DiskImage) Filesystem() profile.Filesystem {
	return d.filesystem
}

// IsCD returns true for ISO9660 images.
func (d *DiskImage) IsCD() bool {
	return d.bootRecord == profile.BootRecordCD
}

// State returns the last reached state.
func (d *DiskImage) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.history[len(d.history)-1]
}

func (d *DiskImage) transition(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.history = append(d.history, s)
}

func (d *DiskImage) states() []State {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.history)
}

// Close removes the backing file.
//
// Close is idempotent.
func (d *DiskImage) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.history[len(d.history)-1] == StateDestroyed {
		return nil
	}

	d.history = append(d.history, StateDestroyed)

	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove disk image: %w", err)
	}

	return nil
}
