// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package partition writes the single-partition table of raw disk images.
package partition

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/tool"
)

// ErrUnsupportedTable is returned for boot records which don't carry a partition table.
var ErrUnsupportedTable = errors.New("unsupported partition table")

// Writer names.
const (
	WriterParted = "parted"
	WriterDarwin = "darwin"
	WriterNative = "native"
)

// Name is the name of the data partition in GPT tables.
const Name = "bootimage"

// SectorSize is the logical sector size of the produced images.
const SectorSize = 512

// Writer writes a partition table with exactly one partition spanning [startMiB, startMiB+lengthMiB).
type Writer interface {
	// Name of the writer.
	Name() string
	// Tools which must be installed on the host.
	Tools(table profile.BootRecord) []string
	// Write the partition table.
	Write(ctx context.Context, path string, table profile.BootRecord, fs profile.Filesystem, startMiB, lengthMiB uint64) error
}

// ForHost returns the writer matching the host operating system.
func ForHost(goos string, runner tool.Runner) Writer {
	switch goos {
	case "darwin":
		return NewDarwin(runner)
	case "linux":
		return NewParted(runner)
	default:
		return NewNative()
	}
}

// ByName returns the writer by name, "auto" selects the writer for the host.
func ByName(name, goos string, runner tool.Runner) (Writer, error) {
	switch name {
	case "", profile.PartitionerAuto:
		return ForHost(goos, runner), nil
	case WriterParted:
		return NewParted(runner), nil
	case WriterDarwin:
		return NewDarwin(runner), nil
	case WriterNative:
		return NewNative(), nil
	default:
		return nil, fmt.Errorf("unknown partitioner %q", name)
	}
}

func checkTable(table profile.BootRecord, fs profile.Filesystem) error {
	if table != profile.BootRecordMBR && table != profile.BootRecordGPT {
		return fmt.Errorf("%w: %s", ErrUnsupportedTable, table)
	}

	if !fs.IsFAT() {
		return fmt.Errorf("%w: %s can't be placed into a %s partition", profile.ErrUnsupportedFilesystem, fs, table)
	}

	return nil
}

func sectors(mib uint64) uint64 {
	return mib * humanize.MiByte / SectorSize
}
