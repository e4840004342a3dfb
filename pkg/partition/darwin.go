// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/tool"
)

// InteractiveTimeout bounds fdisk and gdisk invocations.
const InteractiveTimeout = 5 * time.Second

// MBR partition type IDs.
const (
	MBRTypeFAT12 = 0x01
	MBRTypeFAT16 = 0x04
	MBRTypeFAT32 = 0x0C
)

// GPTTypeBasicData is the gdisk type code of the Microsoft basic data partition.
const GPTTypeBasicData = "0700"

// Darwin writes partition tables with the macOS fdisk and gdisk.
type Darwin struct {
	runner  tool.Runner
	timeout time.Duration
}

// NewDarwin creates a new macOS writer.
func NewDarwin(runner tool.Runner) *Darwin {
	return &Darwin{
		runner:  runner,
		timeout: InteractiveTimeout,
	}
}

// Name implements Writer.
func (d *Darwin) Name() string { return WriterDarwin }

// Tools implements Writer.
func (d *Darwin) Tools(table profile.BootRecord) []string {
	if table == profile.BootRecordGPT {
		return []string{"gdisk"}
	}

	return []string{"fdisk"}
}

// Write implements Writer.
func (d *Darwin) Write(ctx context.Context, path string, table profile.BootRecord, fs profile.Filesystem, startMiB, lengthMiB uint64) error {
	if err := checkTable(table, fs); err != nil {
		return err
	}

	begin, length := sectors(startMiB), sectors(lengthMiB)

	var err error

	if table == profile.BootRecordGPT {
		script := fmt.Sprintf("n\n1\n%d\n%d\n%s\nw\ny\n", begin, begin+length-1, GPTTypeBasicData)

		_, err = d.runner.RunWithInput(ctx, d.timeout, strings.NewReader(script), "gdisk", path)
	} else {
		script := fmt.Sprintf("%d,%d,%02X\n", begin, length, MBRTypeID(fs))

		_, err = d.runner.RunWithInput(ctx, d.timeout, strings.NewReader(script), "fdisk", "-yr", path)
	}

	return err
}

// MBRTypeID returns the MBR partition type for the FAT filesystem.
func MBRTypeID(fs profile.Filesystem) byte {
	switch fs { //nolint:exhaustive
	case profile.FilesystemFAT12:
		return MBRTypeFAT12
	case profile.FilesystemFAT16:
		return MBRTypeFAT16
	default:
		return MBRTypeFAT32
	}
}
