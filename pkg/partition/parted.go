// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import (
	"context"
	"fmt"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/tool"
)

// Parted writes partition tables with GNU parted.
type Parted struct {
	runner tool.Runner
}

// NewParted creates a new parted writer.
func NewParted(runner tool.Runner) *Parted {
	return &Parted{runner: runner}
}

// Name implements Writer.
func (p *Parted) Name() string { return WriterParted }

// Tools implements Writer.
func (p *Parted) Tools(profile.BootRecord) []string { return []string{"parted"} }

// Write implements Writer.
func (p *Parted) Write(ctx context.Context, path string, table profile.BootRecord, fs profile.Filesystem, startMiB, lengthMiB uint64) error {
	if err := checkTable(table, fs); err != nil {
		return err
	}

	label, name := "msdos", "primary"

	if table == profile.BootRecordGPT {
		label, name = "gpt", Name
	}

	_, err := p.runner.Run(ctx, "parted", "-s", path,
		"mklabel", label,
		"mkpart", name, partedFilesystem(fs),
		fmt.Sprintf("%dMiB", startMiB), fmt.Sprintf("%dMiB", startMiB+lengthMiB),
	)

	return err
}

// partedFilesystem returns the filesystem type hint, parted can't label FAT12.
func partedFilesystem(fs profile.Filesystem) string {
	if fs == profile.FilesystemFAT32 {
		return "fat32"
	}

	return "fat16"
}
