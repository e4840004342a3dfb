// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package layout computes raw disk image geometry in whole MiB.
package layout

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
)

const (
	// AlignMiB is the start of the data partition.
	AlignMiB uint64 = 1

	// ESPSizeMiB is the size of the UEFI system partition image.
	ESPSizeMiB uint64 = 1

	// GPTBackupMiB is reserved at the end of the disk for the backup GPT header.
	GPTBackupMiB uint64 = 1
)

// DefaultSizeMiB returns the default payload size for the filesystem.
func DefaultSizeMiB(fs profile.Filesystem) (uint64, error) {
	switch fs { //nolint:exhaustive
	case profile.FilesystemFAT12:
		return 3, nil
	case profile.FilesystemFAT16:
		return 32, nil
	case profile.FilesystemFAT32:
		return 64, nil
	default:
		return 0, fmt.Errorf("%w: no default size for %s", profile.ErrUnsupportedFilesystem, fs)
	}
}

// PayloadSizeMiB returns the explicit size if set, the filesystem default otherwise.
func PayloadSizeMiB(fs profile.Filesystem, explicit *uint64) (uint64, error) {
	if explicit != nil {
		return *explicit, nil
	}

	return DefaultSizeMiB(fs)
}

// ImageSizeMiB returns the total raw image size.
func ImageSizeMiB(align, payload uint64, br profile.BootRecord) uint64 {
	size := align + payload

	if br == profile.BootRecordGPT {
		size += GPTBackupMiB
	}

	return size
}

// Bytes converts MiB to bytes.
func Bytes(mib uint64) int64 {
	return int64(mib * humanize.MiByte)
}
