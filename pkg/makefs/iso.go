// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package makefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/siderolabs/go-copy/copy"

	"github.com/siderolabs/bootimage/pkg/imager/utils"
)

// Names of the boot files in the ISO root.
const (
	BootRecordName = "boot_record"
	EFIImageName   = "efi_esp"
	BootCatalog    = "boot.catalog"

	// BootLoadSize is the El Torito load size of the BIOS boot record, in 512-byte sectors.
	BootLoadSize = 4
)

// ISOOptions describe an ISO9660 image.
type ISOOptions struct {
	// OutPath is the resulting ISO image.
	OutPath string
	// SourceDir is copied into the ISO root.
	SourceDir string
	// BootRecordPath enables BIOS El Torito boot, optional.
	BootRecordPath string
	// EFIImagePath is registered as the EFI boot image, optional.
	EFIImagePath string
	// VolumeID of the ISO, sanitized with VolumeID.
	VolumeID string
}

// ISOBuilder creates ISO9660 images.
type ISOBuilder interface {
	// Name of the builder.
	Name() string
	// Tools which must be installed on the host.
	Tools() []string
	// Build the ISO image.
	Build(ctx context.Context, options ISOOptions) error
}

// VolumeID returns a valid volume ID for the given label.
func VolumeID(label string) string {
	// builds a valid volume ID: 32 chars out of [A-Z0-9_]
	label = strings.ToUpper(label)
	label = strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '_' || r == '-' || r == '.' || r == ' ':
			return '_'
		default:
			return -1
		}
	}, label)

	if len(label) > 32 {
		label = label[:32]
	}

	return label
}

// stage copies the source tree and the boot files into a scratch directory.
//
// The caller must call the returned cleanup function.
func stage(options ISOOptions, printf func(string, ...any)) (string, func(), error) {
	scratch, err := os.MkdirTemp("", "bootimage-iso")
	if err != nil {
		return "", nil, err
	}

	cleanup := func() {
		os.RemoveAll(scratch) //nolint:errcheck
	}

	tree := filepath.Join(scratch, "tree")

	printf("staging %s", options.SourceDir)

	if err = copy.Dir(options.SourceDir, tree); err != nil {
		cleanup()

		return "", nil, fmt.Errorf("failed to stage ISO tree: %w", err)
	}

	var instructions []utils.CopyInstruction

	if options.BootRecordPath != "" {
		instructions = append(instructions, utils.SourceDestination(options.BootRecordPath, filepath.Join(tree, BootRecordName)))
	}

	if options.EFIImagePath != "" {
		instructions = append(instructions, utils.SourceDestination(options.EFIImagePath, filepath.Join(tree, EFIImageName)))
	}

	if err = utils.CopyFiles(printf, instructions...); err != nil {
		cleanup()

		return "", nil, err
	}

	return tree, cleanup, nil
}
