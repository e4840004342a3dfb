// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package esp assembles EFI system partition contents from a single UEFI binary.
package esp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/siderolabs/bootimage/pkg/efi"
	"github.com/siderolabs/bootimage/pkg/imager/layout"
	"github.com/siderolabs/bootimage/pkg/imager/utils"
	"github.com/siderolabs/bootimage/pkg/makefs"
)

// BootDir is the removable media boot directory.
const BootDir = "EFI/BOOT"

// BootFileName returns the name of the binary inside BootDir.
//
// PE images are named after their architecture unless the file name already matches it,
// binaries of unknown architecture keep their name.
func BootFileName(binary string) string {
	name := filepath.Base(binary)

	sniffed, ok := efi.SniffBootFileName(binary)
	if !ok || strings.EqualFold(name, sniffed) {
		return name
	}

	return sniffed
}

// Tree lays out EFI/BOOT/<bootfile> under the scratch directory.
//
// It returns the path of the boot file.
func Tree(printf func(string, ...any), scratch, binary string) (string, error) {
	dest := filepath.Join(scratch, filepath.FromSlash(BootDir), BootFileName(binary))

	if err := utils.CopyFiles(printf, utils.SourceDestination(binary, dest)); err != nil {
		return "", fmt.Errorf("failed to assemble ESP tree: %w", err)
	}

	return dest, nil
}

// Image creates a FAT image of the ESP tree at out.
func Image(ctx context.Context, builder makefs.FATBuilder, tree, out string) error {
	if err := utils.ResizeMiB(out, layout.ESPSizeMiB); err != nil {
		return err
	}

	if err := builder.Format(ctx, out, false); err != nil {
		return fmt.Errorf("failed to format ESP image: %w", err)
	}

	if err := builder.Merge(ctx, out, tree); err != nil {
		return fmt.Errorf("failed to fill ESP image: %w", err)
	}

	return nil
}
