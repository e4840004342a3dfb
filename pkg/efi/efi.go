// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package efi identifies UEFI applications.
package efi

import (
	"debug/pe"
	"slices"
)

// Removable media boot file names by PE machine type.
var bootFileNames = map[uint16]string{
	pe.IMAGE_FILE_MACHINE_AMD64:       "BOOTX64.EFI",
	pe.IMAGE_FILE_MACHINE_I386:        "BOOTIA32.EFI",
	pe.IMAGE_FILE_MACHINE_ARM64:       "BOOTAA64.EFI",
	pe.IMAGE_FILE_MACHINE_ARMNT:       "BOOTARM.EFI",
	pe.IMAGE_FILE_MACHINE_RISCV64:     "BOOTRISCV64.EFI",
	pe.IMAGE_FILE_MACHINE_LOONGARCH64: "BOOTLOONGARCH64.EFI",
}

// BootFileName returns the removable media boot file name for the PE machine type.
func BootFileName(machine uint16) (string, bool) {
	name, ok := bootFileNames[machine]

	return name, ok
}

// ConventionalNames returns all removable media boot file names, sorted.
func ConventionalNames() []string {
	names := make([]string, 0, len(bootFileNames))

	for _, name := range bootFileNames {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// SniffBootFileName returns the boot file name matching the architecture of the PE image at path.
//
// The second return value is false if the file is not a PE image or targets an unknown architecture.
func SniffBootFileName(path string) (string, bool) {
	f, err := pe.Open(path)
	if err != nil {
		return "", false
	}

	defer f.Close() //nolint:errcheck

	return BootFileName(f.Machine)
}
