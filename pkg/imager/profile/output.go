// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package profile

import "path/filepath"

// Output describes image generation result.
type Output struct {
	// ImagePath is the working image path, a temporary file is allocated if empty.
	//
	// The working image is removed once the build scope is released.
	ImagePath string `yaml:"imagePath,omitempty" toml:"imagePath,omitempty"`
	// Path is where the finished image is exported to.
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`
	// Format for the exported image:
	//  * raw - image as is
	//  * .xz - xz compressed
	//  * .gz - gzip compressed
	//  * .zst - zstd compressed
	Format OutFormat `yaml:"format,omitempty" toml:"format,omitempty"`
}

// ExportPath returns Path with the format extension appended.
func (o Output) ExportPath() string {
	switch o.Format { //nolint:exhaustive
	case OutFormatXZ, OutFormatGZ, OutFormatZSTD:
		if filepath.Ext(o.Path) != o.Format.String() {
			return o.Path + o.Format.String()
		}
	}

	return o.Path
}

// BootRecord is the boot record type of an image.
type BootRecord int

// BootRecord values.
const (
	BootRecordUnknown BootRecord = iota // unknown
	BootRecordMBR                       // MBR
	BootRecordGPT                       // GPT
	BootRecordCD                        // CD
)

// Filesystem is the filesystem type backing an image.
type Filesystem int

// Filesystem values.
const (
	FilesystemUnknown Filesystem = iota // unknown
	FilesystemFAT12                     // FAT12
	FilesystemFAT16                     // FAT16
	FilesystemFAT32                     // FAT32
	FilesystemISO9660                   // ISO9660
)

// IsFAT returns true for the FAT family.
func (i Filesystem) IsFAT() bool {
	return i == FilesystemFAT12 || i == FilesystemFAT16 || i == FilesystemFAT32
}

// OutFormat is output format specification.
type OutFormat int

// OutFormat values.
const (
	OutFormatUnknown OutFormat = iota // unknown
	OutFormatRaw                      // raw
	OutFormatXZ                       // .xz
	OutFormatGZ                       // .gz
	OutFormatZSTD                     // .zst
)

// Set implements pflag.Value.
func (i *BootRecord) Set(s string) error { return i.UnmarshalText([]byte(s)) }

// Type implements pflag.Value.
func (i *BootRecord) Type() string { return "boot-record" }

// Set implements pflag.Value.
func (i *Filesystem) Set(s string) error { return i.UnmarshalText([]byte(s)) }

// Type implements pflag.Value.
func (i *Filesystem) Type() string { return "filesystem" }

// Set implements pflag.Value, the leading dot of the compressed formats is optional.
func (i *OutFormat) Set(s string) error {
	if v, err := OutFormatString("." + s); err == nil {
		*i = v

		return nil
	}

	return i.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (i *OutFormat) Type() string { return "format" }
