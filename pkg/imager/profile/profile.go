// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package profile contains definition of the disk image generation profile.
package profile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/siderolabs/go-pointer"
	"gopkg.in/yaml.v3"
)

//go:generate go tool github.com/dmarkham/enumer -type BootRecord,Filesystem,OutFormat -linecomment -text

var (
	// ErrUnsupportedFilesystem is returned for filesystem types which can't back an image.
	ErrUnsupportedFilesystem = errors.New("unsupported filesystem")

	// ErrInvalidCombination is returned when the boot record and filesystem types don't match.
	ErrInvalidCombination = errors.New("invalid boot record and filesystem combination")
)

// Profile describes disk image generation.
type Profile struct {
	// Root is the directory whose contents are copied into the image filesystem.
	Root string `yaml:"root" toml:"root"`
	// BootRecord is the type of the boot record: MBR, GPT or CD.
	BootRecord BootRecord `yaml:"bootRecord" toml:"bootRecord"`
	// Filesystem backing the image: FAT12, FAT16, FAT32 or ISO9660.
	//
	// Defaults to ISO9660 for CD images and FAT32 otherwise.
	Filesystem Filesystem `yaml:"filesystem,omitempty" toml:"filesystem,omitempty"`
	// Label is the FAT volume label or the ISO volume ID, optional.
	Label string `yaml:"label,omitempty" toml:"label,omitempty"`
	// SizeMiB is the filesystem size in MiB, defaults depend on the filesystem type.
	//
	// Ignored for ISO9660.
	SizeMiB *uint64 `yaml:"sizeMiB,omitempty" toml:"sizeMiB,omitempty"`
	// Customization of the image contents.
	Customization CustomizationProfile `yaml:"customization,omitempty" toml:"customization,omitempty"`
	// UEFI describes UEFI boot support.
	UEFI *UEFIOptions `yaml:"uefi,omitempty" toml:"uefi,omitempty"`
	// Hybrid describes legacy BIOS boot support.
	Hybrid HybridOptions `yaml:"hybrid,omitempty" toml:"hybrid,omitempty"`
	// Tools selects implementations of the external collaborators.
	Tools ToolOptions `yaml:"tools,omitempty" toml:"tools,omitempty"`
	// Output describes the generated image.
	Output Output `yaml:"output" toml:"output"`
	// ProjectRoot is the base directory for relative toolchain lookups.
	ProjectRoot string `yaml:"projectRoot,omitempty" toml:"projectRoot,omitempty"`
}

// UEFIOptions describes UEFI boot support.
type UEFIOptions struct {
	// BinaryPath is the UEFI application to install as EFI/BOOT/<bootfile>.
	BinaryPath string `yaml:"binaryPath" toml:"binaryPath"`
}

// HybridOptions describes legacy BIOS boot support.
type HybridOptions struct {
	// ISOBootRecordPath is the El Torito boot record for CD images.
	ISOBootRecordPath string `yaml:"isoBootRecordPath,omitempty" toml:"isoBootRecordPath,omitempty"`
	// InstallerPath is the tool which installs boot code into the finished image.
	InstallerPath string `yaml:"installerPath,omitempty" toml:"installerPath,omitempty"`
}

// ToolOptions selects implementations of the external collaborators.
type ToolOptions struct {
	// Partitioner is one of: auto, parted, darwin, native.
	Partitioner string `yaml:"partitioner,omitempty" toml:"partitioner,omitempty"`
	// FATBuilder is one of: mtools, native.
	FATBuilder string `yaml:"fatBuilder,omitempty" toml:"fatBuilder,omitempty"`
	// ISOBuilder is one of: xorriso, native.
	ISOBuilder string `yaml:"isoBuilder,omitempty" toml:"isoBuilder,omitempty"`
}

// MaxFATLabelLength is the maximum length of the FAT volume label.
const MaxFATLabelLength = 11

// Tool defaults.
const (
	PartitionerAuto   = "auto"
	DefaultFATBuilder = "mtools"
	DefaultISOBuilder = "xorriso"
)

// IsCD returns true for CD images.
func (p *Profile) IsCD() bool {
	return p.BootRecord == BootRecordCD
}

// UEFIBinaryPath returns the UEFI binary path, if any.
func (p *Profile) UEFIBinaryPath() string {
	return pointer.SafeDeref(p.UEFI).BinaryPath
}

// FillDefaults fills the default values of the optional fields.
func (p *Profile) FillDefaults() {
	if p.Filesystem == FilesystemUnknown {
		if p.IsCD() {
			p.Filesystem = FilesystemISO9660
		} else {
			p.Filesystem = FilesystemFAT32
		}
	}

	if p.Tools.Partitioner == "" {
		p.Tools.Partitioner = PartitionerAuto
	}

	if p.Tools.FATBuilder == "" {
		p.Tools.FATBuilder = DefaultFATBuilder
	}

	if p.Tools.ISOBuilder == "" {
		p.Tools.ISOBuilder = DefaultISOBuilder
	}

	if p.Output.Format == OutFormatUnknown {
		p.Output.Format = OutFormatRaw
	}
}

// Validate the profile.
//
//nolint:gocyclo
func (p *Profile) Validate() error {
	if p.Root == "" {
		return errors.New("root directory is required")
	}

	switch p.BootRecord {
	case BootRecordMBR, BootRecordGPT, BootRecordCD:
	case BootRecordUnknown:
		fallthrough
	default:
		return fmt.Errorf("invalid boot record type %q", p.BootRecord)
	}

	switch p.Filesystem {
	case FilesystemFAT12, FilesystemFAT16, FilesystemFAT32:
		if p.IsCD() {
			return fmt.Errorf("%w: %s on %s", ErrInvalidCombination, p.Filesystem, p.BootRecord)
		}
	case FilesystemISO9660:
		if !p.IsCD() {
			return fmt.Errorf("%w: %s on %s", ErrInvalidCombination, p.Filesystem, p.BootRecord)
		}
	case FilesystemUnknown:
		fallthrough
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFilesystem, p.Filesystem)
	}

	if p.Filesystem.IsFAT() && len(p.Label) > MaxFATLabelLength {
		return fmt.Errorf("FAT volume label %q is longer than %d characters", p.Label, MaxFATLabelLength)
	}

	if p.SizeMiB != nil && *p.SizeMiB == 0 {
		return errors.New("filesystem size must be at least 1 MiB")
	}

	if p.UEFI != nil && p.UEFI.BinaryPath == "" {
		return errors.New("uefi binary path is required when uefi is enabled")
	}

	switch p.Output.Format {
	case OutFormatRaw, OutFormatXZ, OutFormatGZ, OutFormatZSTD:
	case OutFormatUnknown:
		fallthrough
	default:
		return fmt.Errorf("invalid output format %q", p.Output.Format)
	}

	if p.Output.ImagePath != "" && p.Output.Path != "" &&
		filepath.Clean(p.Output.ImagePath) == filepath.Clean(p.Output.ExportPath()) {
		return fmt.Errorf("image path %q is the export destination", p.Output.ImagePath)
	}

	return nil
}

// Dump the profile as YAML.
func (p *Profile) Dump(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	return encoder.Encode(p)
}

// Load the profile from YAML.
func Load(r io.Reader) (Profile, error) {
	var p Profile

	if err := yaml.NewDecoder(r).Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("failed to decode profile: %w", err)
	}

	return p, nil
}

// LoadTOML loads the profile from TOML.
func LoadTOML(r io.Reader) (Profile, error) {
	var p Profile

	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&p); err != nil {
		return p, fmt.Errorf("failed to decode profile: %w", err)
	}

	return p, nil
}

// LoadFile loads the profile from a file, TOML for the .toml extension and YAML otherwise.
func LoadFile(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, err
	}

	defer f.Close() //nolint:errcheck

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return LoadTOML(f)
	}

	return Load(f)
}
