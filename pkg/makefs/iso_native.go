// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package makefs

import (
	"context"
	"fmt"

	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/filesystem/iso9660"
	"github.com/dustin/go-humanize"

	"github.com/siderolabs/bootimage/pkg/imager/utils"
)

const isoBlockSize = 2048

// NativeISO builds ISO9660 images in-process.
type NativeISO struct {
	opts Options
}

// NewNativeISO creates a new in-process ISO builder.
func NewNativeISO(setters ...Option) *NativeISO {
	return &NativeISO{
		opts: NewDefaultOptions(setters...),
	}
}

// Name implements ISOBuilder.
func (n *NativeISO) Name() string { return BuilderNative }

// Tools implements ISOBuilder.
func (n *NativeISO) Tools() []string { return nil }

// Build implements ISOBuilder.
func (n *NativeISO) Build(_ context.Context, options ISOOptions) error {
	tree, cleanup, err := stage(options, n.opts.Printf)
	if err != nil {
		return err
	}

	defer cleanup()

	size, err := utils.DirSize(tree)
	if err != nil {
		return err
	}

	// room for the directory records and the boot catalog
	size += 4 * humanize.MiByte

	if err = utils.ResizeMiB(options.OutPath, (size+humanize.MiByte-1)/humanize.MiByte); err != nil {
		return err
	}

	n.opts.Printf("creating ISO %s", options.OutPath)

	return withDisk(options.OutPath, func(d *disk.Disk) error {
		d.LogicalBlocksize = isoBlockSize

		fs, err := d.CreateFilesystem(disk.FilesystemSpec{
			Partition:   0,
			FSType:      filesystem.TypeISO9660,
			VolumeLabel: VolumeID(options.VolumeID),
		})
		if err != nil {
			return fmt.Errorf("failed to create ISO9660 filesystem: %w", err)
		}

		if err = populate(fs, tree); err != nil {
			return err
		}

		isoFS, ok := fs.(*iso9660.FileSystem)
		if !ok {
			return fmt.Errorf("unexpected filesystem type %T", fs)
		}

		return isoFS.Finalize(iso9660.FinalizeOptions{
			RockRidge:        true,
			VolumeIdentifier: VolumeID(options.VolumeID),
			ElTorito:         elTorito(options),
		})
	})
}

func elTorito(options ISOOptions) *iso9660.ElTorito {
	var entries []*iso9660.ElToritoEntry

	if options.BootRecordPath != "" {
		entries = append(entries, &iso9660.ElToritoEntry{
			Platform:  iso9660.BIOS,
			Emulation: iso9660.NoEmulation,
			BootFile:  "/" + BootRecordName,
			BootTable: true,
			LoadSize:  BootLoadSize,
		})
	}

	if options.EFIImagePath != "" {
		entries = append(entries, &iso9660.ElToritoEntry{
			Platform:  iso9660.EFI,
			Emulation: iso9660.NoEmulation,
			BootFile:  "/" + EFIImageName,
		})
	}

	if len(entries) == 0 {
		return nil
	}

	return &iso9660.ElTorito{
		BootCatalog: BootCatalog,
		Entries:     entries,
	}
}
