// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import (
	"context"
	"fmt"
	"strings"

	"github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/backend/file"
	diskpart "github.com/diskfs/go-diskfs/partition"
	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/google/uuid"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
)

// Native writes partition tables in-process.
type Native struct{}

// NewNative creates a new in-process writer.
func NewNative() *Native {
	return &Native{}
}

// Name implements Writer.
func (n *Native) Name() string { return WriterNative }

// Tools implements Writer.
func (n *Native) Tools(profile.BootRecord) []string { return nil }

// Write implements Writer.
func (n *Native) Write(_ context.Context, path string, table profile.BootRecord, fs profile.Filesystem, startMiB, lengthMiB uint64) error {
	if err := checkTable(table, fs); err != nil {
		return err
	}

	bk, err := file.OpenFromPath(path, false)
	if err != nil {
		return fmt.Errorf("failed to open image %q: %w", path, err)
	}

	defer bk.Close() //nolint:errcheck

	d, err := diskfs.OpenBackend(bk, diskfs.WithOpenMode(diskfs.ReadWrite))
	if err != nil {
		return fmt.Errorf("failed to open disk backend for image %q: %w", path, err)
	}

	defer d.Close() //nolint:errcheck

	if err = d.Partition(nativeTable(table, fs, sectors(startMiB), sectors(lengthMiB))); err != nil {
		return fmt.Errorf("failed to write %s partition table: %w", table, err)
	}

	return nil
}

// guidNamespace scopes the GPT GUIDs generated for images.
var guidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/siderolabs/bootimage"))

// StableGUID returns the GUID for a disk or partition with the given layout.
//
// Identical layouts get identical GUIDs, so rebuilding an image reproduces it bit for bit.
func StableGUID(kind string, begin, length uint64) string {
	return strings.ToUpper(uuid.NewSHA1(guidNamespace, fmt.Appendf(nil, "%s:%d:%d", kind, begin, length)).String())
}

func nativeTable(table profile.BootRecord, fs profile.Filesystem, begin, length uint64) diskpart.Table {
	if table == profile.BootRecordGPT {
		return &gpt.Table{
			LogicalSectorSize:  SectorSize,
			PhysicalSectorSize: SectorSize,
			ProtectiveMBR:      true,
			GUID:               StableGUID("disk", begin, length),
			Partitions: []*gpt.Partition{
				{
					Start: begin,
					End:   begin + length - 1,
					Type:  gpt.MicrosoftBasicData,
					Name:  Name,
					GUID:  StableGUID("partition", begin, length),
				},
			},
		}
	}

	return &mbr.Table{
		LogicalSectorSize:  SectorSize,
		PhysicalSectorSize: SectorSize,
		Partitions: []*mbr.Partition{
			{
				Type:  mbr.Type(MBRTypeID(fs)),
				Start: uint32(begin),
				Size:  uint32(length),
			},
		},
	}
}
