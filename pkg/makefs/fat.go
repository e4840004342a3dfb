// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package makefs

import (
	"context"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
)

// FATBuilder creates and populates FAT filesystems in pre-sized image files.
type FATBuilder interface {
	// Name of the builder.
	Name() string
	// Tools which must be installed on the host.
	Tools() []string
	// Supports returns true if the filesystem type can be built.
	Supports(fs profile.Filesystem) bool
	// Format creates an empty filesystem in the image.
	//
	// FAT12/FAT16/FAT32 is picked based on the image size unless forceFAT32 is set.
	Format(ctx context.Context, image string, forceFAT32 bool) error
	// Merge copies every top-level entry of each source into the filesystem root.
	//
	// Sources are merged in the argument order, later sources overwrite earlier ones.
	Merge(ctx context.Context, image string, sources ...string) error
}
