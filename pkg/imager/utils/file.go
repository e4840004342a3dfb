// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//nolint:revive
package utils

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
)

// ResizeMiB truncates the file to zero and then extends it to the given size.
//
// The file is created if it doesn't exist, previous contents are discarded.
func ResizeMiB(path string, mib uint64) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	//nolint:errcheck
	defer f.Close()

	if err = f.Truncate(int64(mib * humanize.MiByte)); err != nil {
		return fmt.Errorf("error resizing %s to %d MiB: %w", path, mib, err)
	}

	return f.Close()
}

// EmbedAt copies src into image starting at the given MiB offset.
//
// The image is never truncated: bytes outside of the copied range are preserved.
func EmbedAt(image string, offsetMiB uint64, src string) error {
	from, err := os.Open(src)
	if err != nil {
		return err
	}
	//nolint:errcheck
	defer from.Close()

	to, err := os.OpenFile(image, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	//nolint:errcheck
	defer to.Close()

	if _, err = to.Seek(int64(offsetMiB*humanize.MiByte), io.SeekStart); err != nil {
		return err
	}

	if _, err = io.Copy(to, from); err != nil {
		return fmt.Errorf("error embedding %s into %s: %w", src, image, err)
	}

	return to.Close()
}

// DirSize returns the total size of regular files under the directory.
func DirSize(path string) (uint64, error) {
	var size uint64

	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		size += uint64(info.Size())

		return nil
	})

	return size, err
}

// SourceDateEpoch returns the SOURCE_DATE_EPOCH environment variable, if set.
func SourceDateEpoch() (int64, bool, error) {
	epoch, ok := os.LookupEnv("SOURCE_DATE_EPOCH")
	if !ok || epoch == "" {
		return 0, false, nil
	}

	v, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse SOURCE_DATE_EPOCH: %w", err)
	}

	return v, true, nil
}
