// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package makefs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/backend/file"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
)

// NativeFAT builds FAT32 filesystems in-process.
type NativeFAT struct {
	opts Options
}

// NewNativeFAT creates a new in-process FAT builder.
func NewNativeFAT(setters ...Option) *NativeFAT {
	return &NativeFAT{
		opts: NewDefaultOptions(setters...),
	}
}

// Name implements FATBuilder.
func (n *NativeFAT) Name() string { return BuilderNative }

// Tools implements FATBuilder.
func (n *NativeFAT) Tools() []string { return nil }

// Supports implements FATBuilder.
func (n *NativeFAT) Supports(fs profile.Filesystem) bool { return fs == profile.FilesystemFAT32 }

// Format implements FATBuilder.
//
// The filesystem is always FAT32.
func (n *NativeFAT) Format(_ context.Context, image string, _ bool) error {
	n.opts.Printf("formatting FAT32 filesystem in %s", image)

	return withDisk(image, func(d *disk.Disk) error {
		fs, err := d.CreateFilesystem(disk.FilesystemSpec{
			Partition:   0,
			FSType:      filesystem.TypeFat32,
			VolumeLabel: n.opts.Label,
		})
		if err != nil {
			return fmt.Errorf("failed to create FAT32 filesystem in %q: %w", image, err)
		}

		return fs.Close()
	})
}

// Merge implements FATBuilder.
func (n *NativeFAT) Merge(_ context.Context, image string, sources ...string) error {
	return withDisk(image, func(d *disk.Disk) error {
		dfs, err := d.GetFilesystem(0)
		if err != nil {
			return fmt.Errorf("failed to get filesystem for %q: %w", image, err)
		}

		defer dfs.Close() //nolint:errcheck

		for _, source := range sources {
			n.opts.Printf("copying %s into %s", source, image)

			if err = populate(dfs, source); err != nil {
				return err
			}
		}

		return nil
	})
}

func withDisk(image string, f func(d *disk.Disk) error) error {
	bk, err := file.OpenFromPath(image, false)
	if err != nil {
		return fmt.Errorf("failed to open image %q: %w", image, err)
	}

	defer bk.Close() //nolint:errcheck

	d, err := diskfs.OpenBackend(bk, diskfs.WithOpenMode(diskfs.ReadWrite))
	if err != nil {
		return fmt.Errorf("failed to open disk backend for image %q: %w", image, err)
	}

	defer d.Close() //nolint:errcheck

	return f(d)
}

// populate copies the contents of sourceDir into the filesystem root.
func populate(dfs filesystem.FileSystem, sourceDir string) error {
	return filepath.Walk(sourceDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error walking through source directory %q: %w", sourceDir, walkErr)
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %q: %w", path, err)
		}

		fsPath := filepath.ToSlash(filepath.Join("/", relPath))

		if info.IsDir() {
			if relPath == "." {
				return nil
			}

			if err := dfs.Mkdir(fsPath); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", relPath, err)
			}

			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		return createFile(path, fsPath, dfs)
	})
}

func createFile(srcPath, destPath string, dfs filesystem.FileSystem) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file %q: %w", srcPath, err)
	}

	defer src.Close() //nolint:errcheck

	dest, err := dfs.OpenFile(destPath, os.O_CREATE|os.O_RDWR)
	if err != nil {
		return fmt.Errorf("failed to open destination file %q: %w", destPath, err)
	}

	defer dest.Close() //nolint:errcheck

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("failed to write to destination file %q: %w", destPath, err)
	}

	return nil
}
