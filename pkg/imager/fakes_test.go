// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package imager_test

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/makefs"
)

// fsMarker is written by the fake FAT builder at the start of the filesystem image.
var fsMarker = []byte("FAKE-FAT-FILESYSTEM")

type runCall struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []runCall
	err   error
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, runCall{name: name, args: slices.Clone(args)})

	return "", r.err
}

func (r *fakeRunner) RunWithInput(ctx context.Context, _ time.Duration, _ io.Reader, name string, args ...string) (string, error) {
	return r.Run(ctx, name, args...)
}

type partitionCall struct {
	table    profile.BootRecord
	fs       profile.Filesystem
	startMiB uint64
	lenMiB   uint64
	fileSize int64
}

type fakePartitioner struct {
	calls []partitionCall
	err   error
}

func (p *fakePartitioner) Name() string                      { return "fake" }
func (p *fakePartitioner) Tools(profile.BootRecord) []string { return nil }

func (p *fakePartitioner) Write(_ context.Context, path string, table profile.BootRecord, fs profile.Filesystem, startMiB, lengthMiB uint64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	p.calls = append(p.calls, partitionCall{table: table, fs: fs, startMiB: startMiB, lenMiB: lengthMiB, fileSize: info.Size()})

	return p.err
}

type formatCall struct {
	size       int64
	forceFAT32 bool
}

type mergeCall struct {
	sources []string
	// files found in each source at the time of the call
	files [][]string
}

type fakeFAT struct {
	tools   []string
	formats []formatCall
	merges  []mergeCall
}

func (f *fakeFAT) Name() string                     { return "fake" }
func (f *fakeFAT) Tools() []string                  { return f.tools }
func (f *fakeFAT) Supports(profile.Filesystem) bool { return true }

func (f *fakeFAT) Format(_ context.Context, image string, forceFAT32 bool) error {
	info, err := os.Stat(image)
	if err != nil {
		return err
	}

	f.formats = append(f.formats, formatCall{size: info.Size(), forceFAT32: forceFAT32})

	out, err := os.OpenFile(image, os.O_WRONLY, 0)
	if err != nil {
		return err
	}

	defer out.Close() //nolint:errcheck

	_, err = out.WriteAt(fsMarker, 0)

	return err
}

func (f *fakeFAT) Merge(_ context.Context, _ string, sources ...string) error {
	call := mergeCall{sources: slices.Clone(sources)}

	for _, source := range sources {
		files, err := listFiles(source)
		if err != nil {
			return err
		}

		call.files = append(call.files, files)
	}

	f.merges = append(f.merges, call)

	return nil
}

type fakeISO struct {
	tools []string
	calls []makefs.ISOOptions
	// efiImageSize is the size of the EFI image at the time of the call
	efiImageSize int64
}

func (i *fakeISO) Name() string    { return "fake" }
func (i *fakeISO) Tools() []string { return i.tools }

func (i *fakeISO) Build(_ context.Context, options makefs.ISOOptions) error {
	i.calls = append(i.calls, options)

	if options.EFIImagePath != "" {
		info, err := os.Stat(options.EFIImagePath)
		if err != nil {
			return err
		}

		i.efiImageSize = info.Size()
	}

	return os.WriteFile(options.OutPath, []byte("ISO9660"), 0o644)
}

func listFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, filepath.ToSlash(rel))

		return nil
	})

	return files, err
}
