// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package imager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/siderolabs/bootimage/pkg/imager/esp"
	"github.com/siderolabs/bootimage/pkg/imager/layout"
	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/imager/utils"
	"github.com/siderolabs/bootimage/pkg/makefs"
	"github.com/siderolabs/bootimage/pkg/reporter"
)

// scratch is a temporary directory which lives for one build step.
type scratch struct {
	dir string
}

func newScratch(pattern string) (*scratch, error) {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return nil, err
	}

	return &scratch{dir: dir}, nil
}

func (s *scratch) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *scratch) release() error {
	return os.RemoveAll(s.dir)
}

// espTree lays out the UEFI binary, it returns an empty path if UEFI is not enabled.
func (i *Imager) espTree(tmp *scratch, report *reporter.Reporter) (string, error) {
	binary := i.prof.UEFIBinaryPath()
	if binary == "" {
		return "", nil
	}

	printf := progressPrintf(report, reporter.Update{Message: "preparing UEFI boot files...", Status: reporter.StatusRunning})

	tree := tmp.path("esp")

	bootFile, err := esp.Tree(printf, tree, binary)
	if err != nil {
		return "", err
	}

	i.logger.Debug("assembled ESP tree", zap.String("boot_file", bootFile))

	return tree, nil
}

//nolint:gocyclo
func (i *Imager) buildISO(ctx context.Context, img *DiskImage, report *reporter.Reporter) (err error) {
	if i.prof.SizeMiB != nil {
		i.logger.Warn("filesystem size is ignored for ISO9660 images", zap.Uint64("size_mib", *i.prof.SizeMiB))
	}

	tmp, err := newScratch("bootimage-uefi")
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := tmp.release(); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()

	tree, err := i.espTree(tmp, report)
	if err != nil {
		return err
	}

	var efiImage string

	if tree != "" {
		report.Report(reporter.Update{Message: "building UEFI boot image...", Status: reporter.StatusRunning})

		efiImage = tmp.path("efi_esp.img")

		if err = esp.Image(ctx, i.tools.FAT, tree, efiImage); err != nil {
			return err
		}
	}

	report.Report(reporter.Update{Message: "building ISO...", Status: reporter.StatusRunning})

	if err = i.tools.ISO.Build(ctx, makefs.ISOOptions{
		OutPath:        img.Path(),
		SourceDir:      i.prof.Root,
		BootRecordPath: i.prof.Hybrid.ISOBootRecordPath,
		EFIImagePath:   efiImage,
		VolumeID:       i.prof.Label,
	}); err != nil {
		return err
	}

	img.transition(StateFilesystemBuilt)

	report.Report(reporter.Update{Message: "ISO ready", Status: reporter.StatusSucceeded})

	return nil
}

//nolint:gocyclo,cyclop
func (i *Imager) buildRaw(ctx context.Context, img *DiskImage, report *reporter.Reporter) (err error) {
	payload, err := layout.PayloadSizeMiB(i.prof.Filesystem, i.prof.SizeMiB)
	if err != nil {
		return err
	}

	total := layout.ImageSizeMiB(layout.AlignMiB, payload, i.prof.BootRecord)

	if err = utils.ResizeMiB(img.Path(), total); err != nil {
		return err
	}

	img.transition(StateSized)

	report.Report(reporter.Update{
		Message: fmt.Sprintf("allocated %s disk image", humanize.IBytes(uint64(layout.Bytes(total)))),
		Status:  reporter.StatusSucceeded,
	})

	report.Report(reporter.Update{Message: "partitioning image...", Status: reporter.StatusRunning})

	if err = i.tools.Partitioner.Write(ctx, img.Path(), i.prof.BootRecord, i.prof.Filesystem, layout.AlignMiB, payload); err != nil {
		return fmt.Errorf("failed to partition disk image: %w", err)
	}

	img.transition(StatePartitioned)

	tmp, err := newScratch("bootimage-fs")
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := tmp.release(); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()

	tree, err := i.espTree(tmp, report)
	if err != nil {
		return err
	}

	sources := []string{i.prof.Root}

	if tree != "" {
		sources = append(sources, tree)
	}

	report.Report(reporter.Update{Message: fmt.Sprintf("building %s filesystem...", i.prof.Filesystem), Status: reporter.StatusRunning})

	fsImage := tmp.path("fs.img")

	if err = utils.ResizeMiB(fsImage, payload); err != nil {
		return err
	}

	if err = i.tools.FAT.Format(ctx, fsImage, i.prof.Filesystem == profile.FilesystemFAT32); err != nil {
		return fmt.Errorf("failed to format filesystem: %w", err)
	}

	if err = i.tools.FAT.Merge(ctx, fsImage, sources...); err != nil {
		return fmt.Errorf("failed to fill filesystem: %w", err)
	}

	img.transition(StateFilesystemBuilt)

	if err = utils.EmbedAt(img.Path(), layout.AlignMiB, fsImage); err != nil {
		return err
	}

	img.transition(StateEmbedded)

	report.Report(reporter.Update{Message: fmt.Sprintf("%s filesystem embedded", i.prof.Filesystem), Status: reporter.StatusSucceeded})

	return nil
}
