// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package makefs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/siderolabs/bootimage/pkg/imager/utils"
	"github.com/siderolabs/bootimage/pkg/tool"
)

// Xorriso builds ISO9660 images with xorriso in mkisofs emulation mode.
type Xorriso struct {
	runner tool.Runner
	opts   Options
}

// NewXorriso creates a new xorriso ISO builder.
func NewXorriso(runner tool.Runner, setters ...Option) *Xorriso {
	return &Xorriso{
		runner: runner,
		opts:   NewDefaultOptions(setters...),
	}
}

// Name implements ISOBuilder.
func (x *Xorriso) Name() string { return BuilderXorriso }

// Tools implements ISOBuilder.
func (x *Xorriso) Tools() []string { return []string{"xorriso"} }

// Build implements ISOBuilder.
func (x *Xorriso) Build(ctx context.Context, options ISOOptions) error {
	tree, cleanup, err := stage(options, x.opts.Printf)
	if err != nil {
		return err
	}

	defer cleanup()

	args, err := x.arguments(options, tree)
	if err != nil {
		return err
	}

	x.opts.Printf("creating ISO %s", options.OutPath)

	if _, err = x.runner.Run(ctx, "xorriso", args...); err != nil {
		return fmt.Errorf("failed to create ISO: %w", err)
	}

	return nil
}

func (x *Xorriso) arguments(options ISOOptions, tree string) ([]string, error) {
	args := []string{"-as", "mkisofs"}

	if options.BootRecordPath != "" {
		args = append(args,
			"-b", BootRecordName,
			"-no-emul-boot",
			"-boot-load-size", strconv.Itoa(BootLoadSize),
			"-boot-info-table",
		)
	}

	if options.EFIImagePath != "" {
		args = append(args,
			"--efi-boot", EFIImageName,
			"-efi-boot-part", "--efi-boot-image",
		)
	}

	if volumeID := VolumeID(options.VolumeID); volumeID != "" {
		args = append(args, "-V", volumeID)
	}

	if x.opts.Reproducible {
		epoch, ok, err := utils.SourceDateEpoch()
		if err != nil {
			return nil, err
		}

		if ok {
			args = append(args,
				"--modification-date="+time.Unix(epoch, 0).UTC().Format("2006010215040500"),
			)
		}
	}

	args = append(args, "--protective-msdos-label", tree, "-o", options.OutPath)

	return args, nil
}
