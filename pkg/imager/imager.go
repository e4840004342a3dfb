// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package imager assembles bootable disk images.
package imager

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/siderolabs/bootimage/pkg/bootconfig"
	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/logging"
	"github.com/siderolabs/bootimage/pkg/makefs"
	"github.com/siderolabs/bootimage/pkg/partition"
	"github.com/siderolabs/bootimage/pkg/reporter"
	"github.com/siderolabs/bootimage/pkg/tool"
)

// Toolset is the set of external collaborators used to build an image.
type Toolset struct {
	Runner      tool.Runner
	Partitioner partition.Writer
	FAT         makefs.FATBuilder
	ISO         makefs.ISOBuilder
}

// NewToolset selects the collaborators named in the profile.
//
// The filesystem builders report their progress via printf.
func NewToolset(prof *profile.Profile, runner tool.Runner, goos string, printf func(string, ...any)) (Toolset, error) {
	setters := []makefs.Option{
		makefs.WithLabel(prof.Label),
		makefs.WithReproducible(true),
	}

	if printf != nil {
		setters = append(setters, makefs.WithPrintf(printf))
	}

	partitioner, err := partition.ByName(prof.Tools.Partitioner, goos, runner)
	if err != nil {
		return Toolset{}, err
	}

	fat, err := makefs.NewFATBuilder(prof.Tools.FATBuilder, runner, setters...)
	if err != nil {
		return Toolset{}, err
	}

	iso, err := makefs.NewISOBuilder(prof.Tools.ISOBuilder, runner, setters...)
	if err != nil {
		return Toolset{}, err
	}

	return Toolset{
		Runner:      runner,
		Partitioner: partitioner,
		FAT:         fat,
		ISO:         iso,
	}, nil
}

// Option configures the Imager.
type Option func(*Imager)

// WithToolset overrides the collaborators selected from the profile.
func WithToolset(tools Toolset) Option {
	return func(i *Imager) {
		i.tools = &tools
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Imager) {
		i.logger = logger
	}
}

// WithPreflight enables or disables the check for installed tools.
func WithPreflight(enabled bool) Option {
	return func(i *Imager) {
		i.preflight = enabled
	}
}

// Imager builds a disk image described by the profile.
type Imager struct {
	prof profile.Profile

	tools     *Toolset
	logger    *zap.Logger
	preflight bool
}

// New creates a new Imager.
func New(prof profile.Profile, opts ...Option) (*Imager, error) {
	prof.FillDefaults()

	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	i := &Imager{
		prof:      prof,
		logger:    zap.NewNop(),
		preflight: true,
	}

	for _, opt := range opts {
		opt(i)
	}

	i.logger = i.logger.With(logging.Component("imager"))

	if i.tools == nil {
		tools, err := NewToolset(&i.prof, tool.NewExec(i.logger), runtime.GOOS, i.logger.Sugar().Debugf)
		if err != nil {
			return nil, err
		}

		i.tools = &tools
	}

	return i, nil
}

// Profile returns the finalized profile.
func (i *Imager) Profile() profile.Profile {
	return i.prof
}

// Build assembles the image.
//
// On success the caller owns the image and must Close it.
// On failure the backing file is removed before Build returns.
//
//nolint:gocyclo,cyclop
func (i *Imager) Build(ctx context.Context, report *reporter.Reporter) (img *DiskImage, err error) {
	if report == nil {
		report = reporter.New(reporter.WithWriter(io.Discard))
	}

	if i.preflight {
		if err = tool.Require(i.requiredTools()...); err != nil {
			return nil, err
		}
	}

	if !i.prof.IsCD() {
		if err = makefs.CheckSupported(i.tools.FAT, i.prof.Filesystem); err != nil {
			return nil, err
		}
	}

	if err = i.writeManifest(report); err != nil {
		return nil, err
	}

	path, err := i.allocate()
	if err != nil {
		return nil, err
	}

	img = newDiskImage(path, &i.prof)

	defer func() {
		if err == nil {
			return
		}

		if closeErr := img.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}

		img = nil
	}()

	i.logger.Debug("allocated disk image", zap.String("path", path))

	if i.prof.IsCD() {
		err = i.buildISO(ctx, img, report)
	} else {
		err = i.buildRaw(ctx, img, report)
	}

	if err != nil {
		return img, err
	}

	if err = i.install(ctx, img, report); err != nil {
		return img, err
	}

	img.transition(StateReady)

	report.Report(reporter.Update{
		Message: fmt.Sprintf("%s %s image ready", i.prof.BootRecord, i.prof.Filesystem),
		Status:  reporter.StatusSucceeded,
	})

	return img, nil
}

func (i *Imager) allocate() (string, error) {
	if i.prof.Output.ImagePath != "" {
		f, err := os.OpenFile(i.prof.Output.ImagePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return "", fmt.Errorf("failed to allocate disk image: %w", err)
		}

		return f.Name(), f.Close()
	}

	f, err := os.CreateTemp("", "bootimage-*.img")
	if err != nil {
		return "", fmt.Errorf("failed to allocate disk image: %w", err)
	}

	return f.Name(), f.Close()
}

// writeManifest writes the boot manifest into the root directory if it's writable.
func (i *Imager) writeManifest(report *reporter.Reporter) error {
	text, ok := i.prof.Customization.ManifestText()
	if !ok {
		return nil
	}

	if err := unix.Access(i.prof.Root, unix.W_OK); err != nil {
		i.logger.Warn("root directory is not writable, skipping boot manifest", zap.String("root", i.prof.Root), zap.Error(err))

		report.Report(reporter.Update{
			Message: "root directory is not writable, skipping boot manifest",
			Status:  reporter.StatusSkip,
		})

		return nil
	}

	path := filepath.Join(i.prof.Root, bootconfig.ManifestFileName)

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write boot manifest: %w", err)
	}

	report.Report(reporter.Update{
		Message: fmt.Sprintf("boot manifest written to %s", path),
		Status:  reporter.StatusSucceeded,
	})

	return nil
}

// shouldInstall reports whether the installer runs against the finished image.
//
// GPT images never get boot code installed, CD images only when they are BIOS bootable.
func (i *Imager) shouldInstall() bool {
	if i.prof.Hybrid.InstallerPath == "" || i.prof.BootRecord == profile.BootRecordGPT {
		return false
	}

	return !i.prof.IsCD() || i.prof.Hybrid.ISOBootRecordPath != ""
}

func (i *Imager) install(ctx context.Context, img *DiskImage, report *reporter.Reporter) error {
	if !i.shouldInstall() {
		if i.prof.Hybrid.InstallerPath != "" {
			report.Report(reporter.Update{Message: "skipped boot code installation", Status: reporter.StatusSkip})
		}

		return nil
	}

	report.Report(reporter.Update{Message: "installing boot code...", Status: reporter.StatusRunning})

	if _, err := i.tools.Runner.Run(ctx, i.prof.Hybrid.InstallerPath, img.Path()); err != nil {
		return fmt.Errorf("failed to install boot code: %w", err)
	}

	img.transition(StateInstalled)

	report.Report(reporter.Update{Message: "boot code installed", Status: reporter.StatusSucceeded})

	return nil
}

func (i *Imager) requiredTools() []string {
	var tools []string

	if i.prof.IsCD() {
		tools = append(tools, i.tools.ISO.Tools()...)
	} else {
		tools = append(tools, i.tools.Partitioner.Tools(i.prof.BootRecord)...)
		tools = append(tools, i.tools.FAT.Tools()...)
	}

	if i.prof.UEFI != nil {
		tools = append(tools, i.tools.FAT.Tools()...)
	}

	if i.shouldInstall() {
		tools = append(tools, i.prof.Hybrid.InstallerPath)
	}

	return tools
}

func progressPrintf(report *reporter.Reporter, update reporter.Update) func(format string, args ...any) {
	return func(format string, args ...any) {
		report.Report(reporter.Update{
			Message: fmt.Sprintf("%s %s", update.Message, fmt.Sprintf(format, args...)),
			Status:  update.Status,
		})
	}
}
