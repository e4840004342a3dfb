// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siderolabs/bootimage/pkg/cli"
	"github.com/siderolabs/bootimage/pkg/efi"
	"github.com/siderolabs/bootimage/pkg/imager"
	"github.com/siderolabs/bootimage/pkg/imager/post"
	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/reporter"
	"github.com/siderolabs/bootimage/pkg/tool"
	"github.com/siderolabs/bootimage/pkg/toolchain"
)

// DefaultOutputPath is the export path used when neither the profile nor the flags set one.
const DefaultOutputPath = "_out/bootimage.img"

var buildCmdFlags struct {
	root          string
	bootRecord    profile.BootRecord
	filesystem    profile.Filesystem
	size          string
	label         string
	manifestFile  string
	modules       moduleFlags
	uefiBinary    string
	isoBootRecord string
	installer     string
	output        string
	outputFormat  profile.OutFormat
	partitioner   string
	fatBuilder    string
	isoBuilder    string
	projectRoot   string
	dumpProfile   bool
}

var buildCmd = &cobra.Command{
	Use:   "build [<profile.yaml>|<profile.toml>|-]",
	Short: "Build a bootable image from a directory tree.",
	Long: `Build a bootable image from a directory tree.

The profile is read from a YAML or TOML file, or as YAML from stdin.
Flags override the profile values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.WithContext(context.Background(), func(ctx context.Context) error {
			prof, err := loadProfile(cmd, args)
			if err != nil {
				return err
			}

			if buildCmdFlags.dumpProfile {
				prof.FillDefaults()

				return prof.Dump(cmd.OutOrStdout())
			}

			return build(ctx, prof, reporter.New(reporter.WithWriter(cmd.ErrOrStderr())))
		})
	},
}

//nolint:gocyclo,cyclop
func loadProfile(cmd *cobra.Command, args []string) (profile.Profile, error) {
	var prof profile.Profile

	if len(args) == 1 {
		var err error

		if args[0] == "-" {
			prof, err = profile.Load(cmd.InOrStdin())
		} else {
			prof, err = profile.LoadFile(args[0])
		}

		if err != nil {
			return prof, err
		}
	}

	flags := cmd.Flags()

	if flags.Changed("root") {
		prof.Root = buildCmdFlags.root
	}

	if flags.Changed("boot-record") {
		prof.BootRecord = buildCmdFlags.bootRecord
	}

	if flags.Changed("filesystem") {
		prof.Filesystem = buildCmdFlags.filesystem
	}

	if flags.Changed("size") {
		sizeMiB, err := parseSizeMiB(buildCmdFlags.size)
		if err != nil {
			return prof, err
		}

		prof.SizeMiB = &sizeMiB
	}

	if flags.Changed("label") {
		prof.Label = buildCmdFlags.label
	}

	if flags.Changed("manifest-file") {
		contents, err := os.ReadFile(buildCmdFlags.manifestFile)
		if err != nil {
			return prof, fmt.Errorf("error reading manifest: %w", err)
		}

		prof.Customization.Manifest = string(contents)
	}

	prof.Customization.Modules = append(prof.Customization.Modules, buildCmdFlags.modules.modules...)

	if flags.Changed("uefi-binary") {
		prof.UEFI = &profile.UEFIOptions{BinaryPath: buildCmdFlags.uefiBinary}
	}

	if flags.Changed("iso-boot-record") {
		prof.Hybrid.ISOBootRecordPath = buildCmdFlags.isoBootRecord
	}

	if flags.Changed("installer") {
		prof.Hybrid.InstallerPath = buildCmdFlags.installer
	}

	if flags.Changed("output") {
		prof.Output.Path = buildCmdFlags.output
	}

	if flags.Changed("output-format") {
		prof.Output.Format = buildCmdFlags.outputFormat
	}

	if flags.Changed("partitioner") {
		prof.Tools.Partitioner = buildCmdFlags.partitioner
	}

	if flags.Changed("fat-builder") {
		prof.Tools.FATBuilder = buildCmdFlags.fatBuilder
	}

	if flags.Changed("iso-builder") {
		prof.Tools.ISOBuilder = buildCmdFlags.isoBuilder
	}

	if flags.Changed("project-root") {
		prof.ProjectRoot = buildCmdFlags.projectRoot
	}

	if prof.Output.Path == "" {
		prof.Output.Path = DefaultOutputPath
	}

	return prof, nil
}

// parseSizeMiB parses a human readable size which must be a whole number of MiB.
//
// Plain numbers are MiB.
func parseSizeMiB(s string) (uint64, error) {
	size, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("error parsing filesystem size: %w", err)
	}

	if isPlainNumber(s) {
		size *= humanize.MiByte
	}

	if size == 0 || size%humanize.MiByte != 0 {
		return 0, fmt.Errorf("filesystem size %s is not a positive whole number of MiB", humanize.IBytes(size))
	}

	return size / humanize.MiByte, nil
}

func isPlainNumber(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

type inputPath struct {
	name string
	path *string
	mode uint32
}

// resolvePaths looks up the input files as given, then relative to the project root.
func resolvePaths(prof *profile.Profile, locator *toolchain.Locator) error {
	inputs := []inputPath{
		{name: "root directory", path: &prof.Root, mode: toolchain.Readable},
		{name: "ISO boot record", path: &prof.Hybrid.ISOBootRecordPath, mode: toolchain.Readable},
		{name: "installer", path: &prof.Hybrid.InstallerPath, mode: toolchain.Executable},
	}

	if prof.UEFI != nil {
		inputs = append(inputs, inputPath{name: "UEFI binary", path: &prof.UEFI.BinaryPath, mode: toolchain.Readable})
	}

	for _, input := range inputs {
		if *input.path == "" {
			continue
		}

		found, ok := locator.Resolve(*input.path, input.mode)
		if !ok {
			return fmt.Errorf("%s %q not found", input.name, *input.path)
		}

		*input.path = found
	}

	return nil
}

func build(ctx context.Context, prof profile.Profile, report *reporter.Reporter) (err error) {
	defer func() {
		if err != nil {
			report.Report(reporter.Update{
				Message: err.Error(),
				Status:  reporter.StatusError,
			})
		}
	}()

	locator := toolchain.NewLocator(prof.ProjectRoot, tool.NewExec(logger), logger)

	if err = resolvePaths(&prof, locator); err != nil {
		return err
	}

	imgr, err := imager.New(prof, imager.WithLogger(logger))
	if err != nil {
		return err
	}

	img, err := imgr.Build(ctx, report)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := img.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr).ErrorOrNil()
		}
	}()

	finalized := imgr.Profile()

	report.Report(reporter.Update{Message: "exporting image...", Status: reporter.StatusRunning})

	path, err := post.Export(ctx, img.Path(), finalized.Output.Path, finalized.Output.Format)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	logger.Debug("image exported", zap.String("path", path), zap.Int64("size", info.Size()))

	report.Report(reporter.Update{
		Message: fmt.Sprintf("image written to %s (%s)", path, humanize.IBytes(uint64(info.Size()))),
		Status:  reporter.StatusSucceeded,
	})

	return nil
}

func init() {
	flags := buildCmd.Flags()

	flags.StringVar(&buildCmdFlags.root, "root", "", "The directory to copy into the image filesystem")
	flags.Var(&buildCmdFlags.bootRecord, "boot-record", fmt.Sprintf("The boot record type %v", profile.BootRecordStrings()[1:]))
	flags.Var(&buildCmdFlags.filesystem, "filesystem", fmt.Sprintf("The filesystem type %v", profile.FilesystemStrings()[1:]))
	flags.StringVar(&buildCmdFlags.size, "size", "", "The filesystem size, plain numbers are MiB (accepts human readable values, e.g. 64MiB)")
	flags.StringVar(&buildCmdFlags.label, "label", "", "The FAT volume label or the ISO volume ID")
	flags.StringVar(&buildCmdFlags.manifestFile, "manifest-file", "", "The boot manifest to write into the root directory")
	flags.Var(&buildCmdFlags.modules, "module", "A boot module to append to the manifest: name[:path][,file][,size=N], "+kernelModuleFlag+" loads the kernel as a module")
	flags.StringVar(&buildCmdFlags.uefiBinary, "uefi-binary", "", fmt.Sprintf("The UEFI application to install as the removable media boot file, renamed after its architecture %v", efi.ConventionalNames()))
	flags.StringVar(&buildCmdFlags.isoBootRecord, "iso-boot-record", "", "The El Torito boot record for CD images")
	flags.StringVar(&buildCmdFlags.installer, "installer", "", "The tool which installs boot code into the finished image")
	flags.StringVar(&buildCmdFlags.output, "output", DefaultOutputPath, "The output image path")
	flags.Var(&buildCmdFlags.outputFormat, "output-format", fmt.Sprintf("The output image format %v", profile.OutFormatStrings()[1:]))
	flags.StringVar(&buildCmdFlags.partitioner, "partitioner", profile.PartitionerAuto, "The partition table writer: auto, parted, darwin or native")
	flags.StringVar(&buildCmdFlags.fatBuilder, "fat-builder", profile.DefaultFATBuilder, "The FAT builder: mtools or native")
	flags.StringVar(&buildCmdFlags.isoBuilder, "iso-builder", profile.DefaultISOBuilder, "The ISO9660 builder: xorriso or native")
	flags.StringVar(&buildCmdFlags.projectRoot, "project-root", "", "The base directory for relative input paths")
	flags.BoolVar(&buildCmdFlags.dumpProfile, "dump-profile", false, "Print the finalized profile and exit")

	rootCmd.AddCommand(buildCmd)
}
