// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package makefs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/makefs"
)

type invocation struct {
	name string
	args []string
}

type recordingRunner struct {
	invocations []invocation
	onRun       func(name string, args []string)
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	r.invocations = append(r.invocations, invocation{name: name, args: slices.Clone(args)})

	if r.onRun != nil {
		r.onRun(name, args)
	}

	return "", nil
}

func (r *recordingRunner) RunWithInput(ctx context.Context, _ time.Duration, _ io.Reader, name string, args ...string) (string, error) {
	return r.Run(ctx, name, args...)
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for name, contents := range files {
		path := filepath.Join(root, name)

		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}

	return root
}

func TestVolumeID(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		label    string
		expected string
	}{
		{label: "bootimage", expected: "BOOTIMAGE"},
		{label: "boot-image v1.0", expected: "BOOT_IMAGE_V1_0"},
		{label: "äöü!", expected: ""},
		{label: "a-very-long-volume-label-which-does-not-fit", expected: "A_VERY_LONG_VOLUME_LABEL_WHICH_D"},
	} {
		t.Run(test.label, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.expected, makefs.VolumeID(test.label))
		})
	}
}

func TestMToolsFormat(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	builder := makefs.NewMTools(runner, makefs.WithLabel("BOOT"))

	require.NoError(t, builder.Format(t.Context(), "fs.img", true))
	require.NoError(t, builder.Format(t.Context(), "esp.img", false))

	assert.Equal(t, []invocation{
		{name: "mformat", args: []string{"-i", "fs.img", "-F", "-v", "BOOT", "::"}},
		{name: "mformat", args: []string{"-i", "esp.img", "-v", "BOOT", "::"}},
	}, runner.invocations)

	assert.True(t, builder.Supports(profile.FilesystemFAT12))
	assert.False(t, builder.Supports(profile.FilesystemISO9660))
}

func TestMToolsMergeOrder(t *testing.T) {
	t.Parallel()

	primary := writeTree(t, map[string]string{"kernel": "k", "boot/hyper.cfg": "cfg"})
	esp := writeTree(t, map[string]string{"EFI/BOOT/BOOTX64.EFI": "efi"})

	runner := &recordingRunner{}

	require.NoError(t, makefs.NewMTools(runner).Merge(t.Context(), "fs.img", primary, esp))

	mcopy := func(src string) invocation {
		return invocation{name: "mcopy", args: []string{"-Q", "-D", "o", "-i", "fs.img", "-s", src, "::"}}
	}

	assert.Equal(t, []invocation{
		mcopy(filepath.Join(primary, "boot")),
		mcopy(filepath.Join(primary, "kernel")),
		mcopy(filepath.Join(esp, "EFI")),
	}, runner.invocations)
}

func TestXorrisoBuild(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"kernel": "k"})
	extra := writeTree(t, map[string]string{"boot.bin": "bios", "esp.img": "esp"})

	var (
		tree        string
		stagedFiles []string
	)

	runner := &recordingRunner{
		onRun: func(_ string, args []string) {
			tree = args[len(args)-3]

			entries, err := os.ReadDir(tree)
			require.NoError(t, err)

			for _, entry := range entries {
				stagedFiles = append(stagedFiles, entry.Name())
			}
		},
	}

	require.NoError(t, makefs.NewXorriso(runner).Build(t.Context(), makefs.ISOOptions{
		OutPath:        "out.iso",
		SourceDir:      root,
		BootRecordPath: filepath.Join(extra, "boot.bin"),
		EFIImagePath:   filepath.Join(extra, "esp.img"),
		VolumeID:       "bootimage",
	}))

	require.Len(t, runner.invocations, 1)
	assert.Equal(t, invocation{
		name: "xorriso",
		args: []string{
			"-as", "mkisofs",
			"-b", "boot_record", "-no-emul-boot", "-boot-load-size", "4", "-boot-info-table",
			"--efi-boot", "efi_esp", "-efi-boot-part", "--efi-boot-image",
			"-V", "BOOTIMAGE",
			"--protective-msdos-label", tree, "-o", "out.iso",
		},
	}, runner.invocations[0])

	assert.Equal(t, []string{"boot_record", "efi_esp", "kernel"}, stagedFiles)

	// staging area is removed, the source tree is left intact
	assert.NoDirExists(t, tree)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestXorrisoPlain(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"kernel": "k"})
	runner := &recordingRunner{}

	require.NoError(t, makefs.NewXorriso(runner).Build(t.Context(), makefs.ISOOptions{
		OutPath:   "out.iso",
		SourceDir: root,
	}))

	require.Len(t, runner.invocations, 1)
	assert.NotContains(t, runner.invocations[0].args, "-b")
	assert.NotContains(t, runner.invocations[0].args, "--efi-boot")
}

func TestBuilderByName(t *testing.T) {
	t.Parallel()

	fat, err := makefs.NewFATBuilder(makefs.BuilderNative, nil)
	require.NoError(t, err)
	assert.Empty(t, fat.Tools())
	assert.True(t, fat.Supports(profile.FilesystemFAT32))
	assert.False(t, fat.Supports(profile.FilesystemFAT16))

	fat, err = makefs.NewFATBuilder(makefs.BuilderMTools, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"mformat", "mcopy"}, fat.Tools())

	iso, err := makefs.NewISOBuilder(makefs.BuilderXorriso, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"xorriso"}, iso.Tools())

	_, err = makefs.NewFATBuilder("mkfs.vfat", nil)
	assert.Error(t, err)

	_, err = makefs.NewISOBuilder("genisoimage", nil)
	assert.Error(t, err)
}

func TestCheckSupported(t *testing.T) {
	t.Parallel()

	mtools := makefs.NewMTools(&recordingRunner{})
	native := makefs.NewNativeFAT()

	for _, fs := range []profile.Filesystem{profile.FilesystemFAT12, profile.FilesystemFAT16, profile.FilesystemFAT32} {
		assert.NoError(t, makefs.CheckSupported(mtools, fs))
	}

	assert.NoError(t, makefs.CheckSupported(native, profile.FilesystemFAT32))
	assert.ErrorIs(t, makefs.CheckSupported(native, profile.FilesystemFAT12), profile.ErrUnsupportedFilesystem)
	assert.ErrorIs(t, makefs.CheckSupported(mtools, profile.FilesystemISO9660), profile.ErrUnsupportedFilesystem)
}
