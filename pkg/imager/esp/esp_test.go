// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package esp_test

import (
	"context"
	"debug/pe"
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/bootimage/pkg/imager/esp"
	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/imager/utils"
)

func writeBinary(t *testing.T, name string, machine uint16) string {
	t.Helper()

	buf := make([]byte, 512)

	copy(buf, "MZ")
	binary.LittleEndian.PutUint32(buf[0x3c:], 0x40)
	copy(buf[0x40:], "PE\x00\x00")
	binary.LittleEndian.PutUint16(buf[0x44:], machine)

	path := filepath.Join(t.TempDir(), name)

	require.NoError(t, os.WriteFile(path, buf, 0o644))

	return path
}

func layoutOf(t *testing.T, root string) []string {
	t.Helper()

	var files []string

	require.NoError(t, filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}

			files = append(files, filepath.ToSlash(rel))
		}

		return nil
	}))

	return files
}

func TestTreeIdempotent(t *testing.T) {
	t.Parallel()

	binary := writeBinary(t, "hyper.efi", pe.IMAGE_FILE_MACHINE_ARM64)

	first, second := t.TempDir(), t.TempDir()

	_, err := esp.Tree(utils.Discard, first, binary)
	require.NoError(t, err)

	bootFile, err := esp.Tree(utils.Discard, second, binary)
	require.NoError(t, err)

	assert.Equal(t, []string{"EFI/BOOT/BOOTAA64.EFI"}, layoutOf(t, first))
	assert.Equal(t, layoutOf(t, first), layoutOf(t, second))
	assert.Equal(t, filepath.Join(second, "EFI", "BOOT", "BOOTAA64.EFI"), bootFile)
}

func TestBootFileName(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name    string
		machine uint16

		expected string
	}{
		{name: "loader.efi", machine: pe.IMAGE_FILE_MACHINE_AMD64, expected: "BOOTX64.EFI"},
		{name: "BOOTAA64.EFI", machine: pe.IMAGE_FILE_MACHINE_ARM64, expected: "BOOTAA64.EFI"},
		{name: "bootaa64.efi", machine: pe.IMAGE_FILE_MACHINE_ARM64, expected: "bootaa64.efi"},
		{name: "BOOTIA32.EFI", machine: pe.IMAGE_FILE_MACHINE_AMD64, expected: "BOOTX64.EFI"},
		{name: "BOOTX64.EFI", machine: pe.IMAGE_FILE_MACHINE_POWERPC, expected: "BOOTX64.EFI"},
		{name: "loader.efi", machine: pe.IMAGE_FILE_MACHINE_POWERPC, expected: "loader.efi"},
	} {
		t.Run(test.name+"/"+test.expected, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.expected, esp.BootFileName(writeBinary(t, test.name, test.machine)))
		})
	}

	for _, name := range []string{"loader.bin", "BOOTX64.EFI"} {
		notPE := filepath.Join(t.TempDir(), name)
		require.NoError(t, os.WriteFile(notPE, []byte("not a PE image"), 0o644))

		assert.Equal(t, name, esp.BootFileName(notPE))
	}
}

type recordingBuilder struct {
	calls []string
}

func (b *recordingBuilder) Name() string                     { return "recording" }
func (b *recordingBuilder) Tools() []string                  { return nil }
func (b *recordingBuilder) Supports(profile.Filesystem) bool { return true }

func (b *recordingBuilder) Format(_ context.Context, image string, forceFAT32 bool) error {
	info, err := os.Stat(image)
	if err != nil {
		return err
	}

	if forceFAT32 {
		b.calls = append(b.calls, "format32")
	} else {
		b.calls = append(b.calls, "format")
	}

	if info.Size() != 1024*1024 {
		b.calls = append(b.calls, "bad size")
	}

	return nil
}

func (b *recordingBuilder) Merge(_ context.Context, _ string, sources ...string) error {
	b.calls = append(b.calls, "merge")
	b.calls = append(b.calls, sources...)

	return nil
}

func TestImage(t *testing.T) {
	t.Parallel()

	builder := &recordingBuilder{}
	out := filepath.Join(t.TempDir(), "esp.img")

	require.NoError(t, esp.Image(t.Context(), builder, "/scratch/esp", out))

	assert.Equal(t, []string{"format", "merge", "/scratch/esp"}, builder.calls)
}
