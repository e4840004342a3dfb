// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package utils_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/bootimage/pkg/imager/utils"
)

const mib = 1024 * 1024

func TestResizeMiB(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "disk.raw")

	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	require.NoError(t, utils.ResizeMiB(path, 3))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Len(t, contents, 3*mib)
	assert.Equal(t, make([]byte, 5), contents[:5])
}

func TestEmbedAt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	image := filepath.Join(dir, "disk.raw")
	payload := filepath.Join(dir, "payload.img")

	require.NoError(t, os.WriteFile(image, bytes.Repeat([]byte{0xAA}, 4*mib), 0o644))
	require.NoError(t, os.WriteFile(payload, bytes.Repeat([]byte{0x55}, mib), 0o644))

	require.NoError(t, utils.EmbedAt(image, 1, payload))

	contents, err := os.ReadFile(image)
	require.NoError(t, err)

	require.Len(t, contents, 4*mib)
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, mib), contents[:mib])
	assert.Equal(t, bytes.Repeat([]byte{0x55}, mib), contents[mib:2*mib])
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, 2*mib), contents[2*mib:])
}

func TestCopyFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dest := filepath.Join(dir, "a", "b", "dest")

	require.NoError(t, os.WriteFile(src, []byte("contents"), 0o644))

	var messages []string

	require.NoError(t, utils.CopyFiles(func(format string, _ ...any) {
		messages = append(messages, format)
	}, utils.SourceDestination(src, dest)))

	contents, err := os.ReadFile(dest)
	require.NoError(t, err)

	assert.Equal(t, "contents", string(contents))
	assert.Len(t, messages, 1)

	assert.Error(t, utils.CopyFiles(utils.Discard, utils.SourceDestination(filepath.Join(dir, "missing"), dest)))
}

func TestDirSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 10), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 32), 0o644))

	size, err := utils.DirSize(dir)
	require.NoError(t, err)
	assert.EqualValues(t, 42, size)
}

func TestSourceDateEpoch(t *testing.T) {
	t.Setenv("SOURCE_DATE_EPOCH", "1732109929")

	epoch, ok, err := utils.SourceDateEpoch()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 1732109929, epoch)

	t.Setenv("SOURCE_DATE_EPOCH", "")

	_, ok, err = utils.SourceDateEpoch()
	require.NoError(t, err)
	assert.False(t, ok)

	t.Setenv("SOURCE_DATE_EPOCH", "yesterday")

	_, _, err = utils.SourceDateEpoch()
	assert.Error(t, err)
}
