// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package post_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/siderolabs/bootimage/pkg/imager/post"
	"github.com/siderolabs/bootimage/pkg/imager/profile"
)

func TestDestinationPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "disk.img", post.DestinationPath("disk.img", profile.OutFormatRaw))
	assert.Equal(t, "disk.img.xz", post.DestinationPath("disk.img", profile.OutFormatXZ))
	assert.Equal(t, "disk.img.gz", post.DestinationPath("disk.img.gz", profile.OutFormatGZ))
	assert.Equal(t, "disk.img.zst", post.DestinationPath("disk.img", profile.OutFormatZSTD))
}

func TestExport(t *testing.T) {
	t.Parallel()

	contents := bytes.Repeat([]byte("bootimage"), 64*1024)

	src := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(src, contents, 0o644))

	for _, test := range []struct {
		format     profile.OutFormat
		decompress func(io.Reader) (io.Reader, error)
	}{
		{
			format:     profile.OutFormatRaw,
			decompress: func(r io.Reader) (io.Reader, error) { return r, nil },
		},
		{
			format: profile.OutFormatXZ,
			decompress: func(r io.Reader) (io.Reader, error) {
				return xz.NewReader(r)
			},
		},
		{
			format: profile.OutFormatGZ,
			decompress: func(r io.Reader) (io.Reader, error) {
				return gzip.NewReader(r)
			},
		},
		{
			format: profile.OutFormatZSTD,
			decompress: func(r io.Reader) (io.Reader, error) {
				return zstd.NewReader(r)
			},
		},
	} {
		t.Run(test.format.String(), func(t *testing.T) {
			t.Parallel()

			path, err := post.Export(t.Context(), src, filepath.Join(t.TempDir(), "out", "disk.img"), test.format)
			require.NoError(t, err)

			assert.Equal(t, post.DestinationPath(filepath.Join(filepath.Dir(path), "disk.img"), test.format), path)

			f, err := os.Open(path)
			require.NoError(t, err)

			t.Cleanup(func() { f.Close() }) //nolint:errcheck

			r, err := test.decompress(f)
			require.NoError(t, err)

			actual, err := io.ReadAll(r)
			require.NoError(t, err)

			assert.Equal(t, contents, actual)
		})
	}
}

func TestExportCanceled(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(src, []byte("bootimage"), 0o644))

	for _, format := range []profile.OutFormat{
		profile.OutFormatRaw,
		profile.OutFormatXZ,
		profile.OutFormatGZ,
		profile.OutFormatZSTD,
	} {
		t.Run(format.String(), func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(t.Context())
			cancel()

			dir := t.TempDir()
			dest := filepath.Join(dir, "disk.img")

			path, err := post.Export(ctx, src, dest, format)
			require.ErrorIs(t, err, context.Canceled)
			assert.Empty(t, path)

			assert.NoFileExists(t, post.DestinationPath(dest, format))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestExportUnknownFormat(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(src, nil, 0o644))

	dest := filepath.Join(t.TempDir(), "disk.img")

	_, err := post.Export(t.Context(), src, dest, profile.OutFormatUnknown)
	require.Error(t, err)

	assert.NoFileExists(t, dest)
}

func TestExportOntoSource(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(src, []byte("bootimage"), 0o644))

	_, err := post.Export(t.Context(), src, src, profile.OutFormatRaw)
	require.Error(t, err)

	contents, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, []byte("bootimage"), contents)
}
