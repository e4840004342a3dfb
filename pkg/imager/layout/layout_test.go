// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package layout_test

import (
	"testing"

	"github.com/siderolabs/go-pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/bootimage/pkg/imager/layout"
	"github.com/siderolabs/bootimage/pkg/imager/profile"
)

func TestDefaultImageSize(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		fs profile.Filesystem

		expectedMBR uint64
		expectedGPT uint64
	}{
		{fs: profile.FilesystemFAT12, expectedMBR: 4, expectedGPT: 5},
		{fs: profile.FilesystemFAT16, expectedMBR: 33, expectedGPT: 34},
		{fs: profile.FilesystemFAT32, expectedMBR: 65, expectedGPT: 66},
	} {
		t.Run(test.fs.String(), func(t *testing.T) {
			t.Parallel()

			payload, err := layout.PayloadSizeMiB(test.fs, nil)
			require.NoError(t, err)

			assert.Equal(t, test.expectedMBR, layout.ImageSizeMiB(layout.AlignMiB, payload, profile.BootRecordMBR))
			assert.Equal(t, test.expectedGPT, layout.ImageSizeMiB(layout.AlignMiB, payload, profile.BootRecordGPT))
		})
	}
}

func TestExplicitSize(t *testing.T) {
	t.Parallel()

	payload, err := layout.PayloadSizeMiB(profile.FilesystemFAT16, pointer.To[uint64](10))
	require.NoError(t, err)

	assert.EqualValues(t, 10, payload)
	assert.EqualValues(t, 11, layout.ImageSizeMiB(layout.AlignMiB, payload, profile.BootRecordMBR))
	assert.EqualValues(t, 11*1024*1024, layout.Bytes(11))
}

func TestUnsupportedFilesystem(t *testing.T) {
	t.Parallel()

	for _, fs := range []profile.Filesystem{profile.FilesystemISO9660, profile.FilesystemUnknown, profile.Filesystem(42)} {
		_, err := layout.DefaultSizeMiB(fs)
		assert.ErrorIs(t, err, profile.ErrUnsupportedFilesystem)
	}
}
