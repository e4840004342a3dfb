// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package makefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/imager/utils"
	"github.com/siderolabs/bootimage/pkg/tool"
)

// MTools builds FAT filesystems with mformat and mcopy.
type MTools struct {
	runner tool.Runner
	opts   Options
}

// NewMTools creates a new mtools FAT builder.
func NewMTools(runner tool.Runner, setters ...Option) *MTools {
	return &MTools{
		runner: runner,
		opts:   NewDefaultOptions(setters...),
	}
}

// Name implements FATBuilder.
func (m *MTools) Name() string { return BuilderMTools }

// Tools implements FATBuilder.
func (m *MTools) Tools() []string { return []string{"mformat", "mcopy"} }

// Supports implements FATBuilder.
func (m *MTools) Supports(fs profile.Filesystem) bool { return fs.IsFAT() }

// Format implements FATBuilder.
func (m *MTools) Format(ctx context.Context, image string, forceFAT32 bool) error {
	args := []string{"-i", image}

	if forceFAT32 {
		args = append(args, "-F")
	}

	if m.opts.Label != "" {
		args = append(args, "-v", m.opts.Label)
	}

	if m.opts.Reproducible {
		epoch, ok, err := utils.SourceDateEpoch()
		if err != nil {
			return err
		}

		if ok {
			args = append(args, "-N", fmt.Sprintf("%08x", uint32(epoch)))
		}
	}

	args = append(args, "::")

	m.opts.Printf("formatting FAT filesystem in %s", image)

	_, err := m.runner.Run(ctx, "mformat", args...)

	return err
}

// Merge implements FATBuilder.
func (m *MTools) Merge(ctx context.Context, image string, sources ...string) error {
	for _, source := range sources {
		entries, err := os.ReadDir(source)
		if err != nil {
			return err
		}

		m.opts.Printf("copying %s into %s", source, image)

		for _, entry := range entries {
			if _, err = m.runner.Run(ctx, "mcopy", "-Q", "-D", "o", "-i", image, "-s", filepath.Join(source, entry.Name()), "::"); err != nil {
				return err
			}
		}
	}

	return nil
}
