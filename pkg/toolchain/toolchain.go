// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package toolchain locates host tools and firmware used around image builds.
//
// Discovery never fails the caller: anything inconclusive is reported as not found.
package toolchain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/siderolabs/bootimage/pkg/tool"
)

// DefaultPrefixes are searched before the package manager prefix.
var DefaultPrefixes = []string{"/usr"}

// Locator searches for toolchain files.
type Locator struct {
	// ProjectRoot is the base of project-relative lookups.
	ProjectRoot string
	// Prefixes are installation prefixes, e.g. /usr.
	Prefixes []string
	// PackagePrefix returns an additional package manager prefix for the package.
	PackagePrefix func(ctx context.Context, pkg string) (string, bool)

	logger *zap.Logger
}

// NewLocator creates a locator which asks Homebrew for package prefixes.
func NewLocator(projectRoot string, runner tool.Runner, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Locator{
		ProjectRoot:   projectRoot,
		Prefixes:      DefaultPrefixes,
		PackagePrefix: BrewPrefix(runner),
		logger:        logger,
	}
}

// BrewPrefix returns a PackagePrefix backed by `brew --prefix`.
func BrewPrefix(runner tool.Runner) func(ctx context.Context, pkg string) (string, bool) {
	return func(ctx context.Context, pkg string) (string, bool) {
		out, err := runner.Run(ctx, "brew", "--prefix", pkg)
		if err != nil {
			return "", false
		}

		prefix := strings.TrimSpace(out)

		return prefix, prefix != ""
	}
}

// EDK2Arch maps GOARCH to the EDK2 architecture name.
func EDK2Arch(arch string) string {
	switch arch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i386"
	case "loong64":
		return "loongarch64"
	default:
		return arch
	}
}

type firmwareDescriptor struct {
	Mapping struct {
		Executable struct {
			Filename string `json:"filename"`
		} `json:"executable"`
	} `json:"mapping"`
}

// firmwareDescriptorDirs are the descriptor directories relative to an installation prefix.
var firmwareDescriptorDirs = []string{
	"share/qemu/firmware",
	"etc/qemu/firmware",
}

func firmwareDescriptorPath(prefixes []string, name string) (string, bool) {
	for _, prefix := range prefixes {
		if path, ok := WithMiddleParts(prefix, firmwareDescriptorDirs, name, Readable); ok {
			return path, true
		}
	}

	return "", false
}

// QEMUFirmware returns the UEFI firmware blob path for the architecture.
func (l *Locator) QEMUFirmware(ctx context.Context, arch string) (string, bool) {
	prefixes := append([]string(nil), l.Prefixes...)

	if l.PackagePrefix != nil {
		if prefix, ok := l.PackagePrefix(ctx, "qemu"); ok {
			prefixes = append(prefixes, prefix)
		}
	}

	descriptor, ok := firmwareDescriptorPath(prefixes, fmt.Sprintf("60-edk2-%s.json", EDK2Arch(arch)))
	if !ok {
		return "", false
	}

	contents, err := os.ReadFile(descriptor)
	if err != nil {
		l.log().Debug("failed to read firmware descriptor", zap.String("path", descriptor), zap.Error(err))

		return "", false
	}

	var fw firmwareDescriptor

	if err = json.Unmarshal(contents, &fw); err != nil {
		l.log().Debug("failed to parse firmware descriptor", zap.String("path", descriptor), zap.Error(err))

		return "", false
	}

	return ValidPath(fw.Mapping.Executable.Filename, Exists)
}

// Resolve returns the path as is if it exists, otherwise relative to the project root.
func (l *Locator) Resolve(path string, mode uint32) (string, bool) {
	if found, ok := ValidPath(path, mode); ok {
		return found, true
	}

	if filepath.IsAbs(path) || l.ProjectRoot == "" {
		return "", false
	}

	return ValidPath(l.ProjectRelative(path), mode)
}

// ProjectRelative joins the parts to the project root.
func (l *Locator) ProjectRelative(parts ...string) string {
	return filepath.Join(append([]string{l.ProjectRoot}, parts...)...)
}

func (l *Locator) log() *zap.Logger {
	if l.logger == nil {
		return zap.NewNop()
	}

	return l.logger
}
