// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package bootconfig renders the boot manifest consumed by the bootloader at boot time.
package bootconfig

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// KernelModuleName is the reserved module name which denotes the kernel itself,
	// loaded as a module instead of being loaded separately.
	KernelModuleName = "__KERNEL__"

	// KernelAsModuleDirective is rendered for the KernelModuleName module.
	KernelAsModuleDirective = "kernel-as-module = true"

	// AutoSize asks the bootloader to detect the module size at load time.
	AutoSize = "auto"

	// ManifestFileName is the manifest location relative to the image root directory.
	ManifestFileName = "hyper.cfg"
)

const moduleFormat = `
module:
    name = "%s"
    type = "%s"
    path = "%s"
    size = "%s"
`

// Module is a single boot-loadable unit referenced by the manifest.
type Module struct {
	// Name of the module, KernelModuleName is reserved.
	Name string `yaml:"name" toml:"name"`
	// IsFile selects a file-backed module, memory-resident otherwise.
	IsFile bool `yaml:"file" toml:"file"`
	// Path is the source path of the module, optional.
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`
	// Size of the module in bytes, zero means auto-detect.
	Size uint64 `yaml:"size,omitempty" toml:"size,omitempty"`
}

// Kernel returns the module which embeds the kernel as a module.
func Kernel() Module {
	return Module{Name: KernelModuleName}
}

// IsKernel reports whether the module is the kernel sentinel.
func (m Module) IsKernel() bool {
	return m.Name == KernelModuleName
}

// String renders the module as a manifest block.
func (m Module) String() string {
	if m.IsKernel() {
		return KernelAsModuleDirective
	}

	moduleType := "memory"
	if m.IsFile {
		moduleType = "file"
	}

	size := AutoSize
	if m.Size != 0 {
		size = strconv.FormatUint(m.Size, 10)
	}

	return fmt.Sprintf(moduleFormat, m.Name, moduleType, m.Path, size)
}

// Render concatenates the modules in the given order.
func Render(modules ...Module) string {
	var sb strings.Builder

	for _, m := range modules {
		sb.WriteString(m.String())

		if m.IsKernel() {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
