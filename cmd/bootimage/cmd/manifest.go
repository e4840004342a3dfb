// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/siderolabs/gen/xslices"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/siderolabs/bootimage/pkg/bootconfig"
	"github.com/siderolabs/bootimage/pkg/imager/profile"
)

const kernelModuleFlag = "kernel"

var (
	_ pflag.Value = (*moduleFlags)(nil)
	_ pflag.Value = (*profile.BootRecord)(nil)
	_ pflag.Value = (*profile.Filesystem)(nil)
	_ pflag.Value = (*profile.OutFormat)(nil)
)

// moduleFlags collects repeated --module flags.
type moduleFlags struct {
	modules []bootconfig.Module
}

// Set implements pflag.Value.
func (m *moduleFlags) Set(value string) error {
	module, err := parseModule(value)
	if err != nil {
		return err
	}

	m.modules = append(m.modules, module)

	return nil
}

// String implements pflag.Value.
func (m *moduleFlags) String() string {
	return "[" + strings.Join(xslices.Map(m.modules, func(module bootconfig.Module) string { return module.Name }), ",") + "]"
}

// Type implements pflag.Value.
func (m *moduleFlags) Type() string {
	return "module"
}

// parseModule parses name[:path][,file][,size=N].
func parseModule(value string) (bootconfig.Module, error) {
	if value == kernelModuleFlag {
		return bootconfig.Kernel(), nil
	}

	spec, opts, _ := strings.Cut(value, ",")

	name, path, _ := strings.Cut(spec, ":")
	if name == "" {
		return bootconfig.Module{}, fmt.Errorf("module name is required in %q", value)
	}

	module := bootconfig.Module{Name: name, Path: path}

	if opts == "" {
		return module, nil
	}

	for _, opt := range strings.Split(opts, ",") {
		key, val, hasValue := strings.Cut(opt, "=")

		switch {
		case key == "file" && !hasValue:
			module.IsFile = true
		case key == "size" && hasValue:
			size, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return bootconfig.Module{}, fmt.Errorf("invalid module size %q: %w", val, err)
			}

			module.Size = size
		default:
			return bootconfig.Module{}, fmt.Errorf("unknown module option %q in %q", opt, value)
		}
	}

	return module, nil
}

var manifestCmdFlags struct {
	modules moduleFlags
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Render the boot manifest for the modules.",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return renderManifest(cmd.OutOrStdout(), manifestCmdFlags.modules.modules)
	},
}

func renderManifest(w io.Writer, modules []bootconfig.Module) error {
	_, err := io.WriteString(w, bootconfig.Render(modules...))

	return err
}

func init() {
	manifestCmd.Flags().Var(&manifestCmdFlags.modules, "module", "A boot module: name[:path][,file][,size=N], "+kernelModuleFlag+" loads the kernel as a module")

	rootCmd.AddCommand(manifestCmd)
}
