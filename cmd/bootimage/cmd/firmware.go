// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/siderolabs/bootimage/pkg/tool"
	"github.com/siderolabs/bootimage/pkg/toolchain"
)

var firmwareCmdFlags struct {
	arch string
}

var firmwareCmd = &cobra.Command{
	Use:   "firmware",
	Short: "Print the path of the QEMU UEFI firmware for the architecture.",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		locator := toolchain.NewLocator("", tool.NewExec(logger), logger)

		path, ok := locator.QEMUFirmware(cmd.Context(), firmwareCmdFlags.arch)
		if !ok {
			return fmt.Errorf("no UEFI firmware found for %s", firmwareCmdFlags.arch)
		}

		fmt.Fprintln(cmd.OutOrStdout(), path) //nolint:errcheck

		return nil
	},
}

func init() {
	firmwareCmd.Flags().StringVar(&firmwareCmdFlags.arch, "arch", runtime.GOARCH, "The target architecture")

	rootCmd.AddCommand(firmwareCmd)
}
