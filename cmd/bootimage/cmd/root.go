// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package cmd implements the bootimage commands.
package cmd

import (
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/siderolabs/bootimage/pkg/logging"
)

var rootCmdFlags struct {
	debug bool
}

var logger = zap.NewNop()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "bootimage",
	Short:        "Assemble bootable disk and CD images.",
	Long:         ``,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger = logging.CLI(cmd.ErrOrStderr(), rootCmdFlags.debug)

		// libraries logging through the standard logger or logrus (go-diskfs)
		log.SetFlags(0)
		log.SetOutput(logging.NewWriter(logger, zapcore.DebugLevel))

		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
		logrus.SetOutput(logging.NewWriter(logger, zapcore.DebugLevel))

		if rootCmdFlags.debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootCmdFlags.debug, "debug", false, "Print debug logs and the external tool invocations")
}
