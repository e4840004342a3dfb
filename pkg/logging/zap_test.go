// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package logging_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/siderolabs/bootimage/pkg/logging"
)

func TestCLILevels(t *testing.T) {
	t.Parallel()

	for _, debug := range []bool{false, true} {
		t.Run(fmt.Sprintf("debug=%v", debug), func(t *testing.T) {
			t.Parallel()

			var out strings.Builder

			logger := logging.CLI(&out, debug).With(logging.Component("imager"))

			logger.Debug("running tool")
			logger.Warn("root is read-only")

			assert.Equal(t, debug, strings.Contains(out.String(), "running tool"))
			assert.Contains(t, out.String(), "root is read-only")
			assert.Contains(t, out.String(), `"component": "imager"`)
		})
	}
}

func TestLogWriter(t *testing.T) {
	t.Parallel()

	var out strings.Builder

	logger := logging.ZapLogger(logging.NewLogDestination(&out, zapcore.InfoLevel, logging.WithoutTimestamp()))

	w := logging.NewWriter(logger, zapcore.InfoLevel)

	n, err := w.Write([]byte("diskfs: writing table\n"))
	require.NoError(t, err)
	assert.Equal(t, 22, n)

	assert.Equal(t, "INFO diskfs: writing table\n", out.String())

	n, err = logging.NewWriter(logger, zapcore.DebugLevel).Write([]byte("dropped\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.NotContains(t, out.String(), "dropped")
}

func TestColoredLevels(t *testing.T) {
	t.Parallel()

	var plain, colored strings.Builder

	logging.CLI(&plain, false).Warn("root is read-only")
	logging.ZapLogger(logging.NewLogDestination(&colored, zapcore.WarnLevel,
		logging.WithoutTimestamp(), logging.WithColoredLevels())).Warn("root is read-only")

	assert.Equal(t, "WARN root is read-only\n", plain.String())
	assert.NotContains(t, plain.String(), "\x1b[")

	assert.Contains(t, colored.String(), "\x1b[33mWARN\x1b[0m")
	assert.Contains(t, colored.String(), "root is read-only")
}
