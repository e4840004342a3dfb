// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package profile

import (
	"strings"

	"github.com/siderolabs/bootimage/pkg/bootconfig"
)

// CustomizationProfile describes customizations that can be applied to the image contents.
type CustomizationProfile struct {
	// Manifest is the verbatim boot manifest text.
	Manifest string `yaml:"manifest,omitempty" toml:"manifest,omitempty"`
	// Modules are rendered after Manifest, in order.
	Modules []bootconfig.Module `yaml:"modules,omitempty" toml:"modules,omitempty"`
}

// ManifestText returns the boot manifest to write into the root directory.
//
// The second return value is false if no manifest was requested.
func (c *CustomizationProfile) ManifestText() (string, bool) {
	if c.Manifest == "" && len(c.Modules) == 0 {
		return "", false
	}

	manifest := c.Manifest

	// modules start on their own line
	if manifest != "" && len(c.Modules) > 0 && !strings.HasSuffix(manifest, "\n") {
		manifest += "\n"
	}

	return manifest + bootconfig.Render(c.Modules...), true
}
