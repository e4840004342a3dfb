// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package makefs provides FAT and ISO9660 filesystem builders for disk images.
package makefs

import (
	"fmt"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
	"github.com/siderolabs/bootimage/pkg/tool"
)

// Builder names.
const (
	BuilderMTools  = "mtools"
	BuilderXorriso = "xorriso"
	BuilderNative  = "native"
)

// Option to control makefs settings.
type Option func(*Options)

// Options for makefs.
type Options struct {
	Label        string
	Reproducible bool
	Printf       func(string, ...any)
}

// WithLabel sets the label for the filesystem to be created.
func WithLabel(label string) Option {
	return func(o *Options) {
		o.Label = label
	}
}

// WithReproducible derives volume serials and timestamps from SOURCE_DATE_EPOCH.
func WithReproducible(reproducible bool) Option {
	return func(o *Options) {
		o.Reproducible = reproducible
	}
}

// WithPrintf sets the progress printer.
func WithPrintf(printf func(string, ...any)) Option {
	return func(o *Options) {
		o.Printf = printf
	}
}

// NewDefaultOptions builds options with specified setters applied.
func NewDefaultOptions(setters ...Option) Options {
	opt := Options{
		Printf: func(string, ...any) {},
	}

	for _, o := range setters {
		o(&opt)
	}

	return opt
}

// NewFATBuilder returns the FAT builder by name.
func NewFATBuilder(name string, runner tool.Runner, setters ...Option) (FATBuilder, error) {
	switch name {
	case BuilderMTools:
		return NewMTools(runner, setters...), nil
	case BuilderNative:
		return NewNativeFAT(setters...), nil
	default:
		return nil, fmt.Errorf("unknown FAT builder %q", name)
	}
}

// NewISOBuilder returns the ISO9660 builder by name.
func NewISOBuilder(name string, runner tool.Runner, setters ...Option) (ISOBuilder, error) {
	switch name {
	case BuilderXorriso:
		return NewXorriso(runner, setters...), nil
	case BuilderNative:
		return NewNativeISO(setters...), nil
	default:
		return nil, fmt.Errorf("unknown ISO builder %q", name)
	}
}

// CheckSupported returns ErrUnsupportedFilesystem if the builder can't produce the filesystem.
func CheckSupported(builder FATBuilder, fs profile.Filesystem) error {
	if !fs.IsFAT() || !builder.Supports(fs) {
		return fmt.Errorf("%w: %s FAT builder can't build %s", profile.ErrUnsupportedFilesystem, builder.Name(), fs)
	}

	return nil
}
