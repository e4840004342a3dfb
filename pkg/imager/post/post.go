// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package post implements post-processing of the finished disk image.
package post

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/siderolabs/bootimage/pkg/imager/profile"
)

// DestinationPath returns the export path with the format extension appended.
func DestinationPath(dest string, format profile.OutFormat) string {
	return profile.Output{Path: dest, Format: format}.ExportPath()
}

// Export copies the image to dest in the requested format.
//
// It returns the path of the written file. A partially written file is removed on failure.
func Export(ctx context.Context, src, dest string, format profile.OutFormat) (string, error) {
	target := DestinationPath(dest, format)

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}

	defer in.Close() //nolint:errcheck

	if err = checkDistinct(in, target); err != nil {
		return "", err
	}

	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}

	if err = writeCompressed(ctx, out, in, format); err != nil {
		out.Close()       //nolint:errcheck
		os.Remove(target) //nolint:errcheck

		return "", err
	}

	if err = out.Close(); err != nil {
		os.Remove(target) //nolint:errcheck

		return "", err
	}

	return target, nil
}

func writeCompressed(ctx context.Context, out io.Writer, in io.Reader, format profile.OutFormat) error {
	w, err := compressor(out, format)
	if err != nil {
		return err
	}

	if _, err = io.Copy(w, &contextReader{ctx: ctx, r: in}); err != nil {
		w.Close() //nolint:errcheck

		return fmt.Errorf("failed to export image: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to export image: %w", err)
	}

	return nil
}

// checkDistinct refuses to export an image onto itself.
func checkDistinct(in *os.File, target string) error {
	srcInfo, err := in.Stat()
	if err != nil {
		return err
	}

	targetInfo, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}

	if os.SameFile(srcInfo, targetInfo) {
		return fmt.Errorf("export destination %q is the image itself", target)
	}

	return nil
}

func compressor(w io.Writer, format profile.OutFormat) (io.WriteCloser, error) {
	switch format { //nolint:exhaustive
	case profile.OutFormatRaw:
		return nopCloser{w}, nil
	case profile.OutFormatXZ:
		return xz.NewWriter(w)
	case profile.OutFormatGZ:
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	case profile.OutFormatZSTD:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// contextReader aborts the copy once the context is canceled.
type contextReader struct {
	ctx context.Context //nolint:containedctx
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
