// Package photoload reads photo files from disk and prepares them for
// attachment to a catalog item.
package photoload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/artcatalog/internal/imaging"
	"github.com/vbonduro/artcatalog/internal/service"
)

const (
	DefaultConcurrency = 4
	// DefaultMaxBytes caps the size of a single photo file.
	DefaultMaxBytes = 50 * 1024 * 1024
)

// ErrTooLarge is returned for files over Options.MaxBytes.
var ErrTooLarge = errors.New("photo too large")

type Options struct {
	// Concurrency bounds how many files are read and normalized at once.
	Concurrency int
	// MaxDimension is passed to imaging.Normalize. Zero keeps the default.
	MaxDimension int
	// MaxBytes rejects larger files. Zero keeps DefaultMaxBytes.
	MaxBytes int64
}

// Load reads and normalizes every file in paths. The result has the same
// order as paths. The first failure cancels the remaining reads.
func Load(ctx context.Context, paths []string, opts Options) ([]service.PhotoUpload, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = imaging.DefaultMaxDimension
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}

	uploads := make([]service.PhotoUpload, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readLimited(p, opts.MaxBytes)
			if err != nil {
				return err
			}
			normalized, mimeType, err := imaging.Normalize(data, opts.MaxDimension)
			if err != nil {
				return fmt.Errorf("failed to normalize photo %s: %w", p, err)
			}
			uploads[i] = service.PhotoUpload{Data: normalized, MimeType: mimeType}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uploads, nil
}

func readLimited(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo %s: %w", path, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, path, maxBytes)
	}
	return data, nil
}
