// Package inventory discovers usable media files in flat directories.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/forPelevin/vidfill/internal/ports"
	"github.com/forPelevin/vidfill/internal/types"
)

var (
	VideoExts = []string{".mp4", ".mov", ".avi", ".mkv"}
	AudioExts = []string{".mp3", ".wav", ".aac", ".m4a", ".flac", ".ogg"}
)

// ScanMaterials probes every video file directly inside dir and returns the
// ones with a positive duration. It fails with types.ErrInventoryEmpty when
// dir is missing or nothing usable is found, and aborts on a missing probe tool.
func ScanMaterials(ctx context.Context, p ports.Prober, dir string, logf func(string, ...any)) ([]types.MediaAsset, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	paths, err := listByExt(dir, VideoExts)
	if err != nil {
		return nil, fmt.Errorf("materials %s: %v: %w", dir, err, types.ErrInventoryEmpty)
	}

	pool := make([]types.MediaAsset, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := p.ProbeDuration(ctx, path)
		switch {
		case errors.Is(err, types.ErrToolNotFound):
			return nil, err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			logf("skip %s: %v", filepath.Base(path), err)
			continue
		case d <= 0:
			logf("skip %s: duration %.2fs", filepath.Base(path), d)
			continue
		}
		logf("material %s: %.2fs", filepath.Base(path), d)
		pool = append(pool, types.MediaAsset{Path: path, Duration: d})
	}

	if len(pool) == 0 {
		return nil, fmt.Errorf("no usable video in %s: %w", dir, types.ErrInventoryEmpty)
	}
	return pool, nil
}

// ListAudio returns the audio files directly inside dir without probing them.
func ListAudio(dir string) ([]string, error) {
	paths, err := listByExt(dir, AudioExts)
	if err != nil {
		return nil, fmt.Errorf("audio %s: %v: %w", dir, err, types.ErrInventoryEmpty)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported audio in %s: %w", dir, types.ErrInventoryEmpty)
	}
	return paths, nil
}

// TotalDuration sums the pool once.
func TotalDuration(pool []types.MediaAsset) float64 {
	return lo.SumBy(pool, func(a types.MediaAsset) float64 { return a.Duration })
}

// listByExt is non-recursive; entries come back in file name order.
func listByExt(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	matched := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && HasExt(e.Name(), exts)
	})
	return lo.Map(matched, func(e os.DirEntry, _ int) string {
		return filepath.Join(dir, e.Name())
	}), nil
}

// HasExt reports whether name ends in one of exts, ignoring case.
func HasExt(name string, exts []string) bool {
	return lo.Contains(exts, strings.ToLower(filepath.Ext(name)))
}
