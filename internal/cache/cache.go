// Package cache memoizes interpolated sky grids on disk so repeated runs
// over the same maps skip the expensive resampling step.
package cache

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/signalsfoundry/skymap-correlator/model"
)

// ErrCorruptArtifact reports a cache file that exists but cannot be
// decoded. There is no checksum and no fallback recomputation: a corrupt
// artifact fails the event immediately. That is the accepted tradeoff of
// path-keyed caching; delete the artifact to recover.
var ErrCorruptArtifact = errors.New("interpolation cache: corrupt artifact")

const (
	mapSuffixGz   = ".fits.gz"
	mapSuffix     = ".fits"
	cacheSuffix   = ".intrp.json.gz"
	tempPrefixFmt = ".%s.tmp-*"
)

// ArtifactPath derives the cache location from the source map path by
// swapping the map suffix for the cache suffix. The key is the path, not
// the content: editing a map in place leaves a stale artifact behind.
func ArtifactPath(sourcePath string) string {
	switch {
	case strings.HasSuffix(sourcePath, mapSuffixGz):
		return strings.TrimSuffix(sourcePath, mapSuffixGz) + cacheSuffix
	case strings.HasSuffix(sourcePath, mapSuffix):
		return strings.TrimSuffix(sourcePath, mapSuffix) + cacheSuffix
	default:
		return sourcePath + cacheSuffix
	}
}

// artifactJSON is the on-disk container: the three grids under one fixed
// key, mirroring the single-entry archive the artifact replaces.
type artifactJSON struct {
	Grids gridsJSON `json:"grids"`
}

type gridsJSON struct {
	RA   [][]float64 `json:"ra"`
	Dec  [][]float64 `json:"dec"`
	Prob [][]float64 `json:"prob"`
}

// InterpolationCache memoizes (RA, Dec, prob) grid triples per source map
// file. It owns only the serialized artifacts; every hit reconstructs a
// fresh in-memory grid, so callers may mutate the result freely.
type InterpolationCache struct{}

// GetOrCompute returns the cached grid for sourcePath, or invokes compute
// and persists its result before returning it. The second return value
// reports whether the lookup was a hit.
func (c *InterpolationCache) GetOrCompute(sourcePath string, compute func() (*model.InterpolatedGrid, error)) (*model.InterpolatedGrid, bool, error) {
	artifact := ArtifactPath(sourcePath)

	if _, err := os.Stat(artifact); err == nil {
		g, err := loadArtifact(artifact)
		if err != nil {
			return nil, true, err
		}
		return g, true, nil
	}

	g, err := compute()
	if err != nil {
		return nil, false, fmt.Errorf("interpolation cache: compute for %s: %w", sourcePath, err)
	}
	if err := storeArtifact(artifact, g); err != nil {
		return nil, false, err
	}
	return g, false, nil
}

func loadArtifact(path string) (*model.InterpolatedGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("interpolation cache: open %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, path, err)
	}
	defer gz.Close()

	var payload artifactJSON
	if err := json.NewDecoder(gz).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, path, err)
	}

	g := &model.InterpolatedGrid{
		RA:   payload.Grids.RA,
		Dec:  payload.Grids.Dec,
		Prob: payload.Grids.Prob,
	}
	rows, cols := g.Shape()
	if rows == 0 || cols == 0 ||
		len(g.Dec) != rows || len(g.Prob) != rows {
		return nil, fmt.Errorf("%w: %s: grid shapes disagree", ErrCorruptArtifact, path)
	}
	return g, nil
}

// storeArtifact writes to a temp file in the target directory and renames
// it into place, so a crashed run never leaves a half-written artifact
// under the cache key.
func storeArtifact(path string, g *model.InterpolatedGrid) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, fmt.Sprintf(tempPrefixFmt, filepath.Base(path)))
	if err != nil {
		return fmt.Errorf("interpolation cache: create temp for %s: %w", path, err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	gz := gzip.NewWriter(tmp)
	payload := artifactJSON{Grids: gridsJSON{RA: g.RA, Dec: g.Dec, Prob: g.Prob}}
	if err := json.NewEncoder(gz).Encode(&payload); err != nil {
		return fmt.Errorf("interpolation cache: encode %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("interpolation cache: finish %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("interpolation cache: close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("interpolation cache: rename into %s: %w", path, err)
	}
	return nil
}
