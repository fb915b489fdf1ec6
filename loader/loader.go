package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/nearbyflights/geobounds/bbox"
	"github.com/nearbyflights/geobounds/geojson"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotFound       = errors.New("file not found")
	ErrMalformedInput = errors.New("invalid GeoJSON format")
)

// maxConcurrentLoads bounds the number of files read at the same time by LoadAll.
const maxConcurrentLoads = 8

type Result struct {
	Path  string
	Box   bbox.BoundingBox
	Error error
}

// Load reads path and decodes it into generic JSON values.
func Load(path string) (interface{}, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("error reading %s: %v", path, err)
	}

	return Decode(data, path)
}

func Decode(data []byte, source string) (interface{}, error) {
	var document interface{}
	err := json.Unmarshal(data, &document)
	if err != nil {
		return nil, fmt.Errorf("%w in %s: %v", ErrMalformedInput, source, err)
	}

	return document, nil
}

// Bounds loads path and extracts its bounding box.
func Bounds(path string) (bbox.BoundingBox, error) {
	document, err := Load(path)
	if err != nil {
		return bbox.BoundingBox{}, err
	}

	box, err := geojson.Extract(document)
	if err != nil {
		return bbox.BoundingBox{}, fmt.Errorf("%s: %w", path, err)
	}

	log.Debugf("bounds of %s: %v", path, box)

	return box, nil
}

// LoadAll computes the bounds of every path concurrently. Results keep the
// order of paths; per-file failures are reported in Result.Error. Only
// context cancellation fails the whole batch.
func LoadAll(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxConcurrentLoads)

	for i, path := range paths {
		i, path := i, path

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			box, err := Bounds(path)
			results[i] = Result{Path: path, Box: box, Error: err}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Union merges the boxes of all successful results. ok is false when none succeeded.
func Union(results []Result) (box bbox.BoundingBox, ok bool) {
	for _, r := range results {
		if r.Error != nil {
			continue
		}

		if !ok {
			box, ok = r.Box, true
			continue
		}

		box = box.Union(r.Box)
	}

	return box, ok
}
