package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/nearbyflights/geobounds/bbox"
	"github.com/nearbyflights/geobounds/loader"
	log "github.com/sirupsen/logrus"
)

// Scheduler re-extracts the bounds of a fixed set of files on every tick.
type Scheduler struct {
	Interval time.Duration
	Paths    []string
}

type state struct {
	box bbox.BoundingBox
	err string
}

// Watch emits a result for every path on the first tick, then only for paths
// whose bounds or error changed. The channel is closed once ctx is done.
func (s *Scheduler) Watch(ctx context.Context) (<-chan loader.Result, error) {
	if s.Interval <= 0 {
		return nil, errors.New("watch interval must be positive")
	}

	if len(s.Paths) == 0 {
		return nil, errors.New("no paths to watch")
	}

	resultsCh := make(chan loader.Result)
	ticker := time.NewTicker(s.Interval)
	previous := make(map[string]state)

	go func() {
		defer close(resultsCh)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				results, err := loader.LoadAll(ctx, s.Paths)
				if err != nil {
					log.Error(err)
					continue
				}

				for _, r := range changed(previous, results) {
					select {
					case resultsCh <- r:
					case <-ctx.Done():
						log.Info("watch stopped: finish schedule routine")
						return
					}
				}
			case <-ctx.Done():
				log.Info("watch stopped: finish schedule routine")
				return
			}
		}
	}()

	return resultsCh, nil
}

func changed(previous map[string]state, results []loader.Result) []loader.Result {
	changes := results[:0]

	for _, r := range results {
		current := state{box: r.Box}
		if r.Error != nil {
			current.err = r.Error.Error()
		}

		if old, ok := previous[r.Path]; ok && old == current {
			continue
		}

		previous[r.Path] = current
		changes = append(changes, r)
	}

	return changes
}
