package schedule

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nearbyflights/geobounds/bbox"
	"github.com/nearbyflights/geobounds/loader"
)

func receive(t *testing.T, results <-chan loader.Result) loader.Result {
	t.Helper()

	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a result")
	}

	return loader.Result{}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.geojson")
	// replace the file atomically so a tick never sees a partial write
	write := func(content string) {
		tmp := path + ".tmp"
		if err := ioutil.WriteFile(tmp, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Rename(tmp, path); err != nil {
			t.Fatal(err)
		}
	}

	write(`{"geometry":{"type":"Point","coordinates":[1,2]}}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := Scheduler{Interval: 10 * time.Millisecond, Paths: []string{path}}
	results, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := receive(t, results)
	if first.Error != nil || first.Box != (bbox.BoundingBox{MinLongitude: 1, MaxLongitude: 1, MinLatitude: 2, MaxLatitude: 2}) {
		t.Fatalf("unexpected first result: %+v", first)
	}

	write(`{"geometry":{"type":"LineString","coordinates":[[1,2],[5,6]]}}`)

	second := receive(t, results)
	if second.Box != (bbox.BoundingBox{MinLongitude: 1, MaxLongitude: 5, MinLatitude: 2, MaxLatitude: 6}) {
		t.Fatalf("unexpected second result: %+v", second)
	}

	cancel()

	// drain until the scheduler closes the channel
	for {
		select {
		case _, ok := <-results:
			if !ok {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatal("channel was not closed after cancel")
		}
	}
}

func TestWatch_InvalidOptions(t *testing.T) {
	s := Scheduler{Paths: []string{"a.geojson"}}
	if _, err := s.Watch(context.Background()); err == nil {
		t.Error("expected an error for a zero interval")
	}

	s = Scheduler{Interval: time.Second}
	if _, err := s.Watch(context.Background()); err == nil {
		t.Error("expected an error without paths")
	}
}

func TestChanged(t *testing.T) {
	previous := make(map[string]state)
	box := bbox.BoundingBox{MinLongitude: 1, MaxLongitude: 2, MinLatitude: 3, MaxLatitude: 4}
	missing := errors.New("file not found")

	changes := changed(previous, []loader.Result{{Path: "a", Box: box}, {Path: "b", Error: missing}})
	if len(changes) != 2 {
		t.Fatalf("first pass should report every path, got %d", len(changes))
	}

	changes = changed(previous, []loader.Result{{Path: "a", Box: box}, {Path: "b", Error: missing}})
	if len(changes) != 0 {
		t.Fatalf("nothing changed, got %v", changes)
	}

	changes = changed(previous, []loader.Result{{Path: "a", Box: box}, {Path: "b", Box: box}})
	if len(changes) != 1 || changes[0].Path != "b" {
		t.Fatalf("expected only b to change, got %v", changes)
	}
}
