package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"blockcal/internal/config"
	"blockcal/internal/ics"
	appLog "blockcal/internal/log"
	"blockcal/internal/merge"
	"blockcal/internal/model"
)

// Result reports a successful run.
type Result struct {
	// Count is the number of blocked ranges in the written document.
	Count int
	// Path is where the document was written.
	Path string
	// Document is the serialized ICS text, for callers that also serve it.
	Document string
}

// Run executes one merge cycle: fetch both channel feeds concurrently,
// normalize, build the blocked-dates calendar and write it atomically to
// cfg.Output.
//
// Any failure aborts the whole run and leaves the existing output file
// untouched. A calendar missing one channel's blocks would invite a
// double-booking, so there is no partial-success mode.
func Run(ctx context.Context, cfg *config.Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	sources := [2]ics.Source{
		{Name: config.ChannelAirbnb, URL: cfg.AirbnbURL},
		{Name: config.ChannelBooking, URL: cfg.BookingURL},
	}

	fetcher := ics.NewFetcher()

	// Both feeds in flight at once; the first error fails the join.
	var raw [2][]ics.RawComponent
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			comps, err := fetcher.FetchParsed(gctx, src)
			if err != nil {
				return err
			}
			raw[i] = comps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	// Channel order is fixed: airbnb first, booking second; within a
	// channel the feed's own order is preserved.
	ranges := make([]model.BlockedRange, 0, len(raw[0])+len(raw[1]))
	for i, src := range sources {
		ranges = append(ranges, merge.NormalizeAll(src.Name, raw[i])...)
	}

	doc := merge.Build(ranges)

	if err := writeAtomic(cfg.Output, []byte(doc)); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", cfg.Output, err)
	}

	appLog.Info("merged calendar written", "path", cfg.Output, "blocked_ranges", len(ranges))
	return Result{Count: len(ranges), Path: cfg.Output, Document: doc}, nil
}

// writeAtomic writes via a temp file + rename so a failed run can never
// leave a truncated calendar behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".blockcal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
