package session

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
	"github.com/smokyabdulrahman/prayer-clock/internal/metrics"
)

// TimingsSource fetches one day of raw timings.
type TimingsSource interface {
	FetchTimings(ctx context.Context, date time.Time, lat, lon float64, method int) (*api.Response, error)
}

// dayPair is the raw material for one table: the anchor day and the day after.
type dayPair struct {
	today    *api.Response
	tomorrow *api.Response
}

// fetcher issues the two day requests concurrently and caches responses
// for the lifetime of the process.
type fetcher struct {
	source TimingsSource
	cache  *gocache.Cache
}

func newFetcher(source TimingsSource, ttl time.Duration) *fetcher {
	return &fetcher{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

func cacheKey(date time.Time, lat, lon float64, method int) string {
	return fmt.Sprintf("%s|%.6f|%.6f|%d", date.Format("02-01-2006"), lat, lon, method)
}

// fetchPair fetches day and day+1. Both must succeed.
func (f *fetcher) fetchPair(ctx context.Context, day time.Time, lat, lon float64, method int) (dayPair, error) {
	var pair dayPair
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resp, err := f.fetchDay(gctx, "today", day, lat, lon, method)
		if err != nil {
			return fmt.Errorf("today's timings: %w", err)
		}
		pair.today = resp
		return nil
	})
	g.Go(func() error {
		resp, err := f.fetchDay(gctx, "tomorrow", day.AddDate(0, 0, 1), lat, lon, method)
		if err != nil {
			return fmt.Errorf("tomorrow's timings: %w", err)
		}
		pair.tomorrow = resp
		return nil
	})

	if err := g.Wait(); err != nil {
		return dayPair{}, err
	}
	return pair, nil
}

func (f *fetcher) fetchDay(ctx context.Context, label string, date time.Time, lat, lon float64, method int) (*api.Response, error) {
	key := cacheKey(date, lat, lon, method)
	if v, ok := f.cache.Get(key); ok {
		metrics.ObserveCache(true)
		return v.(*api.Response), nil
	}
	metrics.ObserveCache(false)

	start := time.Now()
	resp, err := f.source.FetchTimings(ctx, date, lat, lon, method)
	metrics.ObserveFetch(label, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	f.cache.SetDefault(key, resp)
	return resp, nil
}

// flush drops every cached response.
func (f *fetcher) flush() {
	f.cache.Flush()
}
