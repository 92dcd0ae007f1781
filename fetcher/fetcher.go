// Package fetcher collects places for a list of search categories from the Google Places API and
// flattens them into directory records.
package fetcher

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/whosonfirst/go-poi-directory"
	"github.com/whosonfirst/go-poi-directory/google"
	"github.com/whosonfirst/go-poi-directory/metrics"
	"go.uber.org/zap"
)

// Result tags for records that could not be fetched.
const (
	TagSearch  = "search"
	TagDetails = "details"
)

const (
	// Google requires a short delay before a next_page_token becomes valid.
	DefaultPageDelay   = 2 * time.Second
	DefaultRecordDelay = 100 * time.Millisecond
)

// PlacesAPI is the subset of the Places API used by a Fetcher.
type PlacesAPI interface {
	TextSearch(context.Context, *google.TextSearchOptions) (*google.TextSearchResponse, error)
	Details(context.Context, string) (*google.PlaceDetails, error)
}

type FetcherOptions struct {
	API PlacesAPI
	// Area is appended to every query, as in "restaurant in <Area>".
	Area string
	// Center biases search results. Radius is in meters.
	Center orb.Point
	Radius int
	// MaxDistance, in meters from Center, drops places outside it. 0 disables the check.
	MaxDistance float64
	PageDelay   time.Duration
	RecordDelay time.Duration
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

type Fetcher struct {
	api          PlacesAPI
	area         string
	center       orb.Point
	radius       int
	max_distance float64
	page_delay   time.Duration
	record_delay time.Duration
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

func NewFetcher(opts *FetcherOptions) (*Fetcher, error) {

	if opts.API == nil {
		return nil, fmt.Errorf("missing places API")
	}

	logger := opts.Logger

	if logger == nil {
		logger = zap.NewNop()
	}

	f := &Fetcher{
		api:          opts.API,
		area:         opts.Area,
		center:       opts.Center,
		radius:       opts.Radius,
		max_distance: opts.MaxDistance,
		page_delay:   opts.PageDelay,
		record_delay: opts.RecordDelay,
		logger:       logger,
		metrics:      opts.Metrics,
	}

	return f, nil
}

// Query returns the text search query for 'category'.
func (f *Fetcher) Query(category string) string {

	if f.area == "" {
		return category
	}

	return fmt.Sprintf("%s in %s", category, f.area)
}

func (f *Fetcher) location() string {

	if f.center == (orb.Point{}) {
		return ""
	}

	lat := strconv.FormatFloat(f.center.Lat(), 'f', -1, 64)
	lon := strconv.FormatFloat(f.center.Lon(), 'f', -1, 64)

	return lat + "," + lon
}

// Search pages through the text search results for 'category' until no continuation token is
// returned. If a page fails the results gathered so far are returned along with the error.
func (f *Fetcher) Search(ctx context.Context, category string) ([]google.SearchResult, error) {

	results := make([]google.SearchResult, 0)

	opts := &google.TextSearchOptions{
		Query:    f.Query(category),
		Location: f.location(),
		Radius:   f.radius,
	}

	for {

		if opts.PageToken != "" {

			err := directory.Pause(ctx, f.page_delay)

			if err != nil {
				return results, err
			}
		}

		rsp, err := f.api.TextSearch(ctx, opts)

		if err != nil {
			return results, err
		}

		results = append(results, rsp.Results...)

		if rsp.NextPageToken == "" {
			break
		}

		opts.PageToken = rsp.NextPageToken
	}

	return results, nil
}

// FetchCategory searches 'category' and fetches the details of every result. A failure for one
// place is recorded in 'report' and does not stop the scan. The returned error is only ever the
// context's error.
func (f *Fetcher) FetchCategory(ctx context.Context, category string, report *directory.Report[*directory.Place]) error {

	logger := f.logger.With(zap.String("category", category))
	logger.Info("Processing category")

	results, err := f.Search(ctx, category)

	if err != nil {

		if ctx.Err() != nil {
			return ctx.Err()
		}

		logger.Warn("Search failed", zap.Int("results", len(results)), zap.Error(err))
		report.Add(directory.Failure[*directory.Place](category, TagSearch, err))
		f.metrics.ObserveRow("fetch", TagSearch)
	}

	for _, r := range results {

		if r.PlaceID == "" {
			continue
		}

		details, err := f.api.Details(ctx, r.PlaceID)

		if err != nil {

			if ctx.Err() != nil {
				return ctx.Err()
			}

			logger.Warn("Failed to fetch place details", zap.String("place_id", r.PlaceID), zap.Error(err))
			report.Add(directory.Failure[*directory.Place](r.PlaceID, TagDetails, err))
			f.metrics.ObserveRow("fetch", TagDetails)

		} else {

			pl := NewPlace(category, details)

			if f.inRange(pl) {
				report.Add(directory.Success(r.PlaceID, pl))
				f.metrics.ObserveRow("fetch", "ok")
			} else {
				logger.Debug("Place outside search area", zap.String("place_id", r.PlaceID), zap.String("name", pl.Name))
			}
		}

		err = directory.Pause(ctx, f.record_delay)

		if err != nil {
			return err
		}
	}

	return nil
}

// Fetch runs FetchCategory for every category in order.
func (f *Fetcher) Fetch(ctx context.Context, categories []string) (*directory.Report[*directory.Place], error) {

	report := new(directory.Report[*directory.Place])

	for _, c := range categories {

		err := f.FetchCategory(ctx, c, report)

		if err != nil {
			return report, err
		}
	}

	return report, nil
}

func (f *Fetcher) inRange(pl *directory.Place) bool {

	if f.max_distance <= 0 {
		return true
	}

	pt, ok := pl.Point()

	if !ok {
		return true
	}

	return geo.Distance(f.center, pt) <= f.max_distance
}
