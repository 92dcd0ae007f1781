// Package status re-checks whether the businesses in a locations CSV are still operating, using
// the Google Places "find place" endpoint.
package status

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/whosonfirst/go-poi-directory"
	"github.com/whosonfirst/go-poi-directory/google"
	"github.com/whosonfirst/go-poi-directory/metrics"
	"go.uber.org/zap"
)

type BusinessStatus string

const (
	Operational       BusinessStatus = "OPERATIONAL"
	ClosedPermanently BusinessStatus = "CLOSED_PERMANENTLY"
	Unknown           BusinessStatus = "UNKNOWN"
	Error             BusinessStatus = "ERROR"
	InsufficientData  BusinessStatus = "INSUFFICIENT_DATA"
)

// Columns appended to every row.
const (
	ColumnBusinessStatus = "business_status"
	ColumnLastChecked    = "last_checked"
	ColumnNotes          = "notes"
)

// TimeFormat is the layout of the last_checked column.
const TimeFormat = "2006-01-02 15:04:05"

const DefaultRequestDelay = 100 * time.Millisecond

// Note returns the human-readable note recorded alongside 's'.
func Note(s BusinessStatus) string {

	switch s {
	case ClosedPermanently:
		return "Verified as permanently closed via Google API"
	case Operational:
		return "Verified as operational via Google API"
	case InsufficientData:
		return "Missing name or address data"
	default:
		return "Status could not be determined"
	}
}

// FromResponse maps a find place response to a business status. Only an OK response with at least
// one candidate can yield something other than Unknown; the first candidate is used.
func FromResponse(rsp *google.FindPlaceResponse) BusinessStatus {

	if rsp == nil || rsp.Status != google.StatusOK || len(rsp.Candidates) == 0 {
		return Unknown
	}

	switch BusinessStatus(rsp.Candidates[0].BusinessStatus) {
	case Operational:
		return Operational
	case ClosedPermanently:
		return ClosedPermanently
	default:
		return Unknown
	}
}

// PlaceFinder is the subset of the Places API used by a Checker.
type PlaceFinder interface {
	FindPlace(context.Context, string, ...string) (*google.FindPlaceResponse, error)
}

type CheckerOptions struct {
	Finder PlaceFinder
	// NameColumn and AddressColumn default to "name" and "full_address".
	NameColumn    string
	AddressColumn string
	RequestDelay  time.Duration
	// Now defaults to time.Now.
	Now     func() time.Time
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type Checker struct {
	finder         PlaceFinder
	name_column    string
	address_column string
	request_delay  time.Duration
	now            func() time.Time
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

func NewChecker(opts *CheckerOptions) (*Checker, error) {

	if opts.Finder == nil {
		return nil, fmt.Errorf("missing place finder")
	}

	c := &Checker{
		finder:         opts.Finder,
		name_column:    opts.NameColumn,
		address_column: opts.AddressColumn,
		request_delay:  opts.RequestDelay,
		now:            opts.Now,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
	}

	if c.name_column == "" {
		c.name_column = "name"
	}

	if c.address_column == "" {
		c.address_column = "full_address"
	}

	if c.now == nil {
		c.now = time.Now
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	return c, nil
}

// Check looks up the business status for 'name' at 'address'. Request failures are returned
// alongside Error.
func (c *Checker) Check(ctx context.Context, name string, address string) (BusinessStatus, error) {

	query := strings.TrimSpace(name + " " + address)

	rsp, err := c.finder.FindPlace(ctx, query, "business_status")

	if err != nil {
		return Error, err
	}

	return FromResponse(rsp), nil
}

// Checked is the outcome of checking a single row.
type Checked struct {
	Name        string
	Status      BusinessStatus
	LastChecked time.Time
	Row         map[string]string
}

// CheckRow returns a copy of 'row' with the business_status, last_checked and notes columns set.
// Rows without a name or address are marked InsufficientData without a lookup. A failed lookup
// yields a failed result tagged "ERROR" whose Value still carries the enriched row.
func (c *Checker) CheckRow(ctx context.Context, row map[string]string) directory.Result[*Checked] {

	name := strings.Trim(row[c.name_column], `"`)
	address := row[c.address_column]

	var s BusinessStatus
	var err error

	if name != "" && address != "" {
		c.logger.Info("Checking", zap.String("name", name), zap.String("address", address))
		s, err = c.Check(ctx, name, address)
	} else {
		s = InsufficientData
	}

	now := c.now()

	out := make(map[string]string, len(row)+3)

	for k, v := range row {
		out[k] = v
	}

	out[ColumnBusinessStatus] = string(s)
	out[ColumnLastChecked] = now.Format(TimeFormat)
	out[ColumnNotes] = Note(s)

	checked := &Checked{
		Name:        name,
		Status:      s,
		LastChecked: now,
		Row:         out,
	}

	c.metrics.ObserveRow("status", string(s))

	if err != nil {
		c.logger.Warn("Failed to check status", zap.String("name", name), zap.Error(err))
		res := directory.Failure[*Checked](name, string(Error), err)
		res.Value = checked
		return res
	}

	return directory.Success(name, checked)
}

// CheckRows checks every row yielded by 'rows' and passes each enriched row to 'write', in
// order. Row failures are collected in the returned report and never stop the batch; only an
// error from 'write' or from the context does. Unreadable input rows are logged and skipped.
func (c *Checker) CheckRows(ctx context.Context, rows iter.Seq2[map[string]string, error], write func(map[string]string) error) (*directory.Report[*Checked], error) {

	report := new(directory.Report[*Checked])

	for row, err := range rows {

		if err != nil {
			c.logger.Warn("Failed to read row", zap.Error(err))
			continue
		}

		res := c.CheckRow(ctx, row)

		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		report.Add(res)

		err = write(res.Value.Row)

		if err != nil {
			return report, fmt.Errorf("failed to write row for %s: %w", res.Key, err)
		}

		if res.Value.Status == InsufficientData {
			continue
		}

		err = directory.Pause(ctx, c.request_delay)

		if err != nil {
			return report, err
		}
	}

	return report, nil
}
