// Package writer provides registered output targets for dictionary rows. Every writer is created
// with a fixed list of column names, written as the header before any row.
package writer

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/aaronland/go-roster"
)

type Writer interface {
	WriteRow(context.Context, map[string]string) error
	// Close flushes any buffered rows and releases the underlying resources.
	Close() error
}

var writer_roster roster.Roster

// WriterInitializationFunc is a function defined by individual writer package and used to create
// an instance of that writer
type WriterInitializationFunc func(ctx context.Context, uri string, fieldnames []string) (Writer, error)

// RegisterWriter registers 'scheme' as a key pointing to 'init_func' in an internal lookup table
// used to create new `Writer` instances by the `NewWriter` method.
func RegisterWriter(ctx context.Context, scheme string, init_func WriterInitializationFunc) error {

	err := ensureWriterRoster()

	if err != nil {
		return err
	}

	return writer_roster.Register(ctx, scheme, init_func)
}

func ensureWriterRoster() error {

	if writer_roster == nil {

		r, err := roster.NewDefaultRoster()

		if err != nil {
			return err
		}

		writer_roster = r
	}

	return nil
}

// NewWriter returns a new `Writer` instance configured by 'uri'. A 'uri' without a scheme is
// treated as a local file path and its scheme is chosen by file extension: ".xlsx" files are
// written as spreadsheets, everything else as CSV. Rows are written in the column order of
// 'fieldnames'; keys missing from a row are written as empty values.
func NewWriter(ctx context.Context, uri string, fieldnames []string) (Writer, error) {

	if len(fieldnames) == 0 {
		return nil, fmt.Errorf("missing fieldnames for %s", uri)
	}

	if !strings.Contains(uri, "://") {

		switch strings.ToLower(filepath.Ext(uri)) {
		case ".xlsx":
			uri = "xlsx://" + uri
		default:
			uri = "csv://" + uri
		}
	}

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("failed to parse writer URI: %w", err)
	}

	err = ensureWriterRoster()

	if err != nil {
		return nil, err
	}

	i, err := writer_roster.Driver(ctx, u.Scheme)

	if err != nil {
		return nil, err
	}

	init_func := i.(WriterInitializationFunc)
	return init_func(ctx, uri, fieldnames)
}

// WriterSchemes returns the list of schemes that have been registered.
func WriterSchemes() []string {

	ctx := context.Background()
	schemes := []string{}

	err := ensureWriterRoster()

	if err != nil {
		return schemes
	}

	for _, dr := range writer_roster.Drivers(ctx) {
		scheme := fmt.Sprintf("%s://", strings.ToLower(dr))
		schemes = append(schemes, scheme)
	}

	sort.Strings(schemes)
	return schemes
}

func pathFromURI(u *url.URL) string {
	return u.Host + u.Path
}

// AppendColumns returns 'header' followed by each of 'columns' not already in it.
func AppendColumns(header []string, columns ...string) []string {

	out := make([]string, len(header), len(header)+len(columns))
	copy(out, header)

	for _, c := range columns {

		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}

	return out
}
