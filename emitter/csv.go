package emitter

import (
	"bytes"
	"compress/bzip2"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/url"
	"os"
	"strings"

	"github.com/sfomuseum/go-csvdict/v2"
)

// CSVEmitter emits the rows of a local CSV file. Files ending in ".bz2", or any file when the URI
// carries "?compression=bzip2", are decompressed on the fly.
type CSVEmitter struct {
	Emitter
	reader     io.ReadCloser
	csv_reader *csvdict.Reader
	fieldnames []string
}

func init() {

	ctx := context.Background()
	err := RegisterEmitter(ctx, "csv", NewCSVEmitter)

	if err != nil {
		panic(err)
	}
}

func NewCSVEmitter(ctx context.Context, uri string) (Emitter, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	path := pathFromURI(u)

	r, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	var data_r io.Reader = r

	if u.Query().Get("compression") == "bzip2" || strings.HasSuffix(path, ".bz2") {
		data_r = bzip2.NewReader(r)
	}

	// The header is read twice: once here to keep its column order, and once by csvdict, which
	// is handed back every byte consumed along the way.
	var consumed bytes.Buffer

	fieldnames, err := csv.NewReader(io.TeeReader(data_r, &consumed)).Read()

	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	csv_r, err := csvdict.NewReader(io.MultiReader(&consumed, data_r))

	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	e := &CSVEmitter{
		reader:     r,
		csv_reader: csv_r,
		fieldnames: fieldnames,
	}

	return e, nil
}

func (e *CSVEmitter) Fieldnames() []string {

	fieldnames := make([]string, len(e.fieldnames))
	copy(fieldnames, e.fieldnames)
	return fieldnames
}

func (e *CSVEmitter) Emit(ctx context.Context) iter.Seq2[map[string]string, error] {

	return func(yield func(map[string]string, error) bool) {

		for {

			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}

			row, err := e.csv_reader.Read()

			if err == io.EOF {
				return
			}

			if !yield(row, err) {
				return
			}

			// Malformed records can be skipped. Other errors, such as a truncated bzip2 stream, are
			// returned by every subsequent read.
			var parse_err *csv.ParseError

			if err != nil && !errors.As(err, &parse_err) {
				return
			}
		}
	}
}

func (e *CSVEmitter) Close() error {
	return e.reader.Close()
}
