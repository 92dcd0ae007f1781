package writer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/sfomuseum/go-csvdict"
)

type CSVWriter struct {
	Writer
	fh         *recordingFile
	csv_wr     *csvdict.Writer
	fieldnames []string
}

// recordingFile keeps the first write error so that failures surfacing during a buffered flush are
// reported by Close.
type recordingFile struct {
	*os.File
	err error
}

func (f *recordingFile) Write(p []byte) (int, error) {

	n, err := f.File.Write(p)

	if err != nil && f.err == nil {
		f.err = err
	}

	return n, err
}

func init() {

	ctx := context.Background()
	err := RegisterWriter(ctx, "csv", NewCSVWriter)

	if err != nil {
		panic(err)
	}
}

// NewCSVWriter returns a Writer for the CSV file at the path in 'uri', truncating it if it exists.
// The header is written immediately so that a run without rows still leaves a readable file.
func NewCSVWriter(ctx context.Context, uri string, fieldnames []string) (Writer, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	path := pathFromURI(u)

	fh, err := os.Create(path)

	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	rec := &recordingFile{File: fh}

	csv_wr, err := csvdict.NewWriter(rec, fieldnames)

	if err != nil {
		fh.Close()
		return nil, err
	}

	csv_wr.WriteHeader()

	wr := &CSVWriter{
		fh:         rec,
		csv_wr:     csv_wr,
		fieldnames: fieldnames,
	}

	return wr, nil
}

func (wr *CSVWriter) WriteRow(ctx context.Context, row map[string]string) error {

	out := make(map[string]string, len(wr.fieldnames))

	for _, k := range wr.fieldnames {
		out[k] = row[k]
	}

	return wr.csv_wr.WriteRow(out)
}

func (wr *CSVWriter) Close() error {

	wr.csv_wr.Flush()

	write_err := wr.fh.err
	close_err := wr.fh.Close()

	if write_err != nil {
		return fmt.Errorf("failed to write %s: %w", wr.fh.Name(), errors.Join(write_err, close_err))
	}

	return close_err
}
