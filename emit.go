package directory

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"iter"

	"github.com/sfomuseum/go-csvdict/v2"
)

// EmitPlaces yields a Place for every row of the places CSV data in 'r'. Malformed rows yield an
// error and iteration continues; any other read error ends it.
func EmitPlaces(ctx context.Context, r io.Reader) iter.Seq2[*Place, error] {

	return func(yield func(*Place, error) bool) {

		csv_r, err := csvdict.NewReader(r)

		if err != nil {
			yield(nil, err)
			return
		}

		for {

			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}

			row, err := csv_r.Read()

			if err == io.EOF {
				return
			}

			if err != nil {

				if !yield(nil, err) {
					return
				}

				var parse_err *csv.ParseError

				if !errors.As(err, &parse_err) {
					return
				}

				continue
			}

			if !yield(NewPlaceFromRow(row), nil) {
				return
			}
		}
	}
}
