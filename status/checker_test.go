package status

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whosonfirst/go-poi-directory/google"
)

var fixed_now = time.Date(2024, time.November, 21, 19, 33, 43, 0, time.Local)

type fakeFinder struct {
	responses map[string]*google.FindPlaceResponse
	queries   []string
}

func (f *fakeFinder) FindPlace(ctx context.Context, input string, fields ...string) (*google.FindPlaceResponse, error) {

	f.queries = append(f.queries, input)

	rsp, exists := f.responses[input]

	if !exists {
		return nil, errors.New("connection reset by peer")
	}

	return rsp, nil
}

func newTestChecker(t *testing.T, finder PlaceFinder) *Checker {

	c, err := NewChecker(&CheckerOptions{
		Finder: finder,
		Now:    func() time.Time { return fixed_now },
	})

	require.NoError(t, err)
	return c
}

func TestOperationalViaAPI(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "OK", "candidates": [{"business_status": "OPERATIONAL"}]}`))
	}))

	defer server.Close()

	client, err := google.NewClient(&google.ClientOptions{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	c := newTestChecker(t, client)

	res := c.CheckRow(context.Background(), map[string]string{
		"name":         "Lehman's",
		"full_address": "4779 Kidron Rd, Dalton, OH 44618, USA",
	})

	require.True(t, res.OK())

	row := res.Value.Row
	assert.Equal(t, "OPERATIONAL", row[ColumnBusinessStatus])
	assert.NotEmpty(t, row[ColumnNotes])
	assert.Contains(t, row[ColumnNotes], "operational")
	assert.Equal(t, "2024-11-21 19:33:43", row[ColumnLastChecked])
}

func TestFromResponse(t *testing.T) {

	tests := []struct {
		rsp      *google.FindPlaceResponse
		expected BusinessStatus
	}{
		{nil, Unknown},
		{&google.FindPlaceResponse{Status: "OK", Candidates: []google.Candidate{{BusinessStatus: "CLOSED_PERMANENTLY"}}}, ClosedPermanently},
		{&google.FindPlaceResponse{Status: "OK", Candidates: []google.Candidate{{BusinessStatus: "OPERATIONAL"}, {BusinessStatus: "CLOSED_PERMANENTLY"}}}, Operational},
		{&google.FindPlaceResponse{Status: "OK", Candidates: []google.Candidate{{BusinessStatus: "CLOSED_TEMPORARILY"}}}, Unknown},
		{&google.FindPlaceResponse{Status: "OK", Candidates: []google.Candidate{{}}}, Unknown},
		{&google.FindPlaceResponse{Status: "OK"}, Unknown},
		{&google.FindPlaceResponse{Status: "ZERO_RESULTS"}, Unknown},
		{&google.FindPlaceResponse{Status: "REQUEST_DENIED", Candidates: []google.Candidate{{BusinessStatus: "OPERATIONAL"}}}, Unknown},
	}

	for i, tt := range tests {
		assert.Equal(t, tt.expected, FromResponse(tt.rsp), i)
	}
}

func TestCheckRowInsufficientData(t *testing.T) {

	finder := &fakeFinder{}
	c := newTestChecker(t, finder)

	for _, row := range []map[string]string{
		{"name": "Lehman's"},
		{"name": "", "full_address": "4779 Kidron Rd"},
		{"name": `""`, "full_address": "4779 Kidron Rd"},
	} {
		res := c.CheckRow(context.Background(), row)
		require.True(t, res.OK())
		assert.Equal(t, InsufficientData, res.Value.Status)
		assert.Equal(t, "Missing name or address data", res.Value.Row[ColumnNotes])
		assert.Equal(t, "2024-11-21 19:33:43", res.Value.Row[ColumnLastChecked])
	}

	assert.Empty(t, finder.queries)
}

func TestCheckRowError(t *testing.T) {

	c := newTestChecker(t, &fakeFinder{})

	in := map[string]string{"name": "Gone Diner", "full_address": "1 Main St", "summary": "eggs"}
	res := c.CheckRow(context.Background(), in)

	require.False(t, res.OK())
	assert.Equal(t, "ERROR", res.Tag)
	assert.Equal(t, Error, res.Value.Status)
	assert.Equal(t, "Status could not be determined", res.Value.Row[ColumnNotes])
	assert.Equal(t, "eggs", res.Value.Row["summary"])

	_, modified := in[ColumnBusinessStatus]
	assert.False(t, modified, "input row must not be modified")
}

func TestCheckRows(t *testing.T) {

	finder := &fakeFinder{
		responses: map[string]*google.FindPlaceResponse{
			"Lehman's 4779 Kidron Rd": {Status: "OK", Candidates: []google.Candidate{{BusinessStatus: "OPERATIONAL"}}},
			"Old Mill 2 Mill St":      {Status: "OK", Candidates: []google.Candidate{{BusinessStatus: "CLOSED_PERMANENTLY"}}},
		},
	}

	c := newTestChecker(t, finder)

	rows := []map[string]string{
		{"name": `"Lehman's"`, "full_address": "4779 Kidron Rd"},
		{"name": "Old Mill", "full_address": "2 Mill St"},
		{"name": "Nameless", "full_address": ""},
		{"name": "Unreachable", "full_address": "3 Elm St"},
	}

	var seq iter.Seq2[map[string]string, error] = func(yield func(map[string]string, error) bool) {

		for i, r := range rows {

			if i == 2 && !yield(nil, errors.New("wrong number of fields")) {
				return
			}

			if !yield(r, nil) {
				return
			}
		}
	}

	written := make([]map[string]string, 0)

	write := func(row map[string]string) error {
		written = append(written, row)
		return nil
	}

	report, err := c.CheckRows(context.Background(), seq, write)
	require.NoError(t, err)

	require.Len(t, written, 4)

	statuses := make([]string, len(written))

	for i, row := range written {
		statuses[i] = row[ColumnBusinessStatus]
	}

	assert.Equal(t, "OPERATIONAL,CLOSED_PERMANENTLY,INSUFFICIENT_DATA,ERROR", strings.Join(statuses, ","))
	assert.Equal(t, `"Lehman's"`, written[0]["name"])

	assert.Equal(t, map[string]int{"ok": 3, "ERROR": 1}, report.Counts())
	assert.Len(t, finder.queries, 3)
}

func TestCheckRowsWriteError(t *testing.T) {

	c := newTestChecker(t, &fakeFinder{})

	var seq iter.Seq2[map[string]string, error] = func(yield func(map[string]string, error) bool) {
		yield(map[string]string{"name": "x"}, nil)
	}

	_, err := c.CheckRows(context.Background(), seq, func(map[string]string) error {
		return errors.New("disk full")
	})

	assert.Error(t, err)
}
