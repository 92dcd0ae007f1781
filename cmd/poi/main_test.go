package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whosonfirst/go-poi-directory"
	"github.com/whosonfirst/go-poi-directory/emitter"
)

func run(t *testing.T, args ...string) string {

	var out bytes.Buffer

	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func readRows(t *testing.T, path string) []map[string]string {

	ctx := context.Background()

	e, err := emitter.NewEmitter(ctx, path)
	require.NoError(t, err)

	defer e.Close()

	rows := make([]map[string]string, 0)

	for row, err := range e.Emit(ctx) {
		require.NoError(t, err)
		rows = append(rows, row)
	}

	return rows
}

func writeFile(t *testing.T, path string, body string) {
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func readHeader(t *testing.T, path string) string {

	body, err := os.ReadFile(path)
	require.NoError(t, err)

	header, _, _ := strings.Cut(string(body), "\n")
	return header
}

// fakePlacesAPI serves canned Places API responses. When 'cancel' is not nil it is called while
// the details of an unknown place are requested.
func fakePlacesAPI(t *testing.T, cancel context.CancelFunc) *httptest.Server {

	mux := http.NewServeMux()

	mux.HandleFunc("/textsearch/json", func(w http.ResponseWriter, r *http.Request) {

		rsp := map[string]any{"status": "OK", "results": []map[string]string{{"place_id": "p1"}}}

		if r.URL.Query().Get("pagetoken") == "" {
			rsp["results"] = []map[string]string{{"place_id": "p0"}, {"place_id": "broken"}}
			rsp["next_page_token"] = "next"
		}

		json.NewEncoder(w).Encode(rsp)
	})

	mux.HandleFunc("/details/json", func(w http.ResponseWriter, r *http.Request) {

		switch r.URL.Query().Get("place_id") {
		case "p0":
			w.Write([]byte(`{"status": "OK", "result": {"name": "Hillcrest Orchards", "geometry": {"location": {"lat": 40.77, "lng": -81.93}}}}`))
		case "p1":
			w.Write([]byte(`{"status": "OK", "result": {"name": "Wayne County Fairgrounds", "formatted_address": "199 Vanover St, Wooster, OH 44691, USA"}}`))
		default:

			if cancel != nil {
				cancel()
			}

			w.Write([]byte(`{"status": "NOT_FOUND"}`))
		}
	})

	mux.HandleFunc("/findplacefromtext/json", func(w http.ResponseWriter, r *http.Request) {

		switch r.URL.Query().Get("input") {
		case "Lehman's 4779 Kidron Rd":
			w.Write([]byte(`{"status": "OK", "candidates": [{"business_status": "OPERATIONAL"}]}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	t.Setenv("POI_GOOGLE_API_KEY", "test-key")
	t.Setenv("POI_GOOGLE_BASE_URL", server.URL)
	t.Setenv("POI_FETCH_RECORD_DELAY", "0s")
	t.Setenv("POI_STATUS_REQUEST_DELAY", "0s")

	return server
}

func TestCategorize(t *testing.T) {

	dir := t.TempDir()
	input := filepath.Join(dir, "locations.csv")
	output := filepath.Join(dir, "categorized.csv")

	writeFile(t, input, "name,summary\nJoe's Pizza,best pizza in town\nDay Spa,\nSpacious Rooms,\n")

	out := run(t, "categorize", "--input", input, "--output", output)
	assert.Contains(t, out, "Categorization complete")

	assert.Equal(t, "name,summary,category", readHeader(t, output))

	rows := readRows(t, output)
	require.Len(t, rows, 3)

	assert.Equal(t, "Food/Drinks", rows[0]["category"])
	assert.Equal(t, "best pizza in town", rows[0]["summary"])
	assert.Equal(t, "Self care", rows[1]["category"])
	assert.Equal(t, "Attractions", rows[2]["category"])
}

func TestPictures(t *testing.T) {

	dir := t.TempDir()
	pics := filepath.Join(dir, "pics")
	require.NoError(t, os.Mkdir(pics, 0755))

	for _, fname := range []string{"Foo_1_2.jpg", "Foo_1_1.jpg", "Foobar_1_1.jpg", "Foo_notes.txt"} {
		writeFile(t, filepath.Join(pics, fname), "x")
	}

	input := filepath.Join(dir, "short.csv")
	output := filepath.Join(dir, "pictures.csv")

	writeFile(t, input, "name\nFoo\n\nBaz\n")

	out := run(t, "pictures", "--input", input, "--folder", pics, "--output", output)
	assert.Contains(t, out, "with 2 entries")

	assert.Equal(t, "Location,First Picture,Second Picture", readHeader(t, output))

	rows := readRows(t, output)
	require.Len(t, rows, 2)

	assert.Equal(t, map[string]string{"Location": "Foo", "First Picture": "Foo_1_1.jpg", "Second Picture": "Foo_1_2.jpg"}, rows[0])
	assert.Equal(t, map[string]string{"Location": "Baz", "First Picture": "No picture found", "Second Picture": ""}, rows[1])
}

func TestPicturesWithoutLocations(t *testing.T) {

	dir := t.TempDir()
	pics := filepath.Join(dir, "pics")
	require.NoError(t, os.Mkdir(pics, 0755))

	input := filepath.Join(dir, "short.csv")
	output := filepath.Join(dir, "pictures.csv")

	writeFile(t, input, "name\n\" \"\n\n")

	out := run(t, "pictures", "--input", input, "--folder", pics, "--output", output)
	assert.Contains(t, out, "with 0 entries")

	body, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Location,First Picture,Second Picture\n", string(body))
}

func TestPicturesMissingFolder(t *testing.T) {

	dir := t.TempDir()

	cmd := rootCmd()
	cmd.SetArgs([]string{"pictures", "--folder", filepath.Join(dir, "missing"), "--input", filepath.Join(dir, "short.csv")})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestStatus(t *testing.T) {

	fakePlacesAPI(t, nil)

	dir := t.TempDir()
	input := filepath.Join(dir, "categorized.csv")
	output := filepath.Join(dir, "checked.csv")
	database := filepath.Join(dir, "poi.db")

	writeFile(t, input, "name,full_address,category\nLehman's,4779 Kidron Rd,Attractions\nNo Address,,Farm\nFlaky Diner,1 Main St,Food/Drinks\n")

	run(t, "status", "--input", input, "--output", output, "--database", database)

	assert.Equal(t, "name,full_address,category,business_status,last_checked,notes", readHeader(t, output))

	rows := readRows(t, output)
	require.Len(t, rows, 3)

	assert.Equal(t, "OPERATIONAL", rows[0]["business_status"])
	assert.Contains(t, rows[0]["notes"], "operational")
	assert.Equal(t, "Attractions", rows[0]["category"])
	assert.Equal(t, "INSUFFICIENT_DATA", rows[1]["business_status"])
	assert.Equal(t, "ERROR", rows[2]["business_status"])

	for _, row := range rows {
		assert.NotEmpty(t, row["last_checked"])
	}

	history := run(t, "runs", "--database", database, "--history", "Lehman's")
	lines := strings.Split(strings.TrimSpace(history), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "OPERATIONAL", strings.Split(lines[0], "\t")[1])

	runs := strings.Split(strings.TrimSpace(run(t, "runs", "--database", database)), "\n")
	require.Len(t, runs, 1)

	fields := strings.Split(runs[0], "\t")
	require.Len(t, fields, 6)
	assert.Equal(t, "status", fields[1])
	assert.Equal(t, []string{"2", "1"}, fields[4:])

	failures := run(t, "runs", "--database", database, "--run", fields[0])
	assert.Equal(t, "failed\tERROR\t1\n", failures)
}

func TestStatusTimeout(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"status": "OK", "candidates": [{"business_status": "OPERATIONAL"}]}`))
	}))

	t.Cleanup(server.Close)

	t.Setenv("POI_GOOGLE_API_KEY", "test-key")
	t.Setenv("POI_GOOGLE_BASE_URL", server.URL)
	t.Setenv("POI_GOOGLE_TIMEOUT", "50ms")
	t.Setenv("POI_STATUS_REQUEST_DELAY", "0s")

	dir := t.TempDir()
	input := filepath.Join(dir, "categorized.csv")
	output := filepath.Join(dir, "checked.csv")

	writeFile(t, input, "name,full_address\nLehman's,4779 Kidron Rd\n")

	run(t, "status", "--input", input, "--output", output)

	rows := readRows(t, output)
	require.Len(t, rows, 1)
	assert.Equal(t, "ERROR", rows[0]["business_status"])
}

func TestFetchAndEmitGeoJSON(t *testing.T) {

	fakePlacesAPI(t, nil)

	dir := t.TempDir()
	output := filepath.Join(dir, "places.csv")
	metrics_path := filepath.Join(dir, "poi.prom")

	out := run(t, "fetch", "--category", "farm", "--output", output, "--metrics-textfile", metrics_path)
	assert.Contains(t, out, "Saved 2 records")

	assert.Equal(t, strings.Join(directory.PlaceFieldnames, ","), readHeader(t, output))

	rows := readRows(t, output)
	require.Len(t, rows, 2)

	assert.Equal(t, "Hillcrest Orchards", rows[0]["name"])
	assert.Equal(t, "farm", rows[0]["category"])
	assert.Equal(t, "40.77", rows[0]["latitude"])
	assert.Equal(t, "Wayne County Fairgrounds", rows[1]["name"])
	assert.Equal(t, "", rows[1]["latitude"])
	assert.Equal(t, "", rows[1]["email"])

	_, err := os.Stat(metrics_path)
	assert.NoError(t, err)

	geojson_out := run(t, "emit-geojson", output)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}

	require.NoError(t, json.Unmarshal([]byte(geojson_out), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Hillcrest Orchards", fc.Features[0].Properties["name"])
}

func TestFetchCancelledFinishesRun(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fakePlacesAPI(t, cancel)

	dir := t.TempDir()
	output := filepath.Join(dir, "places.csv")
	database := filepath.Join(dir, "poi.db")

	cmd := rootCmd()
	cmd.SetArgs([]string{"fetch", "--category", "farm", "--output", output, "--database", database})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.ExecuteContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	rows := readRows(t, output)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hillcrest Orchards", rows[0]["name"])

	runs := strings.Split(strings.TrimSpace(run(t, "runs", "--database", database)), "\n")
	require.Len(t, runs, 1)

	fields := strings.Split(runs[0], "\t")
	require.Len(t, fields, 6)
	assert.Equal(t, "fetch", fields[1])
	assert.NotEqual(t, "unfinished", fields[3])
	assert.Equal(t, "1", fields[4])

	places := run(t, "runs", "--database", database, "--run", fields[0])
	assert.Contains(t, places, "farm\tHillcrest Orchards")
}

func TestRunsRequiresDatabase(t *testing.T) {

	cmd := rootCmd()
	cmd.SetArgs([]string{"runs"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
