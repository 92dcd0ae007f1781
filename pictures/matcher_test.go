package pictures

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {

	return fstest.MapFS{
		"Foo_2_1.jpg":        {Data: []byte("x")},
		"Foo_1_1.PNG":        {Data: []byte("x")},
		"Foo_1_2.txt":        {Data: []byte("x")},
		"Foobar_1_1.jpg":     {Data: []byte("x")},
		"Foo.jpg":            {Data: []byte("x")},
		"Lehman's_1_1.webp":  {Data: []byte("x")},
		"Foo_dir.jpg/nested": {Data: []byte("x")},
		"Barn Cafe_1_1.jpeg": {Data: []byte("x")},
		"Barn Cafe_1_2.TIFF": {Data: []byte("x")},
		"Barn Cafe_1_3.avif": {Data: []byte("x")},
	}
}

func TestFind(t *testing.T) {

	m := NewMatcher(testFS())

	matches, err := m.Find("Foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo_1_1.PNG", "Foo_2_1.jpg"}, matches)

	matches, err = m.Find("Foobar")
	require.NoError(t, err)
	assert.Equal(t, []string{"Foobar_1_1.jpg"}, matches)

	matches, err = m.Find("Barn Cafe")
	require.NoError(t, err)
	assert.Equal(t, []string{"Barn Cafe_1_1.jpeg", "Barn Cafe_1_2.TIFF", "Barn Cafe_1_3.avif"}, matches)

	matches, err = m.Find("Nowhere")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRow(t *testing.T) {

	assert.Equal(t, map[string]string{
		"Location":       "Nowhere",
		"First Picture":  NoPicture,
		"Second Picture": "",
	}, Row("Nowhere", nil))

	assert.Equal(t, map[string]string{
		"Location":       "Foo",
		"First Picture":  "a.jpg",
		"Second Picture": "",
	}, Row("Foo", []string{"a.jpg"}))

	row := Row("Barn Cafe", []string{"a.jpg", "b.jpg", "c.jpg"})
	assert.Equal(t, "a.jpg", row["First Picture"])
	assert.Equal(t, "b.jpg", row["Second Picture"])
}

func TestNewMatcherFromPath(t *testing.T) {

	_, err := NewMatcherFromPath(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = NewMatcherFromPath(t.TempDir())
	assert.NoError(t, err)
}
