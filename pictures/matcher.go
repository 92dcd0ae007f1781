// Package pictures matches locations to image files named "<LocationName>_<n>_<m>.<ext>".
package pictures

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// NoPicture is the placeholder written when a location has no matching picture.
const NoPicture = "No picture found"

// SupportedExtensions are compared case-insensitively.
var SupportedExtensions = []string{
	".jpg",
	".jpeg",
	".png",
	".webp",
	".avif",
	".bmp",
	".gif",
	".tiff",
}

type Matcher struct {
	fs         fs.FS
	extensions []string
}

// NewMatcher returns a Matcher for the pictures in 'pictures_fs'.
func NewMatcher(pictures_fs fs.FS) *Matcher {
	return &Matcher{
		fs:         pictures_fs,
		extensions: SupportedExtensions,
	}
}

// NewMatcherFromPath returns a Matcher for the directory at 'path'. It is an error if 'path' does
// not exist or is not a directory.
func NewMatcherFromPath(path string) (*Matcher, error) {

	info, err := os.Stat(path)

	if err != nil {
		return nil, fmt.Errorf("pictures folder %s: %w", path, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("pictures folder %s is not a directory", path)
	}

	return NewMatcher(os.DirFS(path)), nil
}

// Find returns the sorted names of the pictures for 'location'. A picture matches when its
// filename starts with "<location>_" and has a supported extension.
func (m *Matcher) Find(location string) ([]string, error) {

	entries, err := fs.ReadDir(m.fs, ".")

	if err != nil {
		return nil, fmt.Errorf("failed to read pictures folder: %w", err)
	}

	prefix := location + "_"
	matches := make([]string, 0)

	for _, e := range entries {

		if e.IsDir() {
			continue
		}

		fname := e.Name()

		if !strings.HasPrefix(fname, prefix) {
			continue
		}

		if !m.isSupported(fname) {
			continue
		}

		matches = append(matches, fname)
	}

	sort.Strings(matches)
	return matches, nil
}

func (m *Matcher) isSupported(fname string) bool {

	lower := strings.ToLower(fname)

	for _, ext := range m.extensions {

		if strings.HasSuffix(lower, ext) {
			return true
		}
	}

	return false
}

// Fieldnames are the columns of a picture row, in output order.
var Fieldnames = []string{"Location", "First Picture", "Second Picture"}

// Row returns the spreadsheet row for 'location' given its matching pictures.
func Row(location string, matches []string) map[string]string {

	first := NoPicture
	second := ""

	if len(matches) > 0 {
		first = matches[0]
	}

	if len(matches) > 1 {
		second = matches[1]
	}

	return map[string]string{
		"Location":       location,
		"First Picture":  first,
		"Second Picture": second,
	}
}
