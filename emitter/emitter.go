package emitter

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"sort"
	"strings"

	"github.com/aaronland/go-roster"
)

// Emitter yields the rows of a tabular data source as dictionaries keyed by column name.
type Emitter interface {
	Emit(context.Context) iter.Seq2[map[string]string, error]
	// Fieldnames returns the column names of the source in their original order.
	Fieldnames() []string
	Close() error
}

var emitter_roster roster.Roster

// EmitterInitializationFunc is a function defined by individual emitter package and used to create
// an instance of that emitter
type EmitterInitializationFunc func(ctx context.Context, uri string) (Emitter, error)

// RegisterEmitter registers 'scheme' as a key pointing to 'init_func' in an internal lookup table
// used to create new `Emitter` instances by the `NewEmitter` method.
func RegisterEmitter(ctx context.Context, scheme string, init_func EmitterInitializationFunc) error {

	err := ensureEmitterRoster()

	if err != nil {
		return err
	}

	return emitter_roster.Register(ctx, scheme, init_func)
}

func ensureEmitterRoster() error {

	if emitter_roster == nil {

		r, err := roster.NewDefaultRoster()

		if err != nil {
			return err
		}

		emitter_roster = r
	}

	return nil
}

// NewEmitter returns a new `Emitter` instance configured by 'uri'. The value of 'uri' is parsed
// as a `url.URL` and its scheme is used as the key for a corresponding `EmitterInitializationFunc`
// function used to instantiate the new `Emitter`. It is assumed that the scheme (and initialization
// function) have been registered by the `RegisterEmitter` method. A 'uri' without a scheme is
// treated as a local CSV file path.
func NewEmitter(ctx context.Context, uri string) (Emitter, error) {

	if !strings.Contains(uri, "://") {
		uri = "csv://" + uri
	}

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("failed to parse emitter URI: %w", err)
	}

	scheme := u.Scheme

	err = ensureEmitterRoster()

	if err != nil {
		return nil, err
	}

	i, err := emitter_roster.Driver(ctx, scheme)

	if err != nil {
		return nil, err
	}

	init_func := i.(EmitterInitializationFunc)
	return init_func(ctx, uri)
}

// EmitterSchemes returns the list of schemes that have been registered.
func EmitterSchemes() []string {

	ctx := context.Background()
	schemes := []string{}

	err := ensureEmitterRoster()

	if err != nil {
		return schemes
	}

	for _, dr := range emitter_roster.Drivers(ctx) {
		scheme := fmt.Sprintf("%s://", strings.ToLower(dr))
		schemes = append(schemes, scheme)
	}

	sort.Strings(schemes)
	return schemes
}

// pathFromURI returns the local path encoded in 'u', allowing both "scheme:///abs/path" and
// "scheme://relative/path" forms.
func pathFromURI(u *url.URL) string {
	return u.Host + u.Path
}
