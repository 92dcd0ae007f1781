package directory

import (
	"fmt"
)

// Result is the outcome of processing a single row or record in a batch. Exactly one of Value or Err is
// meaningful: if Err is not nil the record failed and Tag names the kind of failure.
type Result[T any] struct {
	// Key identifies the record, for example a place ID or a location name.
	Key   string
	Value T
	Tag   string
	Err   error
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

func (r Result[T]) String() string {

	if r.OK() {
		return fmt.Sprintf("%s OK", r.Key)
	}

	return fmt.Sprintf("%s %s: %v", r.Key, r.Tag, r.Err)
}

// Success returns a successful Result for 'key'.
func Success[T any](key string, v T) Result[T] {
	return Result[T]{Key: key, Value: v}
}

// Failure returns a failed Result for 'key' tagged with 'tag'.
func Failure[T any](key string, tag string, err error) Result[T] {
	return Result[T]{Key: key, Tag: tag, Err: err}
}

// Report collects the results of a batch run.
type Report[T any] struct {
	Results []Result[T]
}

func (r *Report[T]) Add(res Result[T]) {
	r.Results = append(r.Results, res)
}

// Succeeded returns the values of every successful result, in the order they were added.
func (r *Report[T]) Succeeded() []T {

	values := make([]T, 0, len(r.Results))

	for _, res := range r.Results {

		if res.OK() {
			values = append(values, res.Value)
		}
	}

	return values
}

// Failed returns every failed result, in the order they were added.
func (r *Report[T]) Failed() []Result[T] {

	failed := make([]Result[T], 0)

	for _, res := range r.Results {

		if !res.OK() {
			failed = append(failed, res)
		}
	}

	return failed
}

// Counts returns the number of results for each tag. Successful results are counted under "ok".
func (r *Report[T]) Counts() map[string]int {

	counts := make(map[string]int)

	for _, res := range r.Results {

		tag := "ok"

		if !res.OK() {
			tag = res.Tag
		}

		counts[tag] += 1
	}

	return counts
}
