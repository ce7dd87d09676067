// Package formutil converts heterogeneous request parameter values into
// canonical byte pairs and request bodies.
//
// # Value Pairs
//
// NormalizeHTTPValues turns an ordered list of key/value pairs into byte
// fields. Order is preserved, duplicate keys are kept, nil becomes an empty
// value and sequences expand inline:
//
//	fields, err := formutil.NormalizeHTTPValues([]formutil.Pair{
//		{Key: "foo", Value: nil},
//		{Key: "bar", Value: []any{"1", 2}},
//	}, nil)
//	// foo=, bar=1, bar=2
//
// Arbitrary objects are only converted when they implement Displayable. Values
// that must reach the caller untouched (upload markers and the like) are
// selected with a Skippable predicate:
//
//	fields, err := formutil.NormalizeHTTPValues(pairs, formutil.SkipType[*Upload]())
//
// # Post Data
//
// NormalizePostData accepts a string, raw bytes, or []Pair. Pairs are rendered
// as an application/x-www-form-urlencoded body.
package formutil
